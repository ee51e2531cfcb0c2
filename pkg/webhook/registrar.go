// Package webhook registers the Jira webhook subscription that delivers
// change notifications to the integration's callback endpoint.
package webhook

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Sternrassler/jira-agile-client/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var registrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "jira_webhook_registrations_total",
	Help: "Webhook setup outcomes by result",
}, []string{"result"}) // "existing", "created"

// NameSuffix is appended to the integration identifier to name the subscription.
const NameSuffix = "Port-Ocean-Events-Webhook"

// CallbackPath is appended to the application host to form the target URL.
const CallbackPath = "/integration/webhook"

// Events is the fixed list of events the subscription listens to.
var Events = []string{
	"jira:issue_created",
	"jira:issue_updated",
	"jira:issue_deleted",
	"project_created",
	"project_updated",
	"project_deleted",
	"project_soft_deleted",
	"project_restored_deleted",
	"project_archived",
	"project_restored_archived",
	"sprint_created",
	"sprint_updated",
	"sprint_deleted",
	"sprint_started",
	"sprint_closed",
}

// Webhook is a Jira webhook subscription as listed by the webhooks API.
type Webhook struct {
	Name   string   `json:"name"`
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Self   string   `json:"self,omitempty"`
}

// Transport is what the registrar needs from the HTTP layer.
// *client.Client implements it.
type Transport interface {
	GetJSON(ctx context.Context, rawURL string, query url.Values, out any) error
	PostJSON(ctx context.Context, rawURL string, body any, out any) error
	RestURL() string
}

// Registrar ensures a single webhook subscription exists.
type Registrar struct {
	transport Transport
	logger    zerolog.Logger
}

// NewRegistrar creates a new registrar.
func NewRegistrar(t Transport) *Registrar {
	return &Registrar{
		transport: t,
		logger:    logging.NewLogger("webhook-registrar"),
	}
}

// Target returns the callback URL for appHost. The host is used verbatim.
func Target(appHost string) string {
	return appHost + CallbackPath
}

// Name returns the subscription name for an integration identifier.
func Name(integrationID string) string {
	return integrationID + "-" + NameSuffix
}

// Ensure creates the subscription for appHost unless one with exactly the
// same URL already exists. Any failed request fails the call.
func (r *Registrar) Ensure(ctx context.Context, appHost, integrationID string) error {
	endpoint := r.webhooksURL()
	target := Target(appHost)

	var existing []Webhook
	if err := r.transport.GetJSON(ctx, endpoint, nil, &existing); err != nil {
		return fmt.Errorf("list webhooks: %w", err)
	}

	for _, hook := range existing {
		if hook.URL == target {
			registrationsTotal.WithLabelValues("existing").Inc()
			r.logger.Info().
				Str("url", target).
				Str("name", hook.Name).
				Msg("Real time reporting webhook already exists")
			return nil
		}
	}

	body := Webhook{
		Name:   Name(integrationID),
		URL:    target,
		Events: Events,
	}

	if err := r.transport.PostJSON(ctx, endpoint, body, nil); err != nil {
		return fmt.Errorf("create webhook: %w", err)
	}

	registrationsTotal.WithLabelValues("created").Inc()
	r.logger.Info().
		Str("url", target).
		Str("name", body.Name).
		Int("events", len(body.Events)).
		Msg("Real time reporting webhook created")

	return nil
}

func (r *Registrar) webhooksURL() string {
	return r.transport.RestURL() + "/webhooks/1.0/webhook"
}
