// Command jira-fetch reads Jira Agile boards, projects, issues and sprints
// through the paginated client and registers the integration webhook.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sternrassler/jira-agile-client/pkg/cache"
	"github.com/Sternrassler/jira-agile-client/pkg/client"
	"github.com/Sternrassler/jira-agile-client/pkg/config"
	"github.com/Sternrassler/jira-agile-client/pkg/jira"
	"github.com/Sternrassler/jira-agile-client/pkg/logging"
	"github.com/Sternrassler/jira-agile-client/pkg/metrics"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, &app{out: os.Stdout}, os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// execute runs one command and releases a's connections whether or not the
// command succeeded.
func execute(ctx context.Context, a *app, args []string) (err error) {
	defer func() {
		if cerr := a.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	root := newRootCmd(a)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// app holds what every subcommand shares. It is built once in the root
// command's PersistentPreRunE.
type app struct {
	cfg       *config.Config
	out       io.Writer
	logger    zerolog.Logger
	client    *client.Client
	accessors *jira.Accessors
	redis     *redis.Client
	store     cache.Store
}

func newRootCmd(a *app) *cobra.Command {
	var (
		configPath  string
		metricsAddr string
		debug       bool
	)

	root := &cobra.Command{
		Use:           "jira-fetch",
		Short:         "Fetch Jira Agile resources through the paginated client",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg

			level, err := logging.ParseLevel(cfg.Log.Level)
			if err != nil {
				return err
			}
			if debug {
				level = logging.LevelDebug
			}
			logCfg := logging.DefaultConfig()
			logCfg.Level = level
			logCfg.Pretty = cfg.Log.Pretty
			logCfg.Service = "jira-fetch"
			logging.Setup(logCfg)
			a.logger = logging.NewLogger("cli")

			if metricsAddr != "" {
				go func() {
					if err := metrics.Serve(cmd.Context(), metricsAddr); err != nil {
						a.logger.Error().Err(err).Msg("Metrics listener failed")
					}
				}()
			}

			return a.connect(cmd.Context())
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (YAML or JSON); environment variables override it")
	root.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics and /health on this address, e.g. :9090")
	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	root.AddCommand(
		newBoardsCmd(a),
		newSyncCmd(a),
		newGetCmd(a),
		newWebhookCmd(a),
	)

	return root
}

// connect builds the Jira transport and, when REDIS_URL is set, the shared
// operation store.
func (a *app) connect(ctx context.Context) error {
	if err := a.cfg.ValidateJira(); err != nil {
		return err
	}

	clientCfg := client.DefaultConfig(a.cfg.Jira.URL, a.cfg.Jira.Email, a.cfg.Jira.Token)
	clientCfg.UserAgent = a.cfg.Jira.UserAgent
	clientCfg.Timeout = a.cfg.Jira.Timeout

	c, err := client.New(clientCfg)
	if err != nil {
		return fmt.Errorf("failed to create jira client: %w", err)
	}
	a.client = c
	a.accessors = jira.New(c)

	if a.cfg.Cache.RedisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(a.cfg.Cache.RedisURL)
	if err != nil {
		return fmt.Errorf("parse REDIS_URL: %w", err)
	}
	a.redis = redis.NewClient(opts)
	if err := a.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	a.store = cache.NewRedisStore(a.redis, a.cfg.Cache.OperationTTL)
	a.logger.Info().Str("addr", opts.Addr).Dur("ttl", a.cfg.Cache.OperationTTL).Msg("Using Redis operation store")

	return nil
}

// newOperation starts a fresh operation scope for one command run.
func (a *app) newOperation() *cache.Operation {
	id := uuid.NewString()
	if a.store != nil {
		return cache.NewOperationWithStore(id, a.store)
	}
	return cache.NewOperation(id)
}

func (a *app) close() error {
	if a.redis == nil {
		return nil
	}
	err := a.redis.Close()
	a.redis = nil
	return err
}
