// Package pagination provides the sequential page loop for Jira Agile list endpoints.
//
// Agile list endpoints page with startAt/maxResults query parameters. The
// fetcher requests 50 records per page and advances the cursor by the
// server-reported startAt + maxResults, so a short page never causes
// records to be skipped or re-read.
//
// Example usage:
//
//	fetcher := pagination.NewFetcher(jiraClient)
//	for page, err := range fetcher.Pages(ctx, pagination.Request{
//		Endpoint: jiraClient.AgileURL() + "/board/42/sprint",
//		Policy:   pagination.StopOnLastFlag,
//	}) {
//		if err != nil {
//			return err
//		}
//		handle(page.Values)
//	}
//
// The loop:
//   - Is lazy: a page is requested only when the consumer asks for it
//   - Always yields the last page before stopping
//   - Stops per endpoint policy (isLast flag or stalled offset)
//   - Ends on the first error without requesting further pages
package pagination
