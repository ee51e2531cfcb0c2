// Package cache provides the per-operation cache for Jira resource listings.
//
// An Operation is one logical unit of work (for example one synchronization
// pass over a board). Within it, every resource kind (boards, projects,
// issues, sprints) is fetched from Jira at most once:
//
//   - The first accessor call for a kind streams pages from Jira and appends
//     each page's records to the operation's entry for that kind
//   - Later calls for the same kind in the same operation return the
//     accumulated records without touching the network
//   - A new operation starts with an empty scope; nothing is shared across
//     operations
//
// # Basic Usage
//
//	op := cache.NewOperation("sync-board-42")
//
//	for batch, err := range accessors.Issues(ctx, op, 42, jira.IssueOptions{}) {
//		...
//	}
//
//	// Served from op, no request issued.
//	for batch, err := range accessors.Issues(ctx, op, 42, jira.IssueOptions{}) {
//		...
//	}
//
// # Shared Operations
//
// When one operation is split across workers, RedisStore lets them share a
// single scope:
//
//	store := cache.NewRedisStore(redisClient, time.Hour)
//	op := cache.NewOperationWithStore(runID, store)
//	defer store.Clear(ctx, runID)
//
// Keys are "jira:op:<operation>:<kind>" and expire with the operation TTL.
//
// # Metrics
//
//   - jira_operation_cache_hits_total{kind}
//   - jira_operation_cache_misses_total{kind}
//   - jira_operation_cache_records_total{kind}
//   - jira_operation_cache_errors_total{operation}
//
// If a fetch fails part way, the pages received so far stay cached; they
// are not rolled back.
package cache
