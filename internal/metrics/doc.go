// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Explore fetches by category and result
//   - Items loaded per category
//   - Refills triggered and stale batches discarded
//   - Swipe decisions by direction
//   - Haptic notification failures
//   - Open sessions and decision journal flushes
//
// A nil *Metrics is valid and records nothing.
package metrics
