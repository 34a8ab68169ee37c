// Package feed implements the Feed Loader component.
//
// The Feed Loader:
//   - Fetches one explore page per category through a narrow Fetcher
//   - Walks a fixed category sequence, one step per LoadNext
//   - Re-fetches the terminal (repeatable) category page by page until a page
//     yields no unseen coins, then reports the feed as exhausted
//   - Contains failures per category: a failed fetch is an empty batch
//   - Tags every result with a generation so results that outlive a reset are
//     discarded instead of applied
package feed
