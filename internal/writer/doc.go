// Package writer implements the batched decision journal.
//
// Every swipe is queued without blocking the player and written to the
// decisions table in batches. Writes are append-only: a decision id that is
// already stored is counted as a conflict and skipped. When the queue is full
// new decisions are dropped and counted; the journal never slows the deck.
package writer
