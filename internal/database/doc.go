// Package database provides the PostgreSQL connection pool and schema.
//
// The pool backs two tables:
//   - user_prefs: per-wallet key-value preferences (amount per swipe)
//   - decisions: the append-only swipe journal
//
// Migrate is idempotent and runs at startup.
package database
