// Package model defines shared data types used across the swipe deck service.
//
// Conventions:
//   - Item IDs: int, assigned per load generation starting at 1
//   - Market attributes: opaque strings as returned by the market-data API
//   - Decision IDs: uuid.UUID
package model
