// Package api provides the Zora explore API client used to source swipe cards.
//
// REST endpoint:
//   - Production: https://api-sdk.zora.engineering
//
// Key list types: FEATURED, TOP_GAINERS, MOST_VALUABLE, TOP_VOLUME_24H, NEW
package api
