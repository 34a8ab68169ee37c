// Package tui is a terminal front end for a swipe session.
//
// It renders the presented card with lipgloss and maps keys to decisions:
// left passes, right buys, u rewinds, r refreshes, d dismisses the caught-up
// screen. Background refills and haptic pulses reach the program through a
// Bridge.
package tui
