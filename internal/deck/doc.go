// Package deck presents a loaded deck one card at a time and keeps it topped
// up from the feed.
//
// The deck is consumed from the tail. Each batch the feed delivers becomes a
// run; runs queue behind the one being swiped and start at their own top once
// the current run is used up, so appending never moves the cursor.
//
// When the number of cards left falls to the refill threshold the controller
// asks the feed for one more batch in the background. The check is
// level-triggered and repeated after every decision; the loader's in-flight
// flag is what keeps it to a single outstanding fetch. Every batch is applied
// only if the controller generation it was requested under is still current.
package deck
