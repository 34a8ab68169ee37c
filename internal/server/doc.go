// Package server exposes swipe sessions over HTTP and websockets.
//
// Each websocket connection owns one session. The client sends small JSON
// commands (swipe, refresh, rewind, dismiss_caught_up, set_amount, identify)
// and the server pushes the presented card after every change, including
// changes made by background refills. Haptic pulses are delivered as
// "haptic" messages so the frame on the other end can play them.
package server
