// Package session owns one player's swipe state: a Feed Loader, a Swipe Deck
// Controller, the wallet identity and the amount spent per accepted card.
//
// A Session is created when a player connects and torn down when they leave.
// Nothing is shared between sessions except the explore client, the
// preferences store and the decision journal.
//
// Accepting a card needs a wallet and an amount. When either is missing the
// decision is rewound so the same card is presented again and the caller
// gets ErrNeedsLogin or ErrNeedsAmount to prompt the player with.
package session
