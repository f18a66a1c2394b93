// Package table runs one poker table. A Runner is the single writer for its
// game.State: player actions, AI decisions, turn timeouts, seat changes and
// hand starts all pass through the same mutex, while readers take lock-free
// copies of the last committed snapshot.
package table
