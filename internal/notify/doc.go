// Package notify delivers progress messages to a chat side channel.
//
// Delivery is best effort: failures are logged and never returned, so a
// broken bot token cannot stop a claim run.
package notify
