// Package events defines the delivery lifecycle events emitted on the event bus.
//
// Available event types:
//   - StateEvent: lifecycle state transition
//   - TrackingEvent: vehicle position and ETA update for an active delivery
//   - RequestFailedEvent: dispatch confirmation failed or timed out
//   - RatingEvent: a station rating was applied
package events
