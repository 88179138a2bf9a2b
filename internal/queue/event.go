// Package queue defines message payloads exchanged over the message broker.
package queue

// MemberJoinedEvent is published when a user successfully joins a
// garden. It carries enough context for downstream consumers to
// notify or log without querying the primary database.
type MemberJoinedEvent struct {
	UserID     uint64 `json:"user_id"`
	Username   string `json:"username"`
	GardenID   uint64 `json:"garden_id"`
	GardenName string `json:"garden_name"`
	JoinedAt   string `json:"joined_at"`
}
