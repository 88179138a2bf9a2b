package model

import "time"

// Membership is a row in the `user_gardens` join table recording that
// a user has joined a garden. The (user_id, garden_id) pair is the
// primary key, so the same user cannot join the same garden twice.
// The garden owner is not implicitly a member.
type Membership struct {
	UserID    uint64    // user_gardens.user_id
	GardenID  uint64    // user_gardens.garden_id
	CreatedAt time.Time // user_gardens.created_at
}
