package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/garden-directory/internal/model"
)

// MembershipRepo manages the user_gardens join table. The composite
// primary key (user_id, garden_id) is the authoritative guard against
// a user joining the same garden twice; a duplicate insert surfaces
// as ErrAlreadyMember rather than a raw driver error.
type MembershipRepo struct {
	db *sql.DB
}

// NewMembershipRepo constructs a MembershipRepo with the given DB handle.
func NewMembershipRepo(db *sql.DB) *MembershipRepo { return &MembershipRepo{db: db} }

// GardenRef is the projection returned when listing the gardens a
// user has joined.
type GardenRef struct {
	GardenID uint64 `json:"garden_id"`
	Name     string `json:"name"`
}

// MemberRef is the projection returned when listing the members of a
// garden.
type MemberRef struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
}

// Join inserts a membership row and returns the created marker.
// Returns ErrAlreadyMember when the pair already exists. Whether the
// referenced user and garden exist is checked by the caller; the
// foreign keys reject dangling references regardless.
func (r *MembershipRepo) Join(ctx context.Context, userID, gardenID uint64) (*model.Membership, error) {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO user_gardens (user_id, garden_id) VALUES (?,?)",
		userID, gardenID)
	if err != nil {
		if isDuplicateEntry(err) {
			return nil, ErrAlreadyMember
		}
		return nil, err
	}
	m := &model.Membership{UserID: userID, GardenID: gardenID}
	err = r.db.QueryRowContext(ctx,
		"SELECT created_at FROM user_gardens WHERE user_id = ? AND garden_id = ?",
		userID, gardenID).Scan(&m.CreatedAt)
	if err != nil {
		// The insert committed, so the join succeeded even if a
		// concurrent leave removed the row before this read-back.
		if errors.Is(err, sql.ErrNoRows) {
			m.CreatedAt = time.Now().UTC()
			return m, nil
		}
		return nil, err
	}
	return m, nil
}

// Leave deletes the membership row if present. The returned bool
// reports whether a row was actually removed; deleting a membership
// that never existed is a no-op, not an error.
func (r *MembershipRepo) Leave(ctx context.Context, userID, gardenID uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM user_gardens WHERE user_id = ? AND garden_id = ?",
		userID, gardenID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GardensForUser returns (garden_id, name) pairs for every garden the
// user has joined, ordered by garden id. An empty result is a
// successful empty slice; the handler decides how to present it.
func (r *MembershipRepo) GardensForUser(ctx context.Context, userID uint64) ([]GardenRef, error) {
	const q = `SELECT g.id, g.name
	           FROM user_gardens ug
	           JOIN gardens g ON g.id = ug.garden_id
	           WHERE ug.user_id = ?
	           ORDER BY g.id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]GardenRef, 0)
	for rows.Next() {
		var g GardenRef
		if err := rows.Scan(&g.GardenID, &g.Name); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MembersOfGarden returns (user_id, username) pairs for every member
// of the garden, ordered by user id.
func (r *MembershipRepo) MembersOfGarden(ctx context.Context, gardenID uint64) ([]MemberRef, error) {
	const q = `SELECT u.id, u.username
	           FROM user_gardens ug
	           JOIN users u ON u.id = ug.user_id
	           WHERE ug.garden_id = ?
	           ORDER BY u.id`
	rows, err := r.db.QueryContext(ctx, q, gardenID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]MemberRef, 0)
	for rows.Next() {
		var m MemberRef
		if err := rows.Scan(&m.UserID, &m.Username); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
