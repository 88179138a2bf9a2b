package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/garden-directory/internal/model"
)

// TagRepo provides access to the tags table. Tags are deduplicated by
// name: GetOrCreateTx attaches an existing row when the name is known
// and inserts a new one otherwise.
type TagRepo struct {
	db *sql.DB
}

// NewTagRepo constructs a TagRepo with the given DB handle.
func NewTagRepo(db *sql.DB) *TagRepo { return &TagRepo{db: db} }

// GetOrCreateTx resolves a tag name to a Tag row within an existing
// transaction. The lookup-then-insert sequence can race with a
// concurrent identical create; the UNIQUE index on tags.name rejects
// the duplicate insert and the name is re-read. The caller must
// commit or roll back the transaction.
func (r *TagRepo) GetOrCreateTx(ctx context.Context, tx *sql.Tx, name string) (model.Tag, error) {
	t, err := selectTagByNameTx(ctx, tx, name)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Tag{}, err
	}

	res, err := tx.ExecContext(ctx, "INSERT INTO tags (name) VALUES (?)", name)
	if err != nil {
		if isDuplicateEntry(err) {
			// Lost the race against a concurrent insert; the row exists now.
			return selectTagByNameTx(ctx, tx, name)
		}
		return model.Tag{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Tag{}, err
	}
	return model.Tag{ID: uint64(id), Name: name}, nil
}

// ListByGarden returns all tags attached to a garden through the
// garden_tags join, ordered by tag id. The garden's existence is not
// checked here; callers that need a 404 should verify it first.
func (r *TagRepo) ListByGarden(ctx context.Context, gardenID uint64) ([]model.Tag, error) {
	const q = `SELECT t.id, t.name
	           FROM tags t
	           JOIN garden_tags gt ON gt.tag_id = t.id
	           WHERE gt.garden_id = ?
	           ORDER BY t.id`
	rows, err := r.db.QueryContext(ctx, q, gardenID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Tag, 0)
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func selectTagByNameTx(ctx context.Context, tx *sql.Tx, name string) (model.Tag, error) {
	var t model.Tag
	err := tx.QueryRowContext(ctx, "SELECT id, name FROM tags WHERE name = ? LIMIT 1", name).
		Scan(&t.ID, &t.Name)
	return t, err
}
