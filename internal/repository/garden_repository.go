package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/garden-directory/internal/model"
)

// GardenRepo provides CRUD operations for gardens and their tag
// associations. Garden creation is a multi-step write (garden row,
// tag rows, garden_tags rows) and runs inside a single transaction so
// a failure leaves no partial state behind.
type GardenRepo struct {
	db   *sql.DB
	tags *TagRepo
}

// NewGardenRepo returns a GardenRepo bound to the given database.
func NewGardenRepo(db *sql.DB, tags *TagRepo) *GardenRepo {
	return &GardenRepo{db: db, tags: tags}
}

const gardenColumns = "id, owner_id, name, description, latitude, longitude, street_name, photo, is_public, joinable, created_at, updated_at"

// Create inserts a garden together with its tag associations as one
// logical unit. The owner must reference an existing user; otherwise
// ErrInvalidOwner is returned and nothing is persisted. Tag names are
// resolved through GetOrCreateTx so an existing name attaches the
// existing tag row. On success the ID, timestamps and Tags fields of
// g are populated.
func (r *GardenRepo) Create(ctx context.Context, g *model.Garden, tagNames []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Fast-path owner check. The FK on gardens.owner_id remains the
	// authoritative guard against a concurrent user deletion.
	var ownerID uint64
	err = tx.QueryRowContext(ctx, "SELECT id FROM users WHERE id = ? LIMIT 1", g.OwnerID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidOwner
		}
		return err
	}

	const qInsert = `INSERT INTO gardens (owner_id, name, description, latitude, longitude, street_name, photo, is_public, joinable)
	                 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, qInsert,
		g.OwnerID, g.Name, g.Description, g.Latitude, g.Longitude,
		g.StreetName, g.Photo, g.IsPublic, g.Joinable)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrInvalidOwner
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)

	attached, err := r.attachTagsTx(ctx, tx, g.ID, tagNames)
	if err != nil {
		return err
	}

	// Read the row back so defaults and timestamps are populated.
	const qSelect = `SELECT ` + gardenColumns + ` FROM gardens WHERE id = ?`
	if err := tx.QueryRowContext(ctx, qSelect, g.ID).Scan(
		&g.ID, &g.OwnerID, &g.Name, &g.Description, &g.Latitude, &g.Longitude,
		&g.StreetName, &g.Photo, &g.IsPublic, &g.Joinable, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	g.Tags = attached
	return nil
}

// attachTagsTx resolves each tag name and inserts the garden_tags
// pairs in a single statement. Duplicate names in the input collapse
// to one association so the (garden_id, tag_id) primary key holds.
func (r *GardenRepo) attachTagsTx(ctx context.Context, tx *sql.Tx, gardenID uint64, tagNames []string) ([]model.Tag, error) {
	tags := make([]model.Tag, 0, len(tagNames))
	seen := make(map[string]bool, len(tagNames))
	for _, name := range tagNames {
		if seen[name] {
			continue
		}
		seen[name] = true
		t, err := r.tags.GetOrCreateTx(ctx, tx, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if len(tags) == 0 {
		return tags, nil
	}

	query := "INSERT INTO garden_tags (garden_id, tag_id) VALUES "
	args := make([]interface{}, 0, len(tags)*2)
	for i, t := range tags {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, gardenID, t.ID)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}
	return tags, nil
}

// GetByID returns a garden with its tags eagerly populated. Returns
// ErrGardenNotFound when no row matches.
func (r *GardenRepo) GetByID(ctx context.Context, id uint64) (*model.Garden, error) {
	var g model.Garden
	err := r.db.QueryRowContext(ctx,
		"SELECT "+gardenColumns+" FROM gardens WHERE id = ? LIMIT 1", id).Scan(
		&g.ID, &g.OwnerID, &g.Name, &g.Description, &g.Latitude, &g.Longitude,
		&g.StreetName, &g.Photo, &g.IsPublic, &g.Joinable, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGardenNotFound
		}
		return nil, err
	}
	tags, err := r.tags.ListByGarden(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	g.Tags = tags
	return &g, nil
}

// List returns a page of gardens ordered by id ascending with tags
// populated for each. Tags for the whole page are fetched in one IN
// query instead of one query per garden.
func (r *GardenRepo) List(ctx context.Context, offset, limit int) ([]*model.Garden, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+gardenColumns+" FROM gardens ORDER BY id ASC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	gardens := make([]*model.Garden, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var g model.Garden
		if err := rows.Scan(
			&g.ID, &g.OwnerID, &g.Name, &g.Description, &g.Latitude, &g.Longitude,
			&g.StreetName, &g.Photo, &g.IsPublic, &g.Joinable, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		g.Tags = []model.Tag{}
		index[g.ID] = len(gardens)
		gardens = append(gardens, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(gardens) == 0 {
		return gardens, nil
	}

	ids := make([]interface{}, 0, len(gardens))
	placeholders := make([]string, 0, len(gardens))
	for _, g := range gardens {
		ids = append(ids, g.ID)
		placeholders = append(placeholders, "?")
	}
	tagQuery := `SELECT gt.garden_id, t.id, t.name
	             FROM garden_tags gt
	             JOIN tags t ON t.id = gt.tag_id
	             WHERE gt.garden_id IN (` + strings.Join(placeholders, ",") + `)
	             ORDER BY gt.garden_id, t.id`
	trows, err := r.db.QueryContext(ctx, tagQuery, ids...)
	if err != nil {
		return nil, err
	}
	defer trows.Close()
	for trows.Next() {
		var gid uint64
		var t model.Tag
		if err := trows.Scan(&gid, &t.ID, &t.Name); err != nil {
			return nil, err
		}
		idx, ok := index[gid]
		if !ok {
			continue
		}
		gardens[idx].Tags = append(gardens[idx].Tags, t)
	}
	if err := trows.Err(); err != nil {
		return nil, err
	}
	return gardens, nil
}

// Exists reports whether a garden with the given id exists.
func (r *GardenRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var got uint64
	err := r.db.QueryRowContext(ctx, "SELECT id FROM gardens WHERE id = ? LIMIT 1", id).Scan(&got)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
