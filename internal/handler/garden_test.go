package handler

import (
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/garden-directory/internal/repository"
)

func newGardenHandler(t *testing.T) (*GardenHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	tags := repository.NewTagRepo(db)
	return NewGardenHandler(repository.NewGardenRepo(db, tags), tags), mock
}

var gardenCols = []string{"id", "owner_id", "name", "description", "latitude", "longitude", "street_name", "photo", "is_public", "joinable", "created_at", "updated_at"}

func TestGardenCreate(t *testing.T) {
	h, mock := newGardenHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM users WHERE id").
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec("INSERT INTO gardens").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT id, name FROM tags WHERE name").
		WithArgs("sun").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(3, "sun"))
	mock.ExpectExec("INSERT INTO garden_tags").
		WithArgs(uint64(7), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM gardens WHERE id").
		WillReturnRows(sqlmock.NewRows(gardenCols).
			AddRow(7, 1, "plot a", nil, 52.37, 4.89, nil, nil, true, true, time.Now(), time.Now()))
	mock.ExpectCommit()

	body := `{"name":"plot a","owner_id":1,"latitude":52.37,"longitude":4.89,"tags":["sun"]}`
	c, rec := newJSONContext(http.MethodPost, "/v1/gardens", body)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"plot a"`)
	assert.Contains(t, rec.Body.String(), `"name":"sun"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGardenCreate_MissingCoordinates(t *testing.T) {
	h, mock := newGardenHandler(t)

	c, rec := newJSONContext(http.MethodPost, "/v1/gardens", `{"name":"plot a","owner_id":1}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "latitude/longitude required")
	// Validation failures never reach the database.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGardenCreate_BlankTag(t *testing.T) {
	h, mock := newGardenHandler(t)

	body := `{"name":"plot a","owner_id":1,"latitude":1,"longitude":2,"tags":["sun","  "]}`
	c, rec := newJSONContext(http.MethodPost, "/v1/gardens", body)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "tag names must not be blank")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGardenCreate_UnknownOwner(t *testing.T) {
	h, mock := newGardenHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM users WHERE id").
		WithArgs(uint64(42)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	body := `{"name":"orphan","owner_id":42,"latitude":1,"longitude":2}`
	c, rec := newJSONContext(http.MethodPost, "/v1/gardens", body)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "owner with this ID does not exist")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGardenGetByID_NotFound(t *testing.T) {
	h, mock := newGardenHandler(t)

	mock.ExpectQuery("FROM gardens WHERE id").
		WithArgs(uint64(5)).
		WillReturnError(sql.ErrNoRows)

	c, rec := newJSONContext(http.MethodGet, "/v1/gardens/5", "")
	c.SetPath("/v1/gardens/:id")
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, h.GetByID(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGardenListTags_UnknownGarden(t *testing.T) {
	h, mock := newGardenHandler(t)

	mock.ExpectQuery("SELECT id FROM gardens WHERE id").
		WithArgs(uint64(5)).
		WillReturnError(sql.ErrNoRows)

	c, rec := newJSONContext(http.MethodGet, "/v1/gardens/5/tags", "")
	c.SetPath("/v1/gardens/:id/tags")
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, h.ListTags(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
