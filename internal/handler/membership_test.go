package handler

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/garden-directory/internal/queue"
	"github.com/iliyamo/garden-directory/internal/repository"
)

// newMembershipHandler wires the handler over sqlmock with the event
// publisher replaced by a channel-backed stub.
func newMembershipHandler(t *testing.T) (*MembershipHandler, sqlmock.Sqlmock, chan queue.MemberJoinedEvent) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := repository.NewUserRepo(db)
	gardens := repository.NewGardenRepo(db, repository.NewTagRepo(db))
	memberships := repository.NewMembershipRepo(db)

	h := NewMembershipHandler(users, gardens, memberships)
	events := make(chan queue.MemberJoinedEvent, 1)
	h.Publish = func(_ context.Context, ev queue.MemberJoinedEvent) error {
		events <- ev
		return nil
	}
	return h, mock, events
}

func TestJoin(t *testing.T) {
	h, mock, events := newMembershipHandler(t)

	joined := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM gardens WHERE id").
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows(gardenCols).
			AddRow(2, 1, "plot a", nil, 0.0, 0.0, nil, nil, true, true, time.Now(), time.Now()))
	mock.ExpectQuery("JOIN garden_tags gt ON gt.tag_id = t.id").
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	mock.ExpectQuery("FROM users WHERE id").
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, "alice", "alice@x.com", "h", time.Now(), time.Now()))
	mock.ExpectExec("INSERT INTO user_gardens").
		WithArgs(uint64(1), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT created_at FROM user_gardens").
		WithArgs(uint64(1), uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(joined))

	c, rec := newJSONContext(http.MethodPost, "/v1/gardens/2?user_id=1", "")
	c.SetPath("/v1/gardens/:id")
	c.SetParamNames("id")
	c.SetParamValues("2")
	require.NoError(t, h.Join(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":1`)
	assert.Contains(t, rec.Body.String(), `"garden_id":2`)

	select {
	case ev := <-events:
		assert.Equal(t, "alice", ev.Username)
		assert.Equal(t, "plot a", ev.GardenName)
		assert.Equal(t, joined.Format(time.RFC3339), ev.JoinedAt)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a member-joined event")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoin_AlreadyMember(t *testing.T) {
	h, mock, events := newMembershipHandler(t)

	mock.ExpectQuery("FROM gardens WHERE id").
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows(gardenCols).
			AddRow(2, 1, "plot a", nil, 0.0, 0.0, nil, nil, true, true, time.Now(), time.Now()))
	mock.ExpectQuery("JOIN garden_tags gt ON gt.tag_id = t.id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	mock.ExpectQuery("FROM users WHERE id").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, "alice", "alice@x.com", "h", time.Now(), time.Now()))
	mock.ExpectExec("INSERT INTO user_gardens").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	c, rec := newJSONContext(http.MethodPost, "/v1/gardens/2?user_id=1", "")
	c.SetPath("/v1/gardens/:id")
	c.SetParamNames("id")
	c.SetParamValues("2")
	require.NoError(t, h.Join(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already a member")
	assert.Empty(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoin_UnknownGarden(t *testing.T) {
	h, mock, _ := newMembershipHandler(t)

	mock.ExpectQuery("FROM gardens WHERE id").
		WithArgs(uint64(9)).
		WillReturnError(sql.ErrNoRows)

	c, rec := newJSONContext(http.MethodPost, "/v1/gardens/9?user_id=1", "")
	c.SetPath("/v1/gardens/:id")
	c.SetParamNames("id")
	c.SetParamValues("9")
	require.NoError(t, h.Join(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "garden not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoin_MissingUserID(t *testing.T) {
	h, _, _ := newMembershipHandler(t)

	c, rec := newJSONContext(http.MethodPost, "/v1/gardens/2", "")
	c.SetPath("/v1/gardens/:id")
	c.SetParamNames("id")
	c.SetParamValues("2")
	require.NoError(t, h.Join(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "user_id required")
}

func TestLeave_NeverJoined(t *testing.T) {
	h, mock, _ := newMembershipHandler(t)

	mock.ExpectExec("DELETE FROM user_gardens").
		WithArgs(uint64(1), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	c, rec := newJSONContext(http.MethodDelete, "/v1/gardens/2/members?user_id=1", "")
	c.SetPath("/v1/gardens/:id/members")
	c.SetParamNames("id")
	c.SetParamValues("2")
	require.NoError(t, h.Leave(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"removed":false`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembers_EmptyIs404(t *testing.T) {
	h, mock, _ := newMembershipHandler(t)

	mock.ExpectQuery("JOIN users u ON u.id = ug.user_id").
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}))

	c, rec := newJSONContext(http.MethodGet, "/v1/gardens/2/members", "")
	c.SetPath("/v1/gardens/:id/members")
	c.SetParamNames("id")
	c.SetParamValues("2")
	require.NoError(t, h.Members(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no members found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGardensForUser(t *testing.T) {
	h, mock, _ := newMembershipHandler(t)

	mock.ExpectQuery("JOIN gardens g ON g.id = ug.garden_id").
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(2, "plot a"))

	c, rec := newJSONContext(http.MethodGet, "/v1/users/1/gardens", "")
	c.SetPath("/v1/users/:id/gardens")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.GardensForUser(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"plot a"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
