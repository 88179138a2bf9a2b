// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting raw driver errors. Uniqueness races (duplicate email,
// duplicate tag name, duplicate membership) are closed by UNIQUE
// constraints in MySQL; the helpers here translate the resulting
// driver errors into the sentinels.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrUserNotFound is returned when a user lookup matches no row.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when registering with an email that is
// already taken. The users.email UNIQUE index is the authoritative
// guard; the pre-insert lookup in the handler is only a fast path.
var ErrEmailExists = errors.New("email already exists")

// ErrGardenNotFound is returned when a garden lookup matches no row.
var ErrGardenNotFound = errors.New("garden not found")

// ErrInvalidOwner is returned when creating a garden whose owner_id
// does not reference an existing user.
var ErrInvalidOwner = errors.New("owner does not exist")

// ErrAlreadyMember is returned when inserting a (user, garden)
// membership pair that already exists.
var ErrAlreadyMember = errors.New("already a member")

// MySQL error numbers for constraint violations.
const (
	mysqlErrDuplicateEntry = 1062
	mysqlErrForeignKey     = 1452
)

func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
}

func isForeignKeyViolation(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrForeignKey
}
