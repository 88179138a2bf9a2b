package model

import "time"

// User represents an account record as stored in the `users` table.
// Each field corresponds to a column. The password is persisted only
// as a bcrypt hash; handlers define separate response types so the
// hash is never serializable by accident.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – display name, not unique.
//  Email        – unique email address, used as the login key.
//  PasswordHash – bcrypt hashed password.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
