package models

import "time"

// Admin is an operator account for the admin panel. There is no public
// registration; the first admin is bootstrapped from the environment and
// further ones are created by hand.
type Admin struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Name         string    `db:"name"`
	TOTPSecret   *string   `db:"totp_secret"`
	TOTPEnabled  bool      `db:"totp_enabled"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
