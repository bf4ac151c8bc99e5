package models

import "time"

type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	Salt         []byte
	CreatedAt    time.Time
}

type RefreshToken struct {
	UserID  string
	Expires time.Time
}
