package models

import "time"

type RefreshToken struct {
	Token     string
	UserEmail string
	Expires   time.Time
	CreatedAt time.Time
}
