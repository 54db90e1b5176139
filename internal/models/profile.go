package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Profile struct {
	bun.BaseModel `bun:"table:profiles"`

	ID        string    `bun:"id,pk" json:"_id"`
	Name      string    `bun:"name,notnull,unique" json:"name"`
	Timezone  string    `bun:"timezone,notnull" json:"timezone"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
}

type CreateProfileRequest struct {
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

type UpdateProfileRequest struct {
	Timezone string `json:"timezone"`
}

// ProfileRef is the populated form of a profile id in responses.
type ProfileRef struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Timezone string `json:"timezone,omitempty"`
}
