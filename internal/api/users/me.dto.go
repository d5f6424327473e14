package users

import "time"

type MeResponse struct {
	User UserDTO  `json:"user"`
	Page *PageDTO `json:"page"`
}

type UserDTO struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Serial       int64     `json:"serial"`
	AuthProvider string    `json:"auth_provider"`
	HasPassword  bool      `json:"has_password"`
	CreatedAt    time.Time `json:"created_at"`
}

type PageDTO struct {
	ID        string `json:"id"`
	Slug      string `json:"slug"`
	PublicURL string `json:"public_url"`
	Name      string `json:"name"`
	IsPublic  bool   `json:"is_public"`
	Views     int64  `json:"views"`
}
