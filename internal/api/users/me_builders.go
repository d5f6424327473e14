package users

import (
	"footprint-app/internal/domain/site"
	"footprint-app/internal/domain/users"
)

func BuildUserDTO(u users.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		Serial:       u.Serial,
		AuthProvider: u.AuthProvider,
		HasPassword:  u.Password != nil && *u.Password != "",
		CreatedAt:    u.CreatedAt,
	}
}

// BuildPageDTO returns nil for an identity whose default page was never written.
func BuildPageDTO(appURL string, p *site.Footprint) *PageDTO {
	if p == nil || p.ID == "" {
		return nil
	}
	return &PageDTO{
		ID:        p.ID,
		Slug:      p.Slug,
		PublicURL: site.BuildPublicURL(appURL, p.Slug),
		Name:      p.Name,
		IsPublic:  p.IsPublic,
		Views:     p.Views,
	}
}
