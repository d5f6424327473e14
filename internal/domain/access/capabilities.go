package access

import (
	"footprint-app/internal/apperr"
)

// Identity is a verified caller, built by the auth middleware from token claims.
type Identity struct {
	UserID string
	Email  string
	Serial int64
	Role   string
}

// SlugCapability scopes serial-keyed mutations (links, library, rooms) to the
// owner of a slug. Holding one only proves the caller knows the slug.
type SlugCapability struct {
	Slug   string
	Serial int64
	Caller *Identity
}

func (c SlugCapability) Kind() CapabilityKind {
	if c.Caller != nil && c.Caller.Serial == c.Serial {
		return CapVerifiedIdentity
	}
	return CapSlugScope
}

// Policy decides whether a capability is enough for a mutation.
type Policy struct {
	// StrictSlugScope requires a verified identity owning the slug for
	// serial-scoped mutations. Off by default: any caller who knows a slug can
	// add, reorder or delete that owner's links and library items.
	StrictSlugScope bool
}

// AuthorizeSerialScope applies the policy to a slug capability.
func (p Policy) AuthorizeSerialScope(c SlugCapability) error {
	if !p.StrictSlugScope {
		return nil
	}
	if c.Kind() != CapVerifiedIdentity {
		return apperr.Forbidden("Verified owner required for %s", c.Slug)
	}
	return nil
}

// OwnsPage reports whether the verified caller owns a page with ownerID.
func OwnsPage(caller *Identity, ownerID string) bool {
	return caller != nil && caller.UserID != "" && caller.UserID == ownerID
}
