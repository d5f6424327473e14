package access

// CapabilityKind names how a caller earned the right to act on a scope.
type CapabilityKind string

const (
	// CapVerifiedIdentity comes from a validated bearer token.
	CapVerifiedIdentity CapabilityKind = "verified_identity"
	// CapSlugScope comes from knowing a page slug. It is not proof of ownership.
	CapSlugScope CapabilityKind = "slug_scope"
)
