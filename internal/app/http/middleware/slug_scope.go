package middleware

import (
	"footprint-app/internal/api/respond"
	"footprint-app/internal/domain/access"
	"footprint-app/internal/pages"

	"github.com/gin-gonic/gin"
)

const capabilityKey = "slug_capability"

// RequireSlugScope resolves the :slug param to its owner serial and applies
// policy before serial-scoped mutations. Run OptionalAuth first so a verified
// caller is attached to the capability.
func RequireSlugScope(gate *pages.Gate, policy access.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		capability, err := gate.SlugCapability(c.Request.Context(), CurrentIdentity(c), c.Param("slug"))
		if err != nil {
			respond.Error(c, err)
			c.Abort()
			return
		}
		if err := policy.AuthorizeSerialScope(capability); err != nil {
			respond.Error(c, err)
			c.Abort()
			return
		}
		c.Set(capabilityKey, capability)
		c.Next()
	}
}

// SlugScope returns the capability stored by RequireSlugScope.
func SlugScope(c *gin.Context) (access.SlugCapability, bool) {
	v, ok := c.Get(capabilityKey)
	if !ok {
		return access.SlugCapability{}, false
	}
	capability, ok := v.(access.SlugCapability)
	return capability, ok
}
