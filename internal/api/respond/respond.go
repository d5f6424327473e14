// Package respond writes handler errors in the shape every endpoint uses:
// {"error": message, "kind": taxonomy kind}.
package respond

import (
	"footprint-app/internal/apperr"

	"github.com/gin-gonic/gin"
)

const kindInternal = "internal"

func Error(c *gin.Context, err error) {
	kind := string(apperr.KindOf(err))
	if kind == "" {
		kind = kindInternal
	}
	_ = c.Error(err)
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err), "kind": kind})
}

// BadRequest reports a malformed body or parameter.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(400, gin.H{"error": msg, "kind": string(apperr.KindValidation)})
}
