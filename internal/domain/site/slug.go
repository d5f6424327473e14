package site

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

/*
	Slug helpers
	------------
	- Responsible ONLY for:
	  • generating footprint slugs
	  • checking them against the footprints table
	  • building public URLs
	- No ownership logic here
*/

const (
	slugPrefix     = "fp"
	suffixLength   = 4
	suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	maxSlugTries   = 5
)

var (
	nonSlug   = regexp.MustCompile(`[^a-z0-9\-]+`)
	multiDash = regexp.MustCompile(`-+`)

	// SlugPattern matches generated default slugs, e.g. "fp-1002-x7k2".
	SlugPattern = regexp.MustCompile(`^fp-[0-9]+-[a-z0-9]{4}$`)

	ErrSlugExhausted = errors.New("could not find a free slug")
)

// MakeSlug builds the default slug for a serial: "fp-<serial>-<suffix>".
func MakeSlug(serial int64, suffix string) string {
	return fmt.Sprintf("%s-%d-%s", slugPrefix, serial, suffix)
}

// NormalizeSlug lowercases a user-supplied handle and strips anything that is not URL-safe.
// Example: " My Page " -> "my-page"
func NormalizeSlug(s string) string {
	base := strings.ToLower(strings.TrimSpace(s))
	base = strings.ReplaceAll(base, " ", "-")
	base = nonSlug.ReplaceAllString(base, "")
	base = multiDash.ReplaceAllString(base, "-")
	return strings.Trim(base, "-")
}

func randomSuffix() (string, error) {
	b := make([]byte, suffixLength)
	max := big.NewInt(int64(len(suffixAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = suffixAlphabet[n.Int64()]
	}
	return string(b), nil
}

// NewFootprintSlug returns a default slug for serial that is not yet taken.
// The unique index on footprints.slug still backs this check against concurrent inserts.
//
// IMPORTANT: pass db (or the current tx) in, do NOT import footprint-app/database here.
func NewFootprintSlug(db *gorm.DB, serial int64) (string, error) {
	if db == nil {
		return "", fmt.Errorf("db is nil")
	}
	for i := 0; i < maxSlugTries; i++ {
		suffix, err := randomSuffix()
		if err != nil {
			return "", err
		}
		slug := MakeSlug(serial, suffix)

		var count int64
		if err := db.Model(&Footprint{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
	}
	return "", ErrSlugExhausted
}

// BuildPublicURL builds the public page URL from a slug.
// Example: "fp-1002-x7k2" -> "https://footprint.page/fp-1002-x7k2"
func BuildPublicURL(appURL, slug string) string {
	return strings.TrimRight(appURL, "/") + "/" + slug
}
