package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// IDGenerator produces identifiers for persisted networks. It sits behind an
// interface so the slug-based default can be swapped for a UUID or content
// hash without touching callers.
type IDGenerator interface {
	NetworkID(name string) string
}

// slugIDGenerator builds ids of the form <slug>-<unix-ts>-<suffix>.
type slugIDGenerator struct{}

// NewSlugIDGenerator returns the default network id generator.
func NewSlugIDGenerator() IDGenerator {
	return slugIDGenerator{}
}

func (slugIDGenerator) NetworkID(name string) string {
	suffix := strings.ToLower(shortuuid.New())[:6]
	return fmt.Sprintf("%s-%d-%s", slugify(name), time.Now().Unix(), suffix)
}

// slugify lowercases the name and collapses non-alphanumeric runs to single
// hyphens, capped at 24 characters.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
		if b.Len() >= 24 {
			break
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "network"
	}
	return slug
}
