// Package uuid generates and checks the random v4 identifiers used for
// orders, payments, sessions and outbox events.
package uuid

import (
	"regexp"

	"github.com/google/uuid"
)

// Canonical v4 form: the version nibble is 4 and the variant nibble is
// one of 8, 9, a, b.
var v4Pattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-4[0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

// New returns a fresh v4 identifier in canonical string form.
func New() string {
	return uuid.NewString()
}

// IsValid reports whether s is a canonical v4 identifier.
func IsValid(s string) bool {
	return v4Pattern.MatchString(s)
}
