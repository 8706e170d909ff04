package platform

import (
	"crypto/rand"
	"strings"

	"github.com/google/uuid"
)

// Name prefixes for the human-facing IDs of incidents and resources.
const (
	IncidentPrefix = "inc_"
	ResourcePrefix = "res_"
)

const shortIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
const shortIDLength = 10

// NewID returns a time-ordered UUID for append-only rows such as audit
// records and assignments.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func NewName(prefix string) string {
	b := make([]byte, shortIDLength)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	for i := range b {
		b[i] = shortIDAlphabet[b[i]%byte(len(shortIDAlphabet))]
	}
	return prefix + string(b)
}

// ValidName reports whether s looks like a name generated by NewName(prefix).
func ValidName(prefix, s string) bool {
	rest, ok := strings.CutPrefix(s, prefix)
	if !ok || len(rest) != shortIDLength {
		return false
	}
	for _, c := range rest {
		if !strings.ContainsRune(shortIDAlphabet, c) {
			return false
		}
	}
	return true
}

// ValidID reports whether s parses as a UUID.
func ValidID(s string) bool {
	return uuid.Validate(s) == nil
}
