package tool

import (
	"strings"

	"github.com/google/uuid"
)

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// IsUUID reports whether s parses as a UUID. Ids arriving from scanners and
// webhook reference fields are checked before they reach the store.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// TrimPrefixedID strips a "<prefix>_" reference tag such as "hh_" or "visit_"
// and returns the id when the remainder is a UUID.
func TrimPrefixedID(ref, prefix string) (string, bool) {
	id, ok := strings.CutPrefix(ref, prefix+"_")
	if !ok || !IsUUID(id) {
		return "", false
	}
	return id, true
}
