package mutation

import (
	"strings"

	"github.com/google/uuid"
)

// PlaceholderPrefix marks identifiers synthesized on the device for records
// created while offline. Server identifiers never carry it.
const PlaceholderPrefix = "offline_"

// GeneratePlaceholderID formats a placeholder identifier from a UUID.
// The format is offline_<uuid>.
func GeneratePlaceholderID(id uuid.UUID) string {
	return PlaceholderPrefix + id.String()
}

// IsPlaceholderID reports whether id was synthesized locally.
func IsPlaceholderID(id string) bool {
	return strings.HasPrefix(id, PlaceholderPrefix) && len(id) > len(PlaceholderPrefix)
}
