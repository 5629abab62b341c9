package device

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Validation constants.
const (
	maxNameLength = 100
	maxSlugLength = 50

	// Characters that would break the pipe-delimited record format.
	forbiddenNameChars = "|\n\r"
)

// ValidateName checks a device name can be stored and read back unchanged.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(trimmed) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	if strings.ContainsAny(name, forbiddenNameChars) {
		return fmt.Errorf("%w: name cannot contain '|' or line breaks", ErrInvalidName)
	}
	return nil
}

// GenerateSlug creates a URL and topic safe slug from a device name.
// Example: "Living Room Lamp" -> "living-room-lamp"
// Names with no usable characters map to "device".
func GenerateSlug(name string) string {
	slug := strings.ToLower(name)

	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")

	var result strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}
	slug = result.String()

	slug = strings.Trim(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}

	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
		slug = strings.TrimRight(slug, "-")
	}

	if slug == "" {
		return "device"
	}
	return slug
}

// GenerateID creates a new random identifier for a device session.
func GenerateID() string {
	return uuid.New().String()
}
