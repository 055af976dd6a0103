package util

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// zoneIDPattern matches a Cloudflare zone identifier: 32 hex characters.
	zoneIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

	// hexColorPattern matches #RGB and #RRGGBB colors.
	hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// ValidateZoneID checks that id looks like a Cloudflare zone identifier.
func ValidateZoneID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("zone id must not be empty")
	}
	if !zoneIDPattern.MatchString(id) {
		return fmt.Errorf("zone id %q must be 32 hexadecimal characters", id)
	}
	return nil
}

// ValidateHexColor checks that c is a #RGB or #RRGGBB color.
func ValidateHexColor(c string) error {
	if !hexColorPattern.MatchString(c) {
		return fmt.Errorf("color %q must be in #RGB or #RRGGBB form", c)
	}
	return nil
}

// apiTokenPattern matches a bearer token: URL-safe characters, no spaces.
var apiTokenPattern = regexp.MustCompile(`^[A-Za-z0-9_\-\.]{20,}$`)

// ValidateAPIToken checks that token can be sent as a bearer token.
func ValidateAPIToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}
	if !apiTokenPattern.MatchString(token) {
		return fmt.Errorf("token must be at least 20 characters of letters, digits, '-', '_' or '.'")
	}
	return nil
}
