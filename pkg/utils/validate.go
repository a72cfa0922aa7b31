package utils

import (
	"errors"
	"strings"
)

// ValidateChannelID validates that the given channel identifier is a
// plausible snowflake: non-empty and digits only.
func ValidateChannelID(id string) error {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return errors.New("channel ID is required and must be a non-empty string")
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return errors.New("channel ID must contain only digits")
		}
	}
	return nil
}
