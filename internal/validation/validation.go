package validation

import (
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	maxRoomNameLength        = 100
	maxRoomDescriptionLength = 200
)

func MaxMessageLength() int {
	maxStr := os.Getenv("MAX_MESSAGE_LENGTH")
	if maxStr == "" {
		return 300
	}
	max, err := strconv.Atoi(maxStr)
	if err != nil || max < 1 {
		return 300
	}
	return max
}

func TrimAndLimit(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	// Back off to a rune boundary so truncation never splits a multi-byte
	// character.
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func ValidateRoomName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && len(name) <= maxRoomNameLength
}

func ValidateRoomDescription(description string) bool {
	return len(strings.TrimSpace(description)) <= maxRoomDescriptionLength
}
