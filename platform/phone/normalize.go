// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "IN"

var chatSuffixes = []string{"@c.us", "@g.us", "@s.whatsapp.net"}

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// NormalizeDigits returns the E.164 form of input without the leading "+".
// Numbers that do not parse keep their digits only, so "98765 43210" and
// "+91 98765-43210" both become "919876543210".
func NormalizeDigits(input string) string {
	normalized := NormalizeE164(input)
	if strings.HasPrefix(normalized, "+") {
		return normalized[1:]
	}
	return Digits(normalized)
}

// Digits strips every non-digit rune.
func Digits(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FromChatID turns a provider chat id such as "919876543210@c.us" into its digits.
func FromChatID(chatID string) string {
	id := strings.TrimSpace(chatID)
	for _, suffix := range chatSuffixes {
		id = strings.TrimSuffix(id, suffix)
	}
	return Digits(id)
}

// ToChatID builds the provider chat id for a stored mobile number.
// Ten digit numbers get the India country code; 8 or 9 digit numbers too.
// Over-long numbers are cut to 12 digits when they start with 91, otherwise to 15.
func ToChatID(mobile string) string {
	digits := Digits(FromChatID(mobile))
	switch n := len(digits); {
	case n == 0:
		return ""
	case n == 8 || n == 9 || n == 10:
		digits = "91" + digits
	case n > 15:
		if strings.HasPrefix(digits, "91") {
			digits = digits[:12]
		} else {
			digits = digits[:15]
		}
	}
	return digits + "@c.us"
}
