package models

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// OrderIDPrefix is the fixed prefix of every business order identifier.
const OrderIDPrefix = "SUMIFUN"

// timestampLayout is second precision and sorts lexicographically in
// chronological order, which the list queries rely on.
const timestampLayout = "2006-01-02 15:04:05"

// GenerateOrderID builds an order identifier of the form
// SUMIFUN-<YYYYMMDDHHmmss>-<3-digit random>. The timestamp plus random
// suffix makes collisions practically unreachable; the store still retries
// on a uniqueness violation.
func GenerateOrderID(now time.Time) string {
	return fmt.Sprintf("%s-%s-%03d", OrderIDPrefix, now.Format("20060102150405"), 100+rand.Intn(900))
}

// FormatTimestamp renders a time in the store's timestamp format.
func FormatTimestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

// GetCurrentTime returns the current server time.
func GetCurrentTime() time.Time {
	return time.Now()
}

// MaskPhone hides all but the last four characters of a phone number with
// asterisks. Numbers of four characters or fewer are returned unchanged.
func MaskPhone(phone string) string {
	runes := []rune(phone)

	if len(runes) <= 4 {
		return phone
	}

	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}
