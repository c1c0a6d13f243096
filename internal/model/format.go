// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"os"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// =============================================================================
// AVATARS
// =============================================================================

const (
	AvatarUser      = "👤"
	AvatarAssistant = "🤖"
	AvatarUnknown   = "💬"
)

// Avatar returns the display glyph for a role.
func Avatar(role Role) string {
	switch role {
	case RoleUser:
		return AvatarUser
	case RoleAssistant:
		return AvatarAssistant
	default:
		return AvatarUnknown
	}
}

// =============================================================================
// TIMESTAMPS
// =============================================================================

// hour12Regions use a 12-hour clock with an AM/PM marker for short times.
var hour12Regions = map[string]bool{
	"US": true, "CA": true, "AU": true, "NZ": true, "IN": true,
	"PH": true, "EG": true, "SA": true, "PK": true,
}

// Locale resolves a language tag from an explicit setting or, when empty,
// from LC_ALL, LC_TIME and LANG in that order. Unparseable or POSIX
// ("C", "POSIX") values fall back to en-US.
func Locale(explicit string) language.Tag {
	candidates := []string{explicit, os.Getenv("LC_ALL"), os.Getenv("LC_TIME"), os.Getenv("LANG")}
	for _, raw := range candidates {
		if tag, ok := parseLocale(raw); ok {
			return tag
		}
	}
	return language.AmericanEnglish
}

func parseLocale(raw string) (language.Tag, bool) {
	raw = strings.TrimSpace(raw)
	// Drop encoding and modifier suffixes: "de_DE.UTF-8@euro" -> "de_DE"
	if i := strings.IndexAny(raw, ".@"); i >= 0 {
		raw = raw[:i]
	}
	if raw == "" || raw == "C" || raw == "POSIX" {
		return language.Und, false
	}
	tag, err := language.Parse(strings.ReplaceAll(raw, "_", "-"))
	if err != nil {
		return language.Und, false
	}
	return tag, true
}

// Uses12HourClock reports whether short times for the tag use AM/PM.
func Uses12HourClock(tag language.Tag) bool {
	region, _ := tag.Region()
	return hour12Regions[region.String()]
}

// FormatTimestamp formats t as a short, two-digit hour:minute string in the
// convention of the given locale, e.g. "03:04 PM" or "15:04".
func FormatTimestamp(t time.Time, tag language.Tag) string {
	if Uses12HourClock(tag) {
		return t.Format("03:04 PM")
	}
	return t.Format("15:04")
}
