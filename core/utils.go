package core

import (
	"strings"
	"time"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// CleanStrings applies CleanString to every item and drops the blank ones.
// A nil slice stays nil.
func CleanStrings(ss []string) []string {
	if ss == nil {
		return nil
	}
	cleaned := make([]string, 0, len(ss))
	for _, s := range ss {
		if s = CleanString(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}

var NowFunc = func() time.Time { return time.Now().UTC() } // mockable
