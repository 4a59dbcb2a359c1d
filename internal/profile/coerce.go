package profile

import (
	"fmt"
	"regexp"
	"strings"
)

// listDelimiters splits free-form list text on commas, semicolons,
// newlines, and bullet characters. Runs of delimiters collapse.
var listDelimiters = regexp.MustCompile(`[,;\n•]+`)

// ToList coerces an arbitrary decoded JSON value into a trimmed,
// case-insensitively deduplicated list of strings. Arrays keep their
// entries whole; a single string is split on the delimiter set. Any other
// type yields an empty list. The first occurrence's casing wins and
// insertion order is preserved. Total and idempotent.
func ToList(value any) []string {
	switch v := value.(type) {
	case nil:
		return []string{}
	case []string:
		return dedupe(trimAll(v))
	case []any:
		entries := make([]string, 0, len(v))
		for _, e := range v {
			entries = append(entries, stringify(e))
		}
		return dedupe(trimAll(entries))
	case string:
		segments := listDelimiters.Split(v, -1)
		return dedupe(trimAll(segments))
	default:
		return []string{}
	}
}

// ToNullableString coerces a value into a trimmed string pointer. Non-string
// input and strings that are empty after trimming become nil. Total and
// idempotent.
func ToNullableString(value any) *string {
	s, ok := value.(string)
	if !ok {
		return nil
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func stringify(v any) string {
	switch e := v.(type) {
	case string:
		return e
	case nil:
		return ""
	default:
		return fmt.Sprint(e)
	}
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}

// dedupe drops empty entries and case-insensitive duplicates, keeping the
// first-seen casing and order.
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, v)
	}
	return result
}
