package adapters

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// parseDateFlexible reads a version date stored as a plain date or as a full
// timestamp. Blank or unparseable values yield nil.
func parseDateFlexible(value string) *time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	layouts := []string{
		dateLayout,
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05 -0700 MST",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}
	return nil
}

func formatDate(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(dateLayout)
}
