package sessions

import (
	"strings"

	"github.com/engleong-lee/stash/internal/models"
)

// Filter returns the sessions whose name, or any tab title or URL, contains
// query case-insensitively. A blank query matches everything.
func Filter(sessions []models.Session, query string) []models.Session {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return sessions
	}

	matched := []models.Session{}
	for _, sess := range sessions {
		if matches(sess, term) {
			matched = append(matched, sess)
		}
	}
	return matched
}

func matches(sess models.Session, term string) bool {
	if strings.Contains(strings.ToLower(sess.Name), term) {
		return true
	}
	for _, tab := range sess.Tabs {
		if strings.Contains(strings.ToLower(tab.Title), term) ||
			strings.Contains(strings.ToLower(tab.URL), term) {
			return true
		}
	}
	return false
}

// MergeTabs appends the tabs in extra whose URL is not already in tabs.
func MergeTabs(tabs, extra []models.Tab) []models.Tab {
	seen := make(map[string]bool, len(tabs))
	merged := make([]models.Tab, 0, len(tabs)+len(extra))
	for _, t := range tabs {
		seen[t.URL] = true
		merged = append(merged, t)
	}
	for _, t := range extra {
		if seen[t.URL] {
			continue
		}
		seen[t.URL] = true
		merged = append(merged, t)
	}
	return merged
}
