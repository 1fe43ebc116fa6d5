// Package events owns the authoritative set of resolved calendar events:
// resolution of host-supplied items, day-splitting against the visible hour
// window, the two cache variants and the paging of month-sized fetch
// windows.
package events

import (
	"weekgrid/internal/models"
)

// Resolve converts host-supplied displayable items into resolved events.
// Resolution is pure per item and happens once per submission, off the UI
// thread. Malformed items (start >= end) are kept here; the splitter drops
// them when chips are produced.
func Resolve(items []models.Displayable) []*models.ResolvedEvent {
	resolved := make([]*models.ResolvedEvent, 0, len(items))
	for _, item := range items {
		event := item.ToResolvedEvent()
		resolved = append(resolved, &event)
	}
	return resolved
}
