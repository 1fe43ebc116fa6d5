package processor

import (
	"weekgrid/internal/chips"
	"weekgrid/internal/models"
)

// diffResult is the set reconciliation between a submission and the events
// currently materialized as chips.
type diffResult struct {
	// toAddOrUpdate holds submitted events that are new, plus events whose
	// id is known but whose value differs field by field from the cached
	// one.
	toAddOrUpdate []*models.ResolvedEvent
	// toRemove holds ids that are cached but absent from the submission.
	toRemove []int64
}

func (d diffResult) isEmpty() bool {
	return len(d.toAddOrUpdate) == 0 && len(d.toRemove) == 0
}

// computeDiff reconciles the submitted events against the originating
// events of the currently cached chips. A multi-day event owns several
// chips sharing one original, so originals are deduplicated by id first.
func computeDiff(submitted []*models.ResolvedEvent, existing []*chips.EventChip) diffResult {
	existingByID := make(map[int64]*models.ResolvedEvent)
	var existingOrder []int64
	for _, chip := range existing {
		id := chip.OriginalEvent.ID
		if _, ok := existingByID[id]; !ok {
			existingOrder = append(existingOrder, id)
		}
		existingByID[id] = chip.OriginalEvent
	}

	submittedIDs := make(map[int64]struct{}, len(submitted))
	var result diffResult

	for _, event := range submitted {
		submittedIDs[event.ID] = struct{}{}
		cached, known := existingByID[event.ID]
		if !known || !event.Equal(cached) {
			result.toAddOrUpdate = append(result.toAddOrUpdate, event)
		}
	}

	for _, id := range existingOrder {
		if _, stillThere := submittedIDs[id]; !stillThere {
			result.toRemove = append(result.toRemove, id)
		}
	}

	return result
}
