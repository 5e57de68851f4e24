package core

import "github.com/DanSleeman/anichart-filter/schema"

// watcher reduces mutation batches to the coarse change-signal pair. It never
// tracks affected nodes: a refresh re-scans every card anyway, so two flags
// per batch are enough and avoid redundant repairs or scheduling.
type watcher struct {
	onControlsChanged func()
	onCardsChanged    func()
}

// HandleBatch classifies one batch and fires at most one signal of each kind.
func (w *watcher) HandleBatch(records []schema.MutationRecord) {
	controlsChanged, cardsChanged := classifyBatch(records)
	if controlsChanged && w.onControlsChanged != nil {
		w.onControlsChanged()
	}
	if cardsChanged && w.onCardsChanged != nil {
		w.onCardsChanged()
	}
}

// classifyBatch scans records in delivery order, stopping early once both
// flags are set.
func classifyBatch(records []schema.MutationRecord) (controlsChanged, cardsChanged bool) {
	for _, rec := range records {
		switch rec.Kind {
		case schema.MutationChildList:
			// Removed nodes arrive detached, so a wiped controls root or card
			// only shows up in the target's classification.
			controlsChanged = controlsChanged || rec.Target.Controls
			cardsChanged = cardsChanged || rec.Target.Card
			for _, node := range rec.Added {
				controlsChanged = controlsChanged || node.Controls
				cardsChanged = cardsChanged || node.Card
			}
			for _, node := range rec.Removed {
				controlsChanged = controlsChanged || node.Controls
				cardsChanged = cardsChanged || node.Card
			}
		case schema.MutationAttribute:
			// Style-attribute changes catch lazily-loaded cards whose inline
			// style flips after insertion.
			if rec.Target.Card {
				cardsChanged = true
			}
		}
		if controlsChanged && cardsChanged {
			return controlsChanged, cardsChanged
		}
	}
	return controlsChanged, cardsChanged
}
