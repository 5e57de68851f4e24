package core

import (
	"context"

	"github.com/DanSleeman/anichart-filter/schema"
)

// Document is the injected capability over the externally-owned page. The
// engine only reads cards and annotates them; it never owns the tree.
type Document interface {
	// Cards enumerates the current content cards, covering both card variants.
	Cards(ctx context.Context) ([]schema.Card, error)
	// SetHidden applies or clears the display override for a card. Clearing
	// restores the host page's default display rather than removing the node.
	SetHidden(ctx context.Context, id schema.CardID, hidden bool) error
	// SetAired applies or removes the aired marker class for a card.
	SetAired(ctx context.Context, id schema.CardID, aired bool) error
	// SignalViewport nudges the host page's lazy loader before a scan. The
	// host only reveals additional cards in response to this signal.
	SignalViewport(ctx context.Context) error
	// EnsureStyles injects the overlay style block. Idempotent, keyed by a
	// marker id.
	EnsureStyles(ctx context.Context) error
	// Observe subscribes fn to mutation batches for the page subtree. The
	// returned stop function unsubscribes; both are safe to call once.
	Observe(ctx context.Context, fn func(batch []schema.MutationRecord)) (stop func(), err error)
}

// ControlSurface builds or repairs the selection checkboxes inside the
// host-provided container. Repair must be idempotent: calling it redundantly
// never duplicates nodes or listeners.
type ControlSurface interface {
	Repair(ctx context.Context, sel schema.Selection) error
}

// SelectionStore persists the selection set under a single durable key.
type SelectionStore interface {
	// Load returns the persisted selection; missing or malformed state yields
	// an empty selection rather than an error.
	Load() (schema.Selection, error)
	Save(sel schema.Selection) error
}

// ToggleSource delivers user checkbox toggles from the control surface.
type ToggleSource interface {
	SetOnToggle(fn func(event schema.ToggleEvent))
}
