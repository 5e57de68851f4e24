package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"pkt.systems/pslog"

	"github.com/DanSleeman/anichart-filter/schema"
)

// Engine reconciles the persisted selection against a continuously mutating
// document. Mutation batches are classified into coarse change signals,
// bursts collapse into one debounced refresh, and each refresh re-applies the
// filtering predicate to every card. The engine only annotates cards; the
// host page owns them.
type Engine struct {
	cfg      schema.EngineConfig
	doc      Document
	controls ControlSurface
	store    SelectionStore
	sink     SignalSink
	log      pslog.Logger

	debounce *debouncer
	watch    *watcher

	mu          sync.Mutex
	selection   schema.Selection
	started     bool
	ctx         context.Context
	cancel      context.CancelFunc
	stopObserve func()

	// refreshMu serializes refresh passes; writing marks the engine's own
	// DOM write phase so its mutations are not reclassified as card changes.
	refreshMu sync.Mutex
	writing   atomic.Bool
}

// NewEngine validates dependencies and constructs the engine.
func NewEngine(cfg schema.EngineConfig, deps EngineDeps) (*Engine, error) {
	normalized, err := schema.NormalizeEngineConfig(cfg)
	if err != nil {
		return nil, err
	}
	if deps.Document == nil {
		return nil, schema.ErrDocumentRequired
	}
	if deps.Controls == nil {
		return nil, schema.ErrControlsRequired
	}
	if deps.Store == nil {
		return nil, schema.ErrStoreRequired
	}
	sink := deps.Sink
	if sink == nil {
		sink = nopSink{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	e := &Engine{
		cfg:       normalized,
		doc:       deps.Document,
		controls:  deps.Controls,
		store:     deps.Store,
		sink:      sink,
		log:       logger,
		selection: schema.NewSelection(),
	}
	e.debounce = newDebouncer(normalized.DebounceInterval, e.runRefresh)
	e.watch = &watcher{
		onControlsChanged: e.onControlsChanged,
		onCardsChanged:    e.onCardsChanged,
	}
	return e, nil
}

// Start restores the persisted selection, injects presentational assets,
// repairs the control surface, subscribes to mutations, and schedules the
// initial refresh. Calling Start on a running engine is a no-op, so repeated
// host-side script injection never duplicates observers or markup.
func (e *Engine) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		e.log.Debug("engine start skipped", "reason", "already started")
		return nil
	}
	sel, err := e.store.Load()
	if err != nil {
		e.log.Warn("selection load failed", "err", err)
		sel = schema.NewSelection()
	}
	if sel == nil {
		sel = schema.NewSelection()
	}
	e.selection = sel
	e.ctx, e.cancel = context.WithCancel(ctx)
	runCtx := e.ctx
	e.mu.Unlock()

	fail := func(err error) error {
		e.mu.Lock()
		cancel := e.cancel
		e.ctx, e.cancel = nil, nil
		e.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		return err
	}
	if err := e.doc.EnsureStyles(runCtx); err != nil {
		return fail(fmt.Errorf("inject styles: %w", err))
	}
	if err := e.controls.Repair(runCtx, sel.Clone()); err != nil {
		return fail(fmt.Errorf("repair controls: %w", err))
	}
	stop, err := e.doc.Observe(runCtx, e.handleBatch)
	if err != nil {
		return fail(fmt.Errorf("observe document: %w", err))
	}

	e.mu.Lock()
	e.stopObserve = stop
	e.started = true
	e.mu.Unlock()

	e.log.Info("engine started", "selection", sel.Tokens(), "debounce", e.cfg.DebounceInterval)
	e.debounce.Request()
	return nil
}

// Stop cancels the pending refresh and unsubscribes from mutations.
func (e *Engine) Stop() {
	e.mu.Lock()
	stop := e.stopObserve
	cancel := e.cancel
	started := e.started
	e.stopObserve = nil
	e.started = false
	e.mu.Unlock()
	if !started {
		return
	}
	e.debounce.Stop()
	if stop != nil {
		stop()
	}
	if cancel != nil {
		cancel()
	}
	e.log.Info("engine stopped")
}

// Selection returns a copy of the current selection set.
func (e *Engine) Selection() schema.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection.Clone()
}

// Toggle records a user toggle, persists the new selection, and requests a
// debounced refresh. The refresh is requested even when persisting fails so
// filtering stays consistent with what the user sees.
func (e *Engine) Toggle(token schema.ColorToken, enabled bool) error {
	if !token.Known() {
		return fmt.Errorf("%w: %q", schema.ErrUnknownColor, token)
	}
	e.mu.Lock()
	e.selection.Set(token, enabled)
	sel := e.selection.Clone()
	e.mu.Unlock()

	saveErr := e.store.Save(sel)
	if saveErr != nil {
		e.log.Warn("selection save failed", "err", saveErr)
	}
	e.log.Debug("selection toggled", "token", token, "enabled", enabled, "selection", sel.Tokens())
	e.debounce.Request()
	return saveErr
}

// handleBatch feeds one mutation batch to the classifier. Attribute records
// observed during the engine's own write phase are dropped: they are echoes
// of refresh's display/class writes, not new card changes. Child-list
// records always pass through, which costs at most one extra settle cycle.
func (e *Engine) handleBatch(records []schema.MutationRecord) {
	if e.writing.Load() {
		records = withoutAttributeRecords(records)
		if len(records) == 0 {
			return
		}
	}
	e.watch.HandleBatch(records)
}

func withoutAttributeRecords(records []schema.MutationRecord) []schema.MutationRecord {
	out := make([]schema.MutationRecord, 0, len(records))
	for _, rec := range records {
		if rec.Kind == schema.MutationAttribute {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (e *Engine) onControlsChanged() {
	e.sink.OnControlsChanged()
	ctx := e.runContext()
	if ctx == nil || ctx.Err() != nil {
		return
	}
	if err := e.controls.Repair(ctx, e.Selection()); err != nil {
		e.log.Warn("controls repair failed", "err", err)
	}
}

func (e *Engine) onCardsChanged() {
	e.sink.OnCardsChanged()
	e.debounce.Request()
}

func (e *Engine) runContext() context.Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx
}

// runRefresh is the debounce target. It never runs concurrently with itself
// and never lets a fault escape: the host page's partial loads and async
// re-renders are steady-state, so the observation loop must survive them.
func (e *Engine) runRefresh() {
	e.refreshMu.Lock()
	defer e.refreshMu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("refresh panicked", "panic", r)
		}
	}()
	ctx := e.runContext()
	if ctx == nil || ctx.Err() != nil {
		return
	}
	e.refresh(ctx)
}

func (e *Engine) refresh(ctx context.Context) {
	// The host's lazy loader only reveals more cards after a viewport signal.
	if err := e.doc.SignalViewport(ctx); err != nil {
		e.log.Debug("viewport signal failed", "err", err)
	}
	cards, err := e.doc.Cards(ctx)
	if err != nil {
		e.log.Warn("card enumeration failed", "err", err)
		return
	}
	if len(cards) == 0 {
		e.log.Debug("refresh skipped", "reason", "no cards")
		return
	}
	sel := e.Selection()

	e.writing.Store(true)
	defer e.writing.Store(false)

	var stats schema.RefreshStats
	stats.Cards = len(cards)
	for _, card := range cards {
		aired := AiredMarker(card.StatusText)
		if aired {
			stats.Aired++
		}
		if err := e.doc.SetAired(ctx, card.ID, aired); err != nil {
			e.log.Warn("aired marker write failed", "card", card.ID, "err", err)
		}
		if !card.HasHighlight {
			// No highlight element is not an error; leave display untouched.
			continue
		}
		color, ok := ParseHighlightColor(card.HighlightStyle)
		show := ShouldShow(color, ok, sel)
		if !show {
			stats.Hidden++
		}
		if err := e.doc.SetHidden(ctx, card.ID, !show); err != nil {
			e.log.Warn("display write failed", "card", card.ID, "err", err)
		}
	}
	e.sink.OnRefresh(stats)
	e.log.Debug("refresh ok", "cards", stats.Cards, "hidden", stats.Hidden, "aired", stats.Aired)
}
