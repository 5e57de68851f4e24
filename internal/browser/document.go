// Package browser implements the document capability against a live page
// over the Chrome DevTools Protocol. All DOM reads and writes are evaluated
// in the page; mutation batches and checkbox toggles travel back over CDP
// runtime bindings.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"pkt.systems/pslog"

	"github.com/DanSleeman/anichart-filter/schema"
)

const (
	styleMarkerID    = "acf-style"
	controlsMarkerID = "acf-controls-root"
	mutationBinding  = "__acfMutations"
	toggleBinding    = "__acfToggle"
)

const (
	setDisplayScript = `(cfg) => {
	const el = document.querySelector('[data-acf-id="' + cfg.id + '"]');
	if (!el) { return false; }
	el.style.display = cfg.hidden ? 'none' : '';
	return true;
}`
	setAiredScript = `(cfg) => {
	const el = document.querySelector('[data-acf-id="' + cfg.id + '"]');
	if (!el) { return false; }
	el.classList.toggle('acf-aired', cfg.aired);
	return true;
}`
	viewportScript = `() => { window.dispatchEvent(new Event('scroll')); return true; }`
	styleScript    = `(cfg) => {
	if (document.getElementById(cfg.markerId)) { return true; }
	const style = document.createElement('style');
	style.id = cfg.markerId;
	style.textContent = cfg.css;
	document.head.appendChild(style);
	return true;
}`
	disconnectScript = `() => {
	if (typeof window.__acfObserverDisconnect === 'function') { window.__acfObserverDisconnect(); }
	return true;
}`
)

// Config names the host page's selectors.
type Config struct {
	CardSelectors     []string
	ControlsSelector  string
	HighlightSelector string
	StatusSelector    string
}

// Document drives one attached browser tab. It implements the engine's
// Document and ControlSurface capabilities plus the toggle source.
type Document struct {
	ctx context.Context
	cfg Config
	log pslog.Logger

	observing atomic.Bool

	mu       sync.Mutex
	observer func(batch []schema.MutationRecord)
	onToggle func(event schema.ToggleEvent)
}

// NewDocument binds to the tab behind ctx (a chromedp context) and registers
// the CDP bindings used by the observer and the control surface.
func NewDocument(ctx context.Context, cfg Config, logger pslog.Logger) (*Document, error) {
	if ctx == nil {
		return nil, errors.New("chromedp context is required")
	}
	if len(cfg.CardSelectors) == 0 {
		return nil, errors.New("at least one card selector is required")
	}
	if cfg.ControlsSelector == "" {
		return nil, errors.New("controls selector is required")
	}
	if logger == nil {
		logger = pslog.Ctx(ctx)
	}
	d := &Document{ctx: ctx, cfg: cfg, log: logger}
	chromedp.ListenTarget(ctx, d.handleTargetEvent)
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		if err := runtime.AddBinding(mutationBinding).Do(ctx); err != nil {
			return err
		}
		return runtime.AddBinding(toggleBinding).Do(ctx)
	}))
	if err != nil {
		return nil, fmt.Errorf("register bindings: %w", err)
	}
	return d, nil
}

// Navigate loads url in the attached tab and waits for the page to be ready.
func (d *Document) Navigate(ctx context.Context, url string) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return chromedp.Run(d.ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	)
}

// SetOnToggle installs the handler for user checkbox toggles.
func (d *Document) SetOnToggle(fn func(event schema.ToggleEvent)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onToggle = fn
}

// Cards enumerates the current content cards, tagging each with a stable id.
func (d *Document) Cards(ctx context.Context) ([]schema.Card, error) {
	var cards []schema.Card
	err := d.eval(ctx, cardsScript, map[string]any{
		"cardSelectors":     d.cfg.CardSelectors,
		"highlightSelector": d.cfg.HighlightSelector,
		"statusSelector":    d.cfg.StatusSelector,
	}, &cards)
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// SetHidden sets or clears the display override for a card.
func (d *Document) SetHidden(ctx context.Context, id schema.CardID, hidden bool) error {
	return d.eval(ctx, setDisplayScript, map[string]any{"id": id, "hidden": hidden}, nil)
}

// SetAired applies or removes the aired marker class for a card.
func (d *Document) SetAired(ctx context.Context, id schema.CardID, aired bool) error {
	return d.eval(ctx, setAiredScript, map[string]any{"id": id, "aired": aired}, nil)
}

// SignalViewport dispatches a synthetic scroll so the host's lazy loader
// reveals cards outside the sparse initial viewport.
func (d *Document) SignalViewport(ctx context.Context) error {
	return d.eval(ctx, viewportScript, nil, nil)
}

// EnsureStyles injects the overlay style block once, keyed by a marker id.
func (d *Document) EnsureStyles(ctx context.Context) error {
	return d.eval(ctx, styleScript, map[string]any{
		"markerId": styleMarkerID,
		"css":      overlayCSS,
	}, nil)
}

// Repair builds or refreshes the selection checkboxes inside the host's
// controls container. Idempotent: redundant calls never duplicate nodes or
// listeners. A missing container is a retryable no-op; the next
// controls-changed signal repairs it.
func (d *Document) Repair(ctx context.Context, sel schema.Selection) error {
	var ok bool
	err := d.eval(ctx, controlsScript, map[string]any{
		"controlsSelector": d.cfg.ControlsSelector,
		"markerId":         controlsMarkerID,
		"binding":          toggleBinding,
		"palette":          schema.Palette(),
		"selected":         sel.Tokens(),
	}, &ok)
	if err != nil {
		return err
	}
	if !ok {
		d.log.Debug("controls repair deferred", "reason", "container not present")
	}
	return nil
}

// Observe installs the page-side MutationObserver and forwards its batches
// to fn until stop is called. The installer is also registered for new
// documents so the subscription survives host-page navigations.
func (d *Document) Observe(ctx context.Context, fn func(batch []schema.MutationRecord)) (func(), error) {
	d.mu.Lock()
	d.observer = fn
	d.mu.Unlock()

	installExpr, err := callExpr(observerScript, map[string]any{
		"cardSelectors":    d.cfg.CardSelectors,
		"controlsSelector": d.cfg.ControlsSelector,
		"binding":          mutationBinding,
	})
	if err != nil {
		return nil, err
	}
	err = chromedp.Run(d.ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(installExpr).Do(ctx)
			return err
		}),
		chromedp.Evaluate(installExpr, nil),
	)
	if err != nil {
		return nil, fmt.Errorf("install observer: %w", err)
	}
	d.observing.Store(true)

	stop := func() {
		d.observing.Store(false)
		d.mu.Lock()
		d.observer = nil
		d.mu.Unlock()
		if err := chromedp.Run(d.ctx, chromedp.Evaluate(fmt.Sprintf("(%s)()", disconnectScript), nil)); err != nil {
			d.log.Debug("observer disconnect failed", "err", err)
		}
	}
	return stop, nil
}

// handleTargetEvent runs on chromedp's target event-processing goroutine.
// Handlers are dispatched on fresh goroutines: driving the browser from
// inside the listener would block the goroutine that delivers the response,
// deadlocking every later CDP event behind it.
func (d *Document) handleTargetEvent(ev interface{}) {
	called, ok := ev.(*runtime.EventBindingCalled)
	if !ok {
		return
	}
	switch called.Name {
	case mutationBinding:
		if !d.observing.Load() {
			return
		}
		var batch []schema.MutationRecord
		if err := json.Unmarshal([]byte(called.Payload), &batch); err != nil {
			d.log.Warn("mutation batch decode failed", "err", err)
			return
		}
		d.mu.Lock()
		fn := d.observer
		d.mu.Unlock()
		if fn != nil {
			go fn(batch)
		}
	case toggleBinding:
		var event schema.ToggleEvent
		if err := json.Unmarshal([]byte(called.Payload), &event); err != nil {
			d.log.Warn("toggle event decode failed", "err", err)
			return
		}
		d.mu.Lock()
		fn := d.onToggle
		d.mu.Unlock()
		if fn != nil {
			go fn(event)
		}
	}
}

// eval runs a page-side function expression with a JSON argument. The work
// executes on the attached tab's context; the caller context only gates
// cancellation before dispatch.
func (d *Document) eval(ctx context.Context, script string, arg, out interface{}) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	expr, err := callExpr(script, arg)
	if err != nil {
		return err
	}
	return chromedp.Run(d.ctx, chromedp.Evaluate(expr, out))
}

func callExpr(script string, arg interface{}) (string, error) {
	if arg == nil {
		return fmt.Sprintf("(%s)()", script), nil
	}
	data, err := json.Marshal(arg)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s)(%s)", script, data), nil
}
