// Package anichart composes the filtering overlay: a reactive engine that
// keeps a third-party schedule page's content cards in sync with the user's
// persisted highlight-color selection.
package anichart

import (
	"context"
	"fmt"
	"sync"

	"pkt.systems/pslog"

	"github.com/DanSleeman/anichart-filter/core"
	"github.com/DanSleeman/anichart-filter/schema"
)

// Overlay runs the filtering overlay against one attached page.
type Overlay interface {
	Start(ctx context.Context) error
	Wait() error
	Stop(ctx context.Context) error
}

// OverlayConfig configures the compositor.
type OverlayConfig struct {
	Engine schema.EngineConfig
	// PageURL is loaded on start when a Navigator is provided. Leave empty
	// to attach to whatever page the tab already shows.
	PageURL string
}

// Navigator loads a URL in the attached page.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// OverlayDeps captures dependencies required to build the overlay.
type OverlayDeps struct {
	Document  core.Document
	Controls  core.ControlSurface
	Store     core.SelectionStore
	Toggles   core.ToggleSource
	Navigator Navigator
	Sinks     []core.SignalSink
	Logger    pslog.Logger
}

// New constructs the overlay compositor around a reactive engine.
func New(cfg OverlayConfig, deps OverlayDeps) (Overlay, error) {
	engine, err := core.NewEngine(cfg.Engine, core.EngineDeps{
		Document: deps.Document,
		Controls: deps.Controls,
		Store:    deps.Store,
		Sink:     joinSinks(deps.Sinks),
		Logger:   deps.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &compositeOverlay{
		cfg:    cfg,
		deps:   deps,
		engine: engine,
	}, nil
}

func joinSinks(sinks []core.SignalSink) core.SignalSink {
	live := make([]core.SignalSink, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			live = append(live, sink)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	default:
		return signalFanout{sinks: live}
	}
}

type compositeOverlay struct {
	cfg    OverlayConfig
	deps   OverlayDeps
	engine *core.Engine
	logger pslog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
}

func (o *compositeOverlay) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		pslog.Ctx(ctx).Warn("overlay start rejected", "reason", "already started")
		return schema.ErrAlreadyStarted
	}
	o.ctx, o.cancel = context.WithCancel(ctx)
	o.started = true
	o.logger = pslog.Ctx(o.ctx)
	runCtx := o.ctx
	o.mu.Unlock()

	log := o.logger
	fail := func(err error) error {
		o.mu.Lock()
		o.started = false
		cancel := o.cancel
		o.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		return err
	}

	if o.cfg.PageURL != "" && o.deps.Navigator != nil {
		log.Info("overlay navigate", "url", o.cfg.PageURL)
		if err := o.deps.Navigator.Navigate(runCtx, o.cfg.PageURL); err != nil {
			return fail(fmt.Errorf("navigate %s: %w", o.cfg.PageURL, err))
		}
	}
	if o.deps.Toggles != nil {
		o.deps.Toggles.SetOnToggle(func(event schema.ToggleEvent) {
			if err := o.engine.Toggle(event.Token, event.Enabled); err != nil {
				log.Warn("toggle apply failed", "token", event.Token, "err", err)
			}
		})
	}
	if err := o.engine.Start(runCtx); err != nil {
		return fail(err)
	}
	log.Info("overlay started", "url", o.cfg.PageURL)
	return nil
}

func (o *compositeOverlay) Wait() error {
	o.mu.Lock()
	ctx := o.ctx
	started := o.started
	o.mu.Unlock()
	if !started {
		return schema.ErrNotStarted
	}
	<-ctx.Done()
	return nil
}

func (o *compositeOverlay) Stop(ctx context.Context) error {
	o.mu.Lock()
	cancel := o.cancel
	started := o.started
	log := o.logger
	o.started = false
	o.mu.Unlock()
	if !started {
		return nil
	}
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	log.Info("overlay stop requested")
	o.engine.Stop()
	if cancel != nil {
		cancel()
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			log.Warn("overlay stop timed out", "err", err)
			return err
		}
	}
	log.Info("overlay stopped")
	return nil
}
