package core

import "github.com/DanSleeman/anichart-filter/schema"

// SignalSink receives change signals and refresh results from the engine.
type SignalSink interface {
	OnControlsChanged()
	OnCardsChanged()
	OnRefresh(stats schema.RefreshStats)
}

type nopSink struct{}

func (nopSink) OnControlsChanged()            {}
func (nopSink) OnCardsChanged()               {}
func (nopSink) OnRefresh(schema.RefreshStats) {}
