package anichart

import (
	"github.com/DanSleeman/anichart-filter/core"
	"github.com/DanSleeman/anichart-filter/schema"
)

type signalFanout struct {
	sinks []core.SignalSink
}

func (f signalFanout) OnControlsChanged() {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnControlsChanged()
	}
}

func (f signalFanout) OnCardsChanged() {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnCardsChanged()
	}
}

func (f signalFanout) OnRefresh(stats schema.RefreshStats) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnRefresh(stats)
	}
}
