package core

import "pkt.systems/pslog"

// EngineDeps captures dependencies for the reactive engine.
type EngineDeps struct {
	Document Document
	Controls ControlSurface
	Store    SelectionStore
	Sink     SignalSink
	Logger   pslog.Logger
}
