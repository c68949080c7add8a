package refine

import (
	"log/slog"

	"github.com/anggasct/fluo"
)

// transitionLogger reports every machine transition through slog so a
// refinement session leaves a readable trace of its path.
type transitionLogger struct {
	fluo.BaseObserver
	log *slog.Logger
}

func (o *transitionLogger) OnTransition(from, to string, event fluo.Event, ctx fluo.Context) {
	o.log.Debug("refinement transition", "from", from, "to", to, "event", event.GetName())
}
