// Package promnotify cuenta transiciones en Prometheus. Se cuelga del mismo
// puerto de notificación que lognotify: las métricas son un interesado más.
package promnotify

import (
	"context"

	"adoption-center/internal/platform/metrics"
	"adoption-center/internal/ports/notify"
)

type Notifier struct{}

func New() *Notifier {
	return &Notifier{}
}

func (*Notifier) Notify(_ context.Context, ev notify.TransitionEvent) error {
	metrics.TransitionApplied(ev.From, ev.To)
	return nil
}
