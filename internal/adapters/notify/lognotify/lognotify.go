// Package lognotify es el notifier por defecto: deja el evento en el log y
// nada más. La entrega real a interesados (correo, SMS) vive fuera de este
// servicio; cualquier adapter que la implemente reemplaza o acompaña a este.
package lognotify

import (
	"context"

	"adoption-center/internal/platform/logger"
	"adoption-center/internal/ports/notify"
)

type Notifier struct {
	log logger.Logger
}

func New(log logger.Logger) *Notifier {
	return &Notifier{log: log}
}

func (n *Notifier) Notify(_ context.Context, ev notify.TransitionEvent) error {
	if n.log == nil {
		return nil
	}
	n.log.Info("adoption request transition", map[string]any{
		"request_id": ev.RequestID,
		"pet_id":     ev.PetID,
		"from":       ev.From,
		"to":         ev.To,
		"at":         ev.At,
	})
	return nil
}
