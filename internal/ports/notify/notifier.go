// Package notify define el puerto de notificaciones que consume el motor.
// La entrega real (correo, push, lo que sea) vive afuera; acá solo viaja el
// comando que describe la transición aplicada.
package notify

import (
	"context"
	"time"
)

// TransitionEvent describe una transición de solicitud ya aplicada.
// Es el side-effect command que el motor emite para que alguien avise
// a los interesados; el motor nunca hace I/O de notificación por su cuenta.
type TransitionEvent struct {
	RequestID string
	PetID     string

	From string
	To   string

	At time.Time
}

// Notifier recibe eventos de transición best-effort: un error acá jamás
// revierte el cambio de estado que lo originó.
type Notifier interface {
	Notify(ctx context.Context, ev TransitionEvent) error
}

// Multi reparte el evento a varios notifiers. Entrega a todos aunque alguno
// falle y devuelve el primer error visto.
func Multi(ns ...Notifier) Notifier {
	return multi(ns)
}

type multi []Notifier

func (m multi) Notify(ctx context.Context, ev TransitionEvent) error {
	var first error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
