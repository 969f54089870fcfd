package scheduler

import "errors"

var (
	// ErrMedecinIndisponible: the availability pre-check came back negative.
	// No create call was attempted.
	ErrMedecinIndisponible = errors.New("le médecin n'est pas disponible à ce créneau")

	// ErrCreneauPris: the backend rejected the create even though the
	// pre-check said the slot was free; someone else booked it in between.
	// Retryable after refreshing availability.
	ErrCreneauPris = errors.New("le créneau vient d'être réservé par quelqu'un d'autre")

	// ErrNonConfirme: the user declined the confirmation prompt of a
	// destructive action; nothing was sent.
	ErrNonConfirme = errors.New("action non confirmée")
)
