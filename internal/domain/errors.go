package domain

import "errors"

var (
	ErrInvalidID           = errors.New("identifiant invalide: 24 caractères hexadécimaux attendus")
	ErrRendezVousNotFound  = errors.New("rendez-vous introuvable")
	ErrScheduledInPast     = errors.New("la date du rendez-vous est déjà passée")
	ErrInvalidCreneau      = errors.New("heure hors des créneaux de consultation")
	ErrInvalidStatut       = errors.New("statut de rendez-vous inconnu")
	ErrInvalidTransition   = errors.New("transition de statut non autorisée")
	ErrCommentaireVide     = errors.New("le commentaire ne peut pas être vide")
	ErrCommentaireInterdit = errors.New("commentaire impossible sur un rendez-vous annulé ou consulté")
)
