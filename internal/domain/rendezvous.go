package domain

import (
	"strings"
	"time"
)

// Statut is the canonical appointment status vocabulary. The backend has
// historically emitted several spellings for the same state ("annule",
// "annulé", "Annulé"); every ingestion path must go through NormalizeStatut
// so that comparisons inside the client never depend on casing or accents.
type Statut string

const (
	StatutEnAttente Statut = "en_attente"
	StatutConfirme  Statut = "confirme"
	StatutConsulte  Statut = "consulté"
	StatutAnnule    Statut = "annule"
)

func (s Statut) IsValid() bool {
	switch s {
	case StatutEnAttente, StatutConfirme, StatutConsulte, StatutAnnule:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s Statut) IsTerminal() bool {
	return s == StatutAnnule || s == StatutConsulte
}

// State transitions requested by this client:
//
//	en_attente → confirme (secretary confirms)
//	en_attente → consulté (doctor consults)
//	en_attente → annule   (patient or secretary cancels)
//	confirme   → consulté (doctor consults)
//	confirme   → annule   (patient or secretary cancels)
///	annule, consulté: terminal
func (s Statut) CanTransitionTo(next Statut) bool {
	allowed := map[Statut][]Statut{
		StatutEnAttente: {StatutConfirme, StatutConsulte, StatutAnnule},
		StatutConfirme:  {StatutConsulte, StatutAnnule},
		StatutConsulte:  {},
		StatutAnnule:    {},
	}
	for _, n := range allowed[s] {
		if n == next {
			return true
		}
	}
	return false
}

// Label returns the display form used by the dashboards.
func (s Statut) Label() string {
	switch s {
	case StatutEnAttente:
		return "En attente"
	case StatutConfirme:
		return "Confirmé"
	case StatutConsulte:
		return "Consulté"
	case StatutAnnule:
		return "Annulé"
	}
	return string(s)
}

// NormalizeStatut collapses the spelling variants seen in backend payloads
// onto the canonical vocabulary. Unrecognized values are returned as-is so
// that callers can still render them with a neutral style.
func NormalizeStatut(raw string) Statut {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.NewReplacer("é", "e", "è", "e", "ê", "e").Replace(v)
	v = strings.ReplaceAll(v, " ", "_")
	switch v {
	case "en_attente":
		return StatutEnAttente
	case "confirme":
		return StatutConfirme
	case "consulte", "termine":
		return StatutConsulte
	case "annule":
		return StatutAnnule
	}
	return Statut(raw)
}

// RendezVous is the flattened view model served to the dashboards. The
// populated medecinId/patientId objects of the wire format are resolved to
// display fields by the API layer.
type RendezVous struct {
	ID string `json:"id"`

	MedecinID         string `json:"medecinId"`
	Medecin           string `json:"medecin"` // "prenom nom"
	MedecinSpecialite string `json:"specialite,omitempty"`

	PatientID     string `json:"patientId"`
	PatientNom    string `json:"patientNom,omitempty"`
	PatientPrenom string `json:"patientPrenom,omitempty"`
	PatientNumero string `json:"patientNumero,omitempty"`

	Date  string `json:"date"`  // calendar date, 2006-01-02
	Heure string `json:"heure"` // time of day, 15:04

	Statut      Statut `json:"statut"`
	Commentaire string `json:"commentaire,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DateLayout and HeureLayout are the backend's wire formats for the
// schedule fields.
const (
	DateLayout  = "2006-01-02"
	HeureLayout = "15:04"
)

// StartsAt combines the calendar date and the time of day into a single
// instant in loc. Ordering and "future" comparisons must always go through
// the combined instant, never through the date alone.
func (r *RendezVous) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+"T"+HeureLayout, r.Date+"T"+r.Heure, loc)
}

// IsSameDay reports whether the appointment falls on the same calendar day
// as t, in t's location.
func (r *RendezVous) IsSameDay(t time.Time) bool {
	at, err := r.StartsAt(t.Location())
	if err != nil {
		return false
	}
	y1, m1, d1 := at.Date()
	y2, m2, d2 := t.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
