package domain

import (
	"errors"
	"strings"
)

// Medicament is one medication line of a treatment: dosage, intakes per day
// and the schedule of times the patient is reminded at.
type Medicament struct {
	ID                 string   `json:"id"`
	NomCommercial      string   `json:"nomCommercial"`
	Dosage             string   `json:"dosage"`
	Frequence          int      `json:"frequence"` // intakes per day
	VoieAdministration string   `json:"voieAdministration"`
	DateDebut          string   `json:"dateDebut"`
	DateFin            string   `json:"dateFin"`
	Horaires           []string `json:"horaires"`
}

// NouveauMedicament is the creation payload for a medication entry.
type NouveauMedicament struct {
	NomCommercial      string   `json:"nomCommercial" validate:"required"`
	Dosage             string   `json:"dosage" validate:"required"`
	Frequence          int      `json:"frequence" validate:"required,gt=0"`
	VoieAdministration string   `json:"voieAdministration" validate:"required"`
	DateDebut          string   `json:"dateDebut" validate:"required"`
	DateFin            string   `json:"dateFin" validate:"required"`
	Horaires           []string `json:"horaires"`
}

var ErrFrequenceInvalide = errors.New("la fréquence doit être un nombre positif")

// ParseHoraires turns the free-text schedule field ("08:00, 12:00, 20:00")
// into the list the backend expects: split on commas, trimmed, empty
// entries dropped, order preserved.
func ParseHoraires(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if h := strings.TrimSpace(p); h != "" {
			out = append(out, h)
		}
	}
	return out
}

// Traitement bundles the medications a doctor prescribes under one name.
type Traitement struct {
	ID           string       `json:"id"`
	Nom          string       `json:"nom"`
	Observations string       `json:"observations,omitempty"`
	PatientID    string       `json:"patientId"`
	MedecinID    string       `json:"medecinId"`
	Medicaments  []Medicament `json:"medicaments"`
}

// Ordonnance binds a treatment to a patient, issued by a doctor, with an
// optional electronic signature attachment.
type Ordonnance struct {
	ID                    string   `json:"id"`
	Date                  string   `json:"date"`
	Medecin               string   `json:"medecin"` // "prenom nom"
	TraitementNom         string   `json:"traitementNom,omitempty"`
	Medicaments           []string `json:"medicaments"`
	Statut                string   `json:"statut"`
	SignatureElectronique string   `json:"signatureElectronique,omitempty"`
}

// Notification is a reminder or informational message pushed to a patient.
type Notification struct {
	ID            string `json:"id"`
	Contenu       string `json:"contenu"`
	Type          string `json:"type"`
	Horaire       string `json:"horaire,omitempty"`
	Lu            bool   `json:"lu"`
	DateEnvoi     string `json:"dateEnvoi"`
	MedicamentNom string `json:"medicamentNom,omitempty"`
}
