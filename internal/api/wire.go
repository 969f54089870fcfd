package api

import (
	"time"

	"github.com/Yassi1511/pfemedical-go/internal/domain"
)

// Wire shapes mirror the backend's JSON: Mongo "_id" identifiers and
// populated medecinId/patientId sub-documents. Each maps to the flatter
// view models in internal/domain; field-name translation happens here and
// nowhere else.

type medecinWire struct {
	ID             string   `json:"_id"`
	Nom            string   `json:"nom"`
	Prenom         string   `json:"prenom"`
	Email          string   `json:"email"`
	Numero         string   `json:"numero"`
	Adresse        string   `json:"adresse"`
	Specialite     string   `json:"specialite"`
	NumeroLicence  string   `json:"numeroLicence"`
	AdresseCabinet string   `json:"adresseCabinet"`
	Patients       []string `json:"Patients"`
	Secretaires    []string `json:"Secretaires"`
	CreatedAt      string   `json:"createdAt"`
}

func (w *medecinWire) toDomain() domain.Medecin {
	return domain.Medecin{
		ID:                w.ID,
		Nom:               w.Nom,
		Prenom:            w.Prenom,
		Email:             w.Email,
		Numero:            w.Numero,
		Adresse:           w.Adresse,
		Specialite:        w.Specialite,
		NumeroLicence:     w.NumeroLicence,
		AdresseCabinet:    w.AdresseCabinet,
		NombrePatients:    len(w.Patients),
		NombreSecretaires: len(w.Secretaires),
		DateInscription:   frenchDate(w.CreatedAt),
	}
}

type patientWire struct {
	ID            string   `json:"_id"`
	Nom           string   `json:"nom"`
	Prenom        string   `json:"prenom"`
	Email         string   `json:"email"`
	Numero        string   `json:"numero"`
	DateNaissance string   `json:"dateNaissance"`
	Adresse       string   `json:"adresse"`
	Sexe          string   `json:"sexe"`
	GroupeSanguin string   `json:"groupeSanguin"`
	Allergies     string   `json:"allergies"`
	Medecins      []string `json:"Medecins"`
	CreatedAt     string   `json:"createdAt"`
}

func (w *patientWire) toDomain() domain.Patient {
	return domain.Patient{
		ID:              w.ID,
		Nom:             w.Nom,
		Prenom:          w.Prenom,
		Email:           w.Email,
		Numero:          w.Numero,
		DateNaissance:   w.DateNaissance,
		Adresse:         w.Adresse,
		Sexe:            w.Sexe,
		GroupeSanguin:   w.GroupeSanguin,
		Allergies:       w.Allergies,
		Medecins:        w.Medecins,
		DateInscription: frenchDate(w.CreatedAt),
	}
}

type secretaireWire struct {
	ID           string   `json:"_id"`
	Nom          string   `json:"nom"`
	Prenom       string   `json:"prenom"`
	Email        string   `json:"email"`
	Numero       string   `json:"numero"`
	Bureau       string   `json:"bureau"`
	DateEmbauche string   `json:"dateEmbauche"`
	Medecins     []string `json:"Medecins"`
}

func (w *secretaireWire) toDomain() domain.Secretaire {
	return domain.Secretaire{
		ID:           w.ID,
		Nom:          w.Nom,
		Prenom:       w.Prenom,
		Email:        w.Email,
		Numero:       w.Numero,
		Bureau:       w.Bureau,
		DateEmbauche: w.DateEmbauche,
		Medecins:     w.Medecins,
	}
}

// rdvWire is the populated appointment document (doctor and patient
// endpoints return the full sub-documents).
type rdvWire struct {
	ID          string      `json:"_id"`
	MedecinID   medecinWire `json:"medecinId"`
	PatientID   patientWire `json:"patientId"`
	Date        string      `json:"date"`
	Heure       string      `json:"heure"`
	Statut      string      `json:"statut"`
	Commentaire string      `json:"commentaire"`
	CreatedAt   string      `json:"createdAt"`
	UpdatedAt   string      `json:"updatedAt"`
}

func (w *rdvWire) toDomain() domain.RendezVous {
	return domain.RendezVous{
		ID:                w.ID,
		MedecinID:         w.MedecinID.ID,
		Medecin:           w.MedecinID.Prenom + " " + w.MedecinID.Nom,
		MedecinSpecialite: w.MedecinID.Specialite,
		PatientID:         w.PatientID.ID,
		PatientNom:        w.PatientID.Nom,
		PatientPrenom:     w.PatientID.Prenom,
		PatientNumero:     w.PatientID.Numero,
		Date:              w.Date,
		Heure:             w.Heure,
		Statut:            domain.NormalizeStatut(w.Statut),
		Commentaire:       w.Commentaire,
		CreatedAt:         rfc3339(w.CreatedAt),
		UpdatedAt:         rfc3339(w.UpdatedAt),
	}
}

// rdvFlatWire is the pre-flattened shape the secretary listing endpoint
// returns: display names resolved, no sub-documents.
type rdvFlatWire struct {
	ID            string `json:"id"`
	PatientID     string `json:"patientId"`
	PatientNom    string `json:"patientNom"`
	PatientPrenom string `json:"patientPrenom"`
	MedecinID     string `json:"medecinId"`
	Medecin       string `json:"medecin"`
	Date          string `json:"date"`
	Heure         string `json:"heure"`
	Statut        string `json:"statut"`
	Commentaire   string `json:"commentaire"`
}

func (w *rdvFlatWire) toDomain() domain.RendezVous {
	return domain.RendezVous{
		ID:            w.ID,
		MedecinID:     w.MedecinID,
		Medecin:       w.Medecin,
		PatientID:     w.PatientID,
		PatientNom:    w.PatientNom,
		PatientPrenom: w.PatientPrenom,
		Date:          w.Date,
		Heure:         w.Heure,
		Statut:        domain.NormalizeStatut(w.Statut),
		Commentaire:   w.Commentaire,
	}
}

type medicamentWire struct {
	ID                 string   `json:"_id"`
	NomCommercial      string   `json:"nomCommercial"`
	Dosage             string   `json:"dosage"`
	Frequence          int      `json:"frequence"`
	VoieAdministration string   `json:"voieAdministration"`
	DateDebut          string   `json:"dateDebut"`
	DateFin            string   `json:"dateFin"`
	Horaires           []string `json:"horaires"`
}

func (w *medicamentWire) toDomain() domain.Medicament {
	return domain.Medicament{
		ID:                 w.ID,
		NomCommercial:      w.NomCommercial,
		Dosage:             w.Dosage,
		Frequence:          w.Frequence,
		VoieAdministration: w.VoieAdministration,
		DateDebut:          frenchDate(w.DateDebut),
		DateFin:            frenchDate(w.DateFin),
		Horaires:           w.Horaires,
	}
}

type traitementWire struct {
	ID          string           `json:"_id"`
	Nom         string           `json:"nom"`
	Medicaments []medicamentWire `json:"medicaments"`
}

type ordonnanceWire struct {
	ID                    string         `json:"_id"`
	Medecin               medecinWire    `json:"medecin"`
	Traitement            traitementWire `json:"traitement"`
	SignatureElectronique string         `json:"signatureElectronique"`
	DateEmission          string         `json:"dateEmission"`
}

func (w *ordonnanceWire) toDomain() domain.Ordonnance {
	meds := make([]string, 0, len(w.Traitement.Medicaments))
	for _, m := range w.Traitement.Medicaments {
		meds = append(meds, m.NomCommercial)
	}
	return domain.Ordonnance{
		ID:                    w.ID,
		Date:                  frenchDate(w.DateEmission),
		Medecin:               w.Medecin.Prenom + " " + w.Medecin.Nom,
		TraitementNom:         w.Traitement.Nom,
		Medicaments:           meds,
		Statut:                "Active",
		SignatureElectronique: w.SignatureElectronique,
	}
}

type notificationWire struct {
	ID         string `json:"_id"`
	Contenu    string `json:"contenu"`
	Type       string `json:"type"`
	Horaire    string `json:"horaire"`
	Lu         bool   `json:"lu"`
	DateEnvoi  string `json:"dateEnvoi"`
	Medicament struct {
		NomCommercial string `json:"nomCommercial"`
	} `json:"medicament"`
}

func (w *notificationWire) toDomain() domain.Notification {
	return domain.Notification{
		ID:            w.ID,
		Contenu:       w.Contenu,
		Type:          w.Type,
		Horaire:       w.Horaire,
		Lu:            w.Lu,
		DateEnvoi:     w.DateEnvoi,
		MedicamentNom: w.Medicament.NomCommercial,
	}
}

// frenchDate renders a backend timestamp the way the lists display dates
// (jj/mm/aaaa). Unparseable input passes through untouched.
func frenchDate(raw string) string {
	if raw == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return raw
}

func rfc3339(raw string) time.Time {
	t, _ := time.Parse(time.RFC3339, raw)
	return t
}
