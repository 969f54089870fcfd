package stubserver

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Rendering of the stored documents in the backend's JSON dialect:
// "_id" identifiers, populated sub-documents where the real API
// populates them.

func (s *Server) renderMedecin(u *User) gin.H {
	return gin.H{
		"_id":            u.ID,
		"nom":            u.Nom,
		"prenom":         u.Prenom,
		"email":          u.Email,
		"numero":         u.Numero,
		"adresse":        u.Adresse,
		"specialite":     u.Specialite,
		"numeroLicence":  u.NumeroLicence,
		"adresseCabinet": u.AdresseCabinet,
		"Patients":       u.Patients,
		"Secretaires":    u.Secretaires,
		"createdAt":      u.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) renderPatient(u *User) gin.H {
	return gin.H{
		"_id":           u.ID,
		"nom":           u.Nom,
		"prenom":        u.Prenom,
		"email":         u.Email,
		"numero":        u.Numero,
		"dateNaissance": u.DateNaissance,
		"adresse":       u.Adresse,
		"sexe":          u.Sexe,
		"groupeSanguin": u.GroupeSanguin,
		"allergies":     u.Allergies,
		"Medecins":      u.Medecins,
		"createdAt":     u.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) renderSecretaire(u *User) gin.H {
	return gin.H{
		"_id":          u.ID,
		"nom":          u.Nom,
		"prenom":       u.Prenom,
		"email":        u.Email,
		"numero":       u.Numero,
		"bureau":       u.Bureau,
		"dateEmbauche": u.DateEmbauche,
		"Medecins":     u.Medecins,
	}
}

// renderRendezVous populates the doctor and patient sub-documents.
func (s *Server) renderRendezVous(r *RendezVous) gin.H {
	medecin := gin.H{"_id": r.MedecinID}
	if m, ok := s.store.UserByID(r.MedecinID); ok {
		medecin = s.renderMedecin(m)
	}
	patient := gin.H{"_id": r.PatientID}
	if p, ok := s.store.UserByID(r.PatientID); ok {
		patient = s.renderPatient(p)
	}
	return gin.H{
		"_id":         r.ID,
		"medecinId":   medecin,
		"patientId":   patient,
		"date":        r.Date,
		"heure":       r.Heure,
		"statut":      string(r.Statut),
		"commentaire": r.Commentaire,
		"createdAt":   r.CreatedAt.Format(time.RFC3339),
		"updatedAt":   r.UpdatedAt.Format(time.RFC3339),
	}
}

// renderRendezVousFlat is the pre-flattened listing shape the secretary
// endpoints return.
func (s *Server) renderRendezVousFlat(r *RendezVous) gin.H {
	medecinNom := ""
	if m, ok := s.store.UserByID(r.MedecinID); ok {
		medecinNom = m.Prenom + " " + m.Nom
	}
	patientNom, patientPrenom := "", ""
	if p, ok := s.store.UserByID(r.PatientID); ok {
		patientNom, patientPrenom = p.Nom, p.Prenom
	}
	return gin.H{
		"id":            r.ID,
		"patientId":     r.PatientID,
		"patientNom":    patientNom,
		"patientPrenom": patientPrenom,
		"medecinId":     r.MedecinID,
		"medecin":       medecinNom,
		"date":          r.Date,
		"heure":         r.Heure,
		"statut":        string(r.Statut),
		"commentaire":   r.Commentaire,
	}
}

func renderMedicament(m *Medicament) gin.H {
	return gin.H{
		"_id":                m.ID,
		"nomCommercial":      m.NomCommercial,
		"dosage":             m.Dosage,
		"frequence":          m.Frequence,
		"voieAdministration": m.VoieAdministration,
		"dateDebut":          m.DateDebut,
		"dateFin":            m.DateFin,
		"horaires":           m.Horaires,
	}
}

func (s *Server) renderTraitement(t *Traitement) gin.H {
	meds := make([]gin.H, 0, len(t.Medicaments))
	for _, id := range t.Medicaments {
		if m, ok := s.store.MedicamentByID(id); ok {
			meds = append(meds, renderMedicament(m))
		}
	}
	return gin.H{
		"_id":          t.ID,
		"nom":          t.Nom,
		"observations": t.Observations,
		"patient":      t.PatientID,
		"medecin":      t.MedecinID,
		"medicaments":  meds,
	}
}

func (s *Server) renderOrdonnance(o *Ordonnance) gin.H {
	medecin := gin.H{"_id": o.MedecinID}
	if m, ok := s.store.UserByID(o.MedecinID); ok {
		medecin = s.renderMedecin(m)
	}
	traitement := gin.H{"_id": o.TraitementID}
	if t, ok := s.store.TraitementByID(o.TraitementID); ok {
		traitement = s.renderTraitement(t)
	}
	return gin.H{
		"_id":                   o.ID,
		"medecin":               medecin,
		"traitement":            traitement,
		"signatureElectronique": o.Signature,
		"dateEmission":          o.DateEmission.Format(time.RFC3339),
	}
}

func (s *Server) renderNotification(n *Notification) gin.H {
	medicament := gin.H{}
	if m, ok := s.store.MedicamentByID(n.MedicamentID); ok {
		medicament = gin.H{"nomCommercial": m.NomCommercial}
	}
	return gin.H{
		"_id":        n.ID,
		"contenu":    n.Contenu,
		"type":       n.Type,
		"horaire":    n.Horaire,
		"lu":         n.Lu,
		"dateEnvoi":  n.DateEnvoi.Format(time.RFC3339),
		"medicament": medicament,
	}
}
