package stubserver

import (
	"fmt"
	"time"

	"github.com/Yassi1511/pfemedical-go/internal/domain"
)

// Seed populates the store with a small linked cabinet so the CLI has
// something to show out of the box: one doctor, one secretary, two
// patients, a couple of appointments and a treatment under way.
// Every account logs in with the password "motdepasse".
func (s *Server) Seed() error {
	const motDePasse = "motdepasse"

	medecin, err := s.store.AddUser(&User{
		Role:           domain.RoleMedecin,
		Nom:            "Bernard",
		Prenom:         "Claire",
		Email:          "claire.bernard@cabinet.fr",
		Numero:         "0612345678",
		Specialite:     "Cardiologie",
		NumeroLicence:  "FR-75-12345",
		AdresseCabinet: "12 rue de la Paix, Paris",
	}, motDePasse)
	if err != nil {
		return fmt.Errorf("seeding medecin: %w", err)
	}

	secretaire, err := s.store.AddUser(&User{
		Role:         domain.RoleSecretaire,
		Nom:          "Moreau",
		Prenom:       "Julie",
		Email:        "julie.moreau@cabinet.fr",
		Numero:       "0698765432",
		Bureau:       "Accueil 1",
		DateEmbauche: "2023-09-01",
	}, motDePasse)
	if err != nil {
		return fmt.Errorf("seeding secretaire: %w", err)
	}
	s.store.LinkSecretaire(medecin.ID, secretaire.ID)

	patients := []*User{
		{
			Role:          domain.RolePatient,
			Nom:           "Dupont",
			Prenom:        "Marc",
			Email:         "marc.dupont@example.fr",
			Numero:        "0611223344",
			DateNaissance: "1984-03-12",
			Adresse:       "3 avenue Victor Hugo, Paris",
			Sexe:          "M",
			GroupeSanguin: "A+",
		},
		{
			Role:          domain.RolePatient,
			Nom:           "Leroy",
			Prenom:        "Sophie",
			Email:         "sophie.leroy@example.fr",
			Numero:        "0655667788",
			DateNaissance: "1992-11-05",
			Adresse:       "8 rue des Lilas, Paris",
			Sexe:          "F",
			GroupeSanguin: "O-",
		},
	}
	for _, p := range patients {
		if _, err := s.store.AddUser(p, motDePasse); err != nil {
			return fmt.Errorf("seeding patient %s: %w", p.Email, err)
		}
		s.store.LinkPatient(medecin.ID, p.ID)
	}

	today := time.Now().Format(domain.DateLayout)
	nextWeek := time.Now().AddDate(0, 0, 7).Format(domain.DateLayout)
	s.store.AddRendezVous(&RendezVous{
		MedecinID: medecin.ID,
		PatientID: patients[0].ID,
		Date:      today,
		Heure:     "09:00",
		Statut:    domain.StatutConfirme,
	})
	s.store.AddRendezVous(&RendezVous{
		MedecinID: medecin.ID,
		PatientID: patients[1].ID,
		Date:      nextWeek,
		Heure:     "10:30",
		Statut:    domain.StatutEnAttente,
	})

	med := s.store.AddMedicament(&Medicament{
		PatientID:          patients[0].ID,
		NomCommercial:      "Kardegic",
		Dosage:             "75mg",
		Frequence:          1,
		VoieAdministration: "orale",
		DateDebut:          today,
		DateFin:            time.Now().AddDate(0, 3, 0).Format(domain.DateLayout),
		Horaires:           []string{"08:00"},
	})
	traitement := s.store.AddTraitement(&Traitement{
		Nom:         "Suivi cardiologique",
		PatientID:   patients[0].ID,
		MedecinID:   medecin.ID,
		Medicaments: []string{med.ID},
	})
	s.store.AddOrdonnance(&Ordonnance{
		MedecinID:    medecin.ID,
		PatientID:    patients[0].ID,
		TraitementID: traitement.ID,
	})

	return nil
}
