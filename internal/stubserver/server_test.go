package stubserver

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Yassi1511/pfemedical-go/internal/api"
	"github.com/Yassi1511/pfemedical-go/internal/config"
	"github.com/Yassi1511/pfemedical-go/internal/domain"
	"github.com/Yassi1511/pfemedical-go/internal/scheduler"
	"github.com/Yassi1511/pfemedical-go/pkg/metrics"
)

// The integration tests drive the real API clients against the stub over
// HTTP, the way the CLI does.

type fixture struct {
	server *Server
	client *api.Client

	medecin    *User
	secretaire *User
	patients   []*User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := New(Config{JWTSecret: "secret-de-test"}, zap.NewNop())
	require.NoError(t, srv.Seed())

	httpSrv := httptest.NewServer(srv.Engine)
	t.Cleanup(httpSrv.Close)

	client := api.New(config.APIConfig{
		BaseURL:        httpSrv.URL,
		RequestTimeout: 5 * time.Second,
		UserAgent:      "pfemedical-test",
	}, zap.NewNop(), metrics.NewCollector("stub_test"))

	f := &fixture{server: srv, client: client}
	f.medecin = srv.Store().UsersByRole(domain.RoleMedecin, nil)[0]
	f.secretaire = srv.Store().UsersByRole(domain.RoleSecretaire, nil)[0]
	f.patients = srv.Store().UsersByRole(domain.RolePatient, nil)
	require.NotEmpty(t, f.patients)
	return f
}

func (f *fixture) login(t *testing.T, email string) api.TokenSource {
	t.Helper()
	res, err := api.NewAuthClient(f.client).Login(context.Background(), api.LoginRequest{
		Email:      email,
		MotDePasse: "motdepasse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	return api.StaticToken(res.Token)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	f := newFixture(t)
	_, err := api.NewAuthClient(f.client).Login(context.Background(), api.LoginRequest{
		Email:      f.medecin.Email,
		MotDePasse: "mauvais-mot-de-passe",
	})
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
}

func TestRequestWithoutTokenIsRejected(t *testing.T) {
	f := newFixture(t)
	doctor := api.NewDoctorClient(f.client, api.StaticToken(""))
	_, err := doctor.RendezVousAujourdhui(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
}

func TestRoleGate(t *testing.T) {
	f := newFixture(t)
	patientToken := f.login(t, f.patients[0].Email)

	// A patient token cannot use the doctor surface.
	doctor := api.NewDoctorClient(f.client, patientToken)
	_, err := doctor.RendezVousAujourdhui(context.Background())
	require.Error(t, err)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.StatusCode)
}

func TestRegisterThenLogin(t *testing.T) {
	f := newFixture(t)
	auth := api.NewAuthClient(f.client)

	err := auth.Register(context.Background(), api.RegisterRequest{
		Role:       "patient",
		Nom:        "Petit",
		Prenom:     "Lucas",
		Email:      "lucas.petit@example.fr",
		Numero:     "0600000000",
		MotDePasse: "motdepasse",
	})
	require.NoError(t, err)

	res, err := auth.Login(context.Background(), api.LoginRequest{
		Email:      "lucas.petit@example.fr",
		MotDePasse: "motdepasse",
	})
	require.NoError(t, err)
	assert.Equal(t, "patient", res.Role)
	assert.True(t, domain.ValidID(res.ID), "stub ids have the backend shape")

	// Same email again: conflict.
	err = auth.Register(context.Background(), api.RegisterRequest{
		Role:       "patient",
		Nom:        "Petit",
		Prenom:     "Lucas",
		Email:      "lucas.petit@example.fr",
		Numero:     "0600000000",
		MotDePasse: "motdepasse",
	})
	require.Error(t, err)
	assert.True(t, api.IsConflict(err))
}

func TestSecretarySchedulingFlow(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, f.secretaire.Email)

	secretary := api.NewSecretaryClient(f.client, token)
	coord := scheduler.New(secretary, nil, nil, zap.NewNop(), metrics.NewCollector("flow_test"))

	date := time.Now().AddDate(0, 0, 3).Format(domain.DateLayout)
	req := scheduler.ScheduleRequest{
		MedecinID: f.medecin.ID,
		PatientID: f.patients[0].ID,
		Date:      date,
		Heure:     "15:00",
	}

	created, err := coord.Schedule(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.StatutEnAttente, created.Statut)
	assert.Equal(t, "Claire Bernard", created.Medecin)

	// Same slot again: the pre-check now refuses it.
	req.PatientID = f.patients[1].ID
	_, err = coord.Schedule(context.Background(), req)
	assert.ErrorIs(t, err, scheduler.ErrMedecinIndisponible)

	// Confirm, then the listing reflects the transition.
	require.NoError(t, coord.Confirm(context.Background(), created))
	listed, err := secretary.RendezVousByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatutConfirme, listed.Statut)

	// Cancel frees the slot for the other patient.
	require.NoError(t, coord.CancelAsSecretary(context.Background(), listed, "patient absent"))
	_, err = coord.Schedule(context.Background(), req)
	assert.NoError(t, err)
}

func TestSecretaryPatientManagement(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, f.secretaire.Email)
	secretary := api.NewSecretaryClient(f.client, token)

	before, err := secretary.Patients(context.Background())
	require.NoError(t, err)

	created, err := secretary.CreatePatient(context.Background(), domain.NouveauPatient{
		Nom:           "Nguyen",
		Prenom:        "Linh",
		Email:         "linh.nguyen@example.fr",
		Numero:        "0612121212",
		DateNaissance: "1990-06-20",
		MotDePasse:    "motdepasse",
	})
	require.NoError(t, err)
	assert.True(t, domain.ValidID(created.ID))

	after, err := secretary.Patients(context.Background())
	require.NoError(t, err)
	assert.Len(t, after, len(before)+1, "new patient lands in the linked doctors' roster")

	found, err := secretary.SearchPatients(context.Background(), "nguyen")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Linh", found[0].Prenom)

	require.NoError(t, secretary.DeletePatient(context.Background(), created.ID))
	_, err = secretary.Patient(context.Background(), created.ID)
	assert.True(t, api.IsNotFound(err))
}

func TestDoctorPrescriptionFlow(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, f.medecin.Email)

	doctor := api.NewDoctorClient(f.client, token)
	traitements := api.NewTraitementsClient(f.client, token)

	list, err := traitements.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, list, "seed ships one treatment")
	assert.Equal(t, f.patients[0].ID, list[0].PatientID)

	err = traitements.CreateOrdonnance(context.Background(), api.NouvelleOrdonnance{
		PatientID:    f.patients[0].ID,
		TraitementID: list[0].ID,
		Signature:    strings.NewReader("signature"),
		SignatureNom: "signature.png",
	})
	require.NoError(t, err)

	ords, err := doctor.Ordonnances(context.Background())
	require.NoError(t, err)
	assert.Len(t, ords, 2, "seeded one plus the one just issued")
	for _, o := range ords {
		assert.Equal(t, "Claire Bernard", o.Medecin)
	}
}

func TestDoctorSecretaryLinking(t *testing.T) {
	f := newFixture(t)
	auth := api.NewAuthClient(f.client)
	require.NoError(t, auth.Register(context.Background(), api.RegisterRequest{
		Role:       "secretaire",
		Nom:        "Blanc",
		Prenom:     "Eva",
		Email:      "eva.blanc@cabinet.fr",
		Numero:     "0607070707",
		MotDePasse: "motdepasse",
	}))

	token := f.login(t, f.medecin.Email)
	doctor := api.NewDoctorClient(f.client, token)

	linked, err := doctor.LierSecretaire(context.Background(), "eva.blanc@cabinet.fr")
	require.NoError(t, err)
	assert.Equal(t, "Eva", linked.Prenom)

	secs, err := doctor.Secretaires(context.Background())
	require.NoError(t, err)
	assert.Len(t, secs, 2)

	require.NoError(t, doctor.RemoveSecretaire(context.Background(), linked.ID))
	secs, err = doctor.Secretaires(context.Background())
	require.NoError(t, err)
	assert.Len(t, secs, 1)

	_, err = doctor.LierSecretaire(context.Background(), "inconnue@cabinet.fr")
	assert.True(t, api.IsNotFound(err))
}

func TestPatientMedicationAndNotifications(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, f.patients[0].Email)

	patient := api.NewPatientClient(f.client, token)
	notifications := api.NewNotificationsClient(f.client, token)

	created, err := patient.AddMedicament(context.Background(), domain.NouveauMedicament{
		NomCommercial:      "Doliprane",
		Dosage:             "1000mg",
		Frequence:          3,
		VoieAdministration: "orale",
		DateDebut:          "2025-10-01",
		DateFin:            "2025-10-10",
		Horaires:           domain.ParseHoraires("08:00, 12:00, 20:00"),
	})
	require.NoError(t, err)
	require.Len(t, created.Horaires, 3)

	require.NoError(t, notifications.Generate(context.Background(), created.ID))
	feed, err := notifications.List(context.Background())
	require.NoError(t, err)
	require.Len(t, feed, 3, "one reminder per scheduled time")
	assert.Contains(t, feed[0].Contenu, "Doliprane")
	assert.Equal(t, "Doliprane", feed[0].MedicamentNom)
	assert.False(t, feed[0].Lu)

	require.NoError(t, notifications.MarkRead(context.Background(), feed[0].ID))
	feed, err = notifications.List(context.Background())
	require.NoError(t, err)
	read := 0
	for _, n := range feed {
		if n.Lu {
			read++
		}
	}
	assert.Equal(t, 1, read)
}

func TestPatientCommentAndCancel(t *testing.T) {
	f := newFixture(t)
	secToken := f.login(t, f.secretaire.Email)
	secretary := api.NewSecretaryClient(f.client, secToken)

	date := time.Now().AddDate(0, 0, 5).Format(domain.DateLayout)
	created, err := secretary.CreateRendezVous(context.Background(), api.RendezVousData{
		MedecinID: f.medecin.ID,
		PatientID: f.patients[1].ID,
		Date:      date,
		Heure:     "10:00",
		Statut:    string(domain.StatutEnAttente),
	})
	require.NoError(t, err)

	patToken := f.login(t, f.patients[1].Email)
	patient := api.NewPatientClient(f.client, patToken)

	require.NoError(t, patient.AjouterCommentaire(context.Background(), created.ID, "Besoin d'un rappel"))

	// Another patient's token cannot touch it.
	otherToken := f.login(t, f.patients[0].Email)
	other := api.NewPatientClient(f.client, otherToken)
	err = other.AjouterCommentaire(context.Background(), created.ID, "pas le mien")
	require.Error(t, err)

	require.NoError(t, patient.Annuler(context.Background(), created.ID))
	mine, err := patient.MesRendezVous(context.Background())
	require.NoError(t, err)
	var cancelled *domain.RendezVous
	for i := range mine {
		if mine[i].ID == created.ID {
			cancelled = &mine[i]
		}
	}
	require.NotNil(t, cancelled)
	assert.Equal(t, domain.StatutAnnule, cancelled.Statut)
	assert.Equal(t, "Besoin d'un rappel", cancelled.Commentaire)

	// Cancelling twice: the state machine refuses.
	err = patient.Annuler(context.Background(), created.ID)
	require.Error(t, err)
}

func TestPatientDoctorDirectory(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, f.patients[0].Email)
	patient := api.NewPatientClient(f.client, token)

	all, err := patient.Medecins(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 2, all[0].NombrePatients)

	cardio, err := patient.MedecinsBySpecialite(context.Background(), "Cardiologie")
	require.NoError(t, err)
	assert.Len(t, cardio, 1)

	none, err := patient.MedecinsBySpecialite(context.Background(), "Dermatologie")
	require.NoError(t, err)
	assert.Empty(t, none)

	byNom, err := patient.MedecinsByNom(context.Background(), "bernard")
	require.NoError(t, err)
	assert.Len(t, byNom, 1)
}

func TestProfileLifecycle(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, f.patients[0].Email)
	users := api.NewUsersClient(f.client, token)

	profil, err := users.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.RolePatient, profil.Role)
	assert.Equal(t, "Marc", profil.Prenom)

	numero := "0699999999"
	require.NoError(t, users.Update(context.Background(), domain.ProfilUpdate{Numero: &numero}))
	profil, err = users.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0699999999", profil.Numero)

	require.NoError(t, users.Delete(context.Background()))
	_, err = users.Get(context.Background())
	assert.True(t, api.IsNotFound(err))
}

func TestDoctorConsultOwnershipGate(t *testing.T) {
	f := newFixture(t)
	auth := api.NewAuthClient(f.client)
	require.NoError(t, auth.Register(context.Background(), api.RegisterRequest{
		Role:       "medecin",
		Nom:        "Garnier",
		Prenom:     "Paul",
		Email:      "paul.garnier@cabinet.fr",
		Numero:     "0608080808",
		MotDePasse: "motdepasse",
		Specialite: "Dermatologie",
	}))

	seeded := f.server.Store().RendezVousWhere(func(r *RendezVous) bool {
		return r.Statut == domain.StatutConfirme
	})
	require.NotEmpty(t, seeded)
	rdvID := seeded[0].ID

	// Another doctor cannot consult an appointment that is not theirs.
	foreign := api.NewDoctorClient(f.client, f.login(t, "paul.garnier@cabinet.fr"))
	err := foreign.Consulter(context.Background(), rdvID)
	require.Error(t, err)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.StatusCode)

	// The owner can.
	owner := api.NewDoctorClient(f.client, f.login(t, f.medecin.Email))
	require.NoError(t, owner.Consulter(context.Background(), rdvID))
	after, ok := f.server.Store().RendezVousByID(rdvID)
	require.True(t, ok)
	assert.Equal(t, domain.StatutConsulte, after.Statut)
}

func TestConcurrentCreateCannotDoubleBook(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, f.secretaire.Email)
	secretary := api.NewSecretaryClient(f.client, token)

	date := time.Now().AddDate(0, 0, 2).Format(domain.DateLayout)
	const workers = 8
	var wg sync.WaitGroup
	var created, conflicts atomic.Int64
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := secretary.CreateRendezVous(context.Background(), api.RendezVousData{
				MedecinID: f.medecin.ID,
				PatientID: f.patients[0].ID,
				Date:      date,
				Heure:     "16:30",
			})
			switch {
			case err == nil:
				created.Add(1)
			case api.IsConflict(err):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), created.Load(), "exactly one booking wins the slot")
	assert.Equal(t, int64(workers-1), conflicts.Load())
}

func TestConcurrentUpdateAndListing(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, f.secretaire.Email)
	secretary := api.NewSecretaryClient(f.client, token)

	date := time.Now().AddDate(0, 0, 4).Format(domain.DateLayout)
	created, err := secretary.CreateRendezVous(context.Background(), api.RendezVousData{
		MedecinID: f.medecin.ID,
		PatientID: f.patients[0].ID,
		Date:      date,
		Heure:     "09:30",
	})
	require.NoError(t, err)

	const rounds = 50
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, err := secretary.UpdateRendezVous(context.Background(), created.ID, api.RendezVousData{
				MedecinID:   f.medecin.ID,
				PatientID:   f.patients[0].ID,
				Date:        date,
				Heure:       "09:30",
				Commentaire: fmt.Sprintf("passage %d", i),
			})
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, err := secretary.RendezVous(context.Background(), date)
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	final, err := secretary.RendezVousByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("passage %d", rounds-1), final.Commentaire)
}

func TestSecretaryStats(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, f.secretaire.Email)
	secretary := api.NewSecretaryClient(f.client, token)

	stats, err := secretary.RendezVousStats(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total, "seed ships two appointments")

	pstats, err := secretary.PatientStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, pstats.Total)
	assert.Equal(t, 2, pstats.NouveauxMois)
}
