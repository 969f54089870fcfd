package scheduler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Yassi1511/pfemedical-go/internal/api"
	"github.com/Yassi1511/pfemedical-go/internal/config"
	"github.com/Yassi1511/pfemedical-go/internal/domain"
	"github.com/Yassi1511/pfemedical-go/pkg/metrics"
)

const (
	medecinID = "64a000000000000000000001"
	patientID = "64a000000000000000000002"
	rdvID     = "64a000000000000000000003"
)

// fakeBackend counts the calls the coordinator makes so tests can assert
// that guarded paths never reach the network.
type fakeBackend struct {
	mux *http.ServeMux

	disponible     bool
	createStatus   int
	currentStatut  domain.Statut
	dispoCalls     atomic.Int64
	createCalls    atomic.Int64
	updateCalls    atomic.Int64
	deleteCalls    atomic.Int64
	cancelCalls    atomic.Int64
	commentCalls   atomic.Int64
	totalRequests  atomic.Int64
	lastComment    atomic.Value
	lastCancelBody atomic.Value
}

func newFakeBackend() *fakeBackend {
	f := &fakeBackend{
		mux:           http.NewServeMux(),
		disponible:    true,
		createStatus:  http.StatusCreated,
		currentStatut: domain.StatutEnAttente,
	}

	f.mux.HandleFunc("GET /rdv/disponibilite/test/main", func(w http.ResponseWriter, r *http.Request) {
		f.dispoCalls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"disponible": f.disponible})
	})
	f.mux.HandleFunc("POST /rdv", func(w http.ResponseWriter, r *http.Request) {
		f.createCalls.Add(1)
		if f.createStatus != http.StatusCreated {
			writeJSON(w, f.createStatus, map[string]any{"message": "créneau déjà pris"})
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusCreated, f.rdvDoc(body["date"].(string), body["heure"].(string)))
	})
	f.mux.HandleFunc("GET /rdv/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, f.rdvDoc("2025-10-20", "09:00"))
	})
	f.mux.HandleFunc("PUT /rdv/modifier/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.updateCalls.Add(1)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, f.rdvDoc(body["date"].(string), body["heure"].(string)))
	})
	f.mux.HandleFunc("DELETE /rdv/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.deleteCalls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"message": "supprimé"})
	})
	f.mux.HandleFunc("PUT /rdv/annuler/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.cancelCalls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"message": "annulé"})
	})
	f.mux.HandleFunc("PUT /rendez-vous/annuler/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.cancelCalls.Add(1)
		var body struct {
			Reason string `json:"reason"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.lastCancelBody.Store(body.Reason)
		writeJSON(w, http.StatusOK, map[string]any{"message": "annulé"})
	})
	f.mux.HandleFunc("PUT /rdv/consulter/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"message": "consulté"})
	})
	f.mux.HandleFunc("PUT /rdv/patient/{id}/commentaire", func(w http.ResponseWriter, r *http.Request) {
		f.commentCalls.Add(1)
		var body struct {
			Commentaire string `json:"commentaire"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.lastComment.Store(body.Commentaire)
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok"})
	})
	return f
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.totalRequests.Add(1)
	f.mux.ServeHTTP(w, r)
}

func (f *fakeBackend) rdvDoc(date, heure string) map[string]any {
	return map[string]any{
		"_id":       rdvID,
		"medecinId": map[string]any{"_id": medecinID, "nom": "Bernard", "prenom": "Claire"},
		"patientId": map[string]any{"_id": patientID, "nom": "Dupont", "prenom": "Marc"},
		"date":      date,
		"heure":     heure,
		"statut":    string(f.currentStatut),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestCoordinator(t *testing.T, backend *fakeBackend) *Coordinator {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client := api.New(config.APIConfig{
		BaseURL:        srv.URL,
		RequestTimeout: 5 * time.Second,
		UserAgent:      "pfemedical-test",
	}, zap.NewNop(), metrics.NewCollector("test"))

	token := api.StaticToken("test-token")
	coord := New(
		api.NewSecretaryClient(client, token),
		api.NewPatientClient(client, token),
		api.NewDoctorClient(client, token),
		zap.NewNop(),
		metrics.NewCollector("test_coord"),
	)
	coord.now = func() time.Time {
		return time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)
	}
	return coord
}

func validRequest() ScheduleRequest {
	return ScheduleRequest{
		MedecinID: medecinID,
		PatientID: patientID,
		Date:      "2025-10-20",
		Heure:     "09:00",
	}
}

func TestScheduleHappyPath(t *testing.T) {
	backend := newFakeBackend()
	coord := newTestCoordinator(t, backend)

	created, err := coord.Schedule(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, rdvID, created.ID)
	assert.Equal(t, "Claire Bernard", created.Medecin)
	assert.Equal(t, int64(1), backend.dispoCalls.Load())
	assert.Equal(t, int64(1), backend.createCalls.Load())
}

func TestScheduleStopsWhenIndisponible(t *testing.T) {
	backend := newFakeBackend()
	backend.disponible = false
	coord := newTestCoordinator(t, backend)

	_, err := coord.Schedule(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrMedecinIndisponible)
	assert.Equal(t, int64(0), backend.createCalls.Load(), "no create after a negative pre-check")
}

func TestScheduleInvalidIDFailsBeforeAnyCall(t *testing.T) {
	backend := newFakeBackend()
	coord := newTestCoordinator(t, backend)

	req := validRequest()
	req.MedecinID = "pas-un-objectid"
	_, err := coord.Schedule(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidID)
	assert.Equal(t, int64(0), backend.totalRequests.Load())
}

func TestScheduleRejectsPastDate(t *testing.T) {
	backend := newFakeBackend()
	coord := newTestCoordinator(t, backend)

	req := validRequest()
	req.Date = "2025-10-14" // yesterday, relative to the fixed clock
	_, err := coord.Schedule(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrScheduledInPast)
	assert.Equal(t, int64(0), backend.totalRequests.Load())
}

func TestScheduleAcceptsToday(t *testing.T) {
	backend := newFakeBackend()
	coord := newTestCoordinator(t, backend)

	req := validRequest()
	req.Date = "2025-10-15"
	_, err := coord.Schedule(context.Background(), req)
	assert.NoError(t, err)
}

func TestScheduleRejectsHourOutsideCreneaux(t *testing.T) {
	backend := newFakeBackend()
	coord := newTestCoordinator(t, backend)

	req := validRequest()
	req.Heure = "12:00" // lunch break
	_, err := coord.Schedule(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidCreneau)
	assert.Equal(t, int64(0), backend.totalRequests.Load())
}

func TestScheduleConflictAfterPositivePrecheck(t *testing.T) {
	backend := newFakeBackend()
	backend.createStatus = http.StatusConflict
	coord := newTestCoordinator(t, backend)

	_, err := coord.Schedule(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrCreneauPris)
	assert.Equal(t, int64(1), backend.createCalls.Load())
}

func TestEditSkipsAvailabilityWhenSlotUnchanged(t *testing.T) {
	backend := newFakeBackend()
	coord := newTestCoordinator(t, backend)

	commentaire := "venir à jeun"
	_, err := coord.Edit(context.Background(), rdvID, EditRequest{Commentaire: &commentaire})
	require.NoError(t, err)
	assert.Equal(t, int64(0), backend.dispoCalls.Load())
	assert.Equal(t, int64(1), backend.updateCalls.Load())
}

func TestEditRechecksAvailabilityWhenSlotChanges(t *testing.T) {
	backend := newFakeBackend()
	coord := newTestCoordinator(t, backend)

	heure := "10:30"
	_, err := coord.Edit(context.Background(), rdvID, EditRequest{Heure: &heure})
	require.NoError(t, err)
	assert.Equal(t, int64(1), backend.dispoCalls.Load())
	assert.Equal(t, int64(1), backend.updateCalls.Load())
}

func TestEditRejectsMalformedDate(t *testing.T) {
	backend := newFakeBackend()
	coord := newTestCoordinator(t, backend)

	date := "20/10/2025"
	_, err := coord.Edit(context.Background(), rdvID, EditRequest{Date: &date})
	require.Error(t, err)
	assert.Equal(t, int64(0), backend.dispoCalls.Load(), "no availability check on a malformed date")
	assert.Equal(t, int64(0), backend.updateCalls.Load())
}

func TestEditRejectsPastDate(t *testing.T) {
	backend := newFakeBackend()
	coord := newTestCoordinator(t, backend)

	date := "2025-10-14" // yesterday, relative to the fixed clock
	_, err := coord.Edit(context.Background(), rdvID, EditRequest{Date: &date})
	assert.ErrorIs(t, err, domain.ErrScheduledInPast)
	assert.Equal(t, int64(0), backend.updateCalls.Load())
}

func TestEditBlocksForbiddenTransition(t *testing.T) {
	backend := newFakeBackend()
	backend.currentStatut = domain.StatutAnnule
	coord := newTestCoordinator(t, backend)

	statut := domain.StatutConfirme
	_, err := coord.Edit(context.Background(), rdvID, EditRequest{Statut: &statut})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, int64(0), backend.updateCalls.Load())
}

func TestCancelAsPatientRejectsTerminal(t *testing.T) {
	backend := newFakeBackend()
	coord := newTestCoordinator(t, backend)

	err := coord.CancelAsPatient(context.Background(), &domain.RendezVous{
		ID:     rdvID,
		Statut: domain.StatutAnnule,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, int64(0), backend.cancelCalls.Load())
}

func TestCancelAsPatient(t *testing.T) {
	backend := newFakeBackend()
	coord := newTestCoordinator(t, backend)

	err := coord.CancelAsPatient(context.Background(), &domain.RendezVous{
		ID:     rdvID,
		Statut: domain.StatutConfirme,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), backend.cancelCalls.Load())
}

func TestCancelAsSecretarySendsReason(t *testing.T) {
	backend := newFakeBackend()
	coord := newTestCoordinator(t, backend)

	err := coord.CancelAsSecretary(context.Background(), &domain.RendezVous{
		ID:     rdvID,
		Statut: domain.StatutEnAttente,
	}, "médecin absent")
	require.NoError(t, err)
	assert.Equal(t, "médecin absent", backend.lastCancelBody.Load())
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	backend := newFakeBackend()
	coord := newTestCoordinator(t, backend)

	declined := ConfirmerFunc(func(string) bool { return false })
	err := coord.Delete(context.Background(), rdvID, declined)
	assert.ErrorIs(t, err, ErrNonConfirme)
	assert.Equal(t, int64(0), backend.totalRequests.Load(), "declining sends nothing")

	accepted := ConfirmerFunc(func(string) bool { return true })
	err = coord.Delete(context.Background(), rdvID, accepted)
	require.NoError(t, err)
	assert.Equal(t, int64(1), backend.deleteCalls.Load())
}

func TestAddComment(t *testing.T) {
	backend := newFakeBackend()
	coord := newTestCoordinator(t, backend)
	rdv := &domain.RendezVous{ID: rdvID, Statut: domain.StatutConfirme}

	err := coord.AddComment(context.Background(), rdv, "   ")
	assert.ErrorIs(t, err, domain.ErrCommentaireVide)
	assert.Equal(t, int64(0), backend.commentCalls.Load())

	err = coord.AddComment(context.Background(), rdv, "Besoin d'un rappel")
	require.NoError(t, err)
	assert.Equal(t, int64(1), backend.commentCalls.Load())
	assert.Equal(t, "Besoin d'un rappel", backend.lastComment.Load())
}

func TestAddCommentRejectsTerminalStates(t *testing.T) {
	backend := newFakeBackend()
	coord := newTestCoordinator(t, backend)

	for _, statut := range []domain.Statut{domain.StatutAnnule, domain.StatutConsulte} {
		err := coord.AddComment(context.Background(), &domain.RendezVous{ID: rdvID, Statut: statut}, "trop tard")
		assert.ErrorIs(t, err, domain.ErrCommentaireInterdit)
	}
	assert.Equal(t, int64(0), backend.commentCalls.Load())
}

func TestMarkConsulted(t *testing.T) {
	backend := newFakeBackend()
	coord := newTestCoordinator(t, backend)

	err := coord.MarkConsulted(context.Background(), &domain.RendezVous{
		ID:     rdvID,
		Statut: domain.StatutConsulte,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	err = coord.MarkConsulted(context.Background(), &domain.RendezVous{
		ID:     rdvID,
		Statut: domain.StatutConfirme,
	})
	assert.NoError(t, err)
}
