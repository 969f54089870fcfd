package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Yassi1511/pfemedical-go/internal/config"
	"github.com/Yassi1511/pfemedical-go/internal/domain"
	"github.com/Yassi1511/pfemedical-go/pkg/metrics"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.APIConfig{
		BaseURL:        srv.URL,
		RequestTimeout: 5 * time.Second,
		UserAgent:      "pfemedical-test",
	}, zap.NewNop(), metrics.NewCollector("api_test"))
}

func TestRequestCarriesAuthAndTracingHeaders(t *testing.T) {
	var got http.Header
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))

	doctor := NewDoctorClient(client, StaticToken("jeton-secret"))
	_, err := doctor.RendezVousAujourdhui(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer jeton-secret", got.Get("Authorization"))
	assert.Equal(t, "pfemedical-test", got.Get("User-Agent"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
}

func TestBackendErrorBodyIsSurfaced(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"rendez-vous introuvable"}`))
	}))

	secretary := NewSecretaryClient(client, StaticToken("t"))
	_, err := secretary.RendezVousByID(context.Background(), "64a000000000000000000001")
	require.Error(t, err)

	assert.True(t, IsNotFound(err))
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "rendez-vous introuvable", apiErr.Message)
}

func TestDecodeError(t *testing.T) {
	e := decodeError(400, "POST /rdv", []byte(`{"message":"date invalide"}`))
	assert.Equal(t, "date invalide", e.Message)

	e = decodeError(500, "GET /rdv", []byte(`{"error":"boom"}`))
	assert.Equal(t, "boom", e.Message)

	e = decodeError(502, "GET /rdv", []byte(`Bad Gateway`))
	assert.Equal(t, "Bad Gateway", e.Message)
}

func TestIsConflict(t *testing.T) {
	assert.True(t, IsConflict(&Error{StatusCode: http.StatusConflict}))
	assert.False(t, IsConflict(&Error{StatusCode: http.StatusBadRequest}))
	assert.False(t, IsConflict(context.Canceled))
}

func TestRendezVousFlattening(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{
			"_id": "64a000000000000000000003",
			"medecinId": {"_id": "64a000000000000000000001", "nom": "Bernard", "prenom": "Claire", "specialite": "Cardiologie"},
			"patientId": {"_id": "64a000000000000000000002", "nom": "Dupont", "prenom": "Marc", "numero": "0611223344"},
			"date": "2025-10-20",
			"heure": "09:00",
			"statut": "Annulé",
			"commentaire": "venir à jeun"
		}]`))
	}))

	patient := NewPatientClient(client, StaticToken("t"))
	list, err := patient.MesRendezVous(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)

	r := list[0]
	assert.Equal(t, "64a000000000000000000003", r.ID)
	assert.Equal(t, "64a000000000000000000001", r.MedecinID)
	assert.Equal(t, "Claire Bernard", r.Medecin)
	assert.Equal(t, "Cardiologie", r.MedecinSpecialite)
	assert.Equal(t, "Dupont", r.PatientNom)
	assert.Equal(t, domain.StatutAnnule, r.Statut, "spelling variants are normalized on ingestion")
	assert.Equal(t, "venir à jeun", r.Commentaire)
}

func TestDisponibilitePassesQueryParams(t *testing.T) {
	var query map[string][]string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"disponible": false}`))
	}))

	secretary := NewSecretaryClient(client, StaticToken("t"))
	disponible, err := secretary.Disponibilite(context.Background(), "64a000000000000000000001", "2025-10-20", "09:00")
	require.NoError(t, err)

	assert.False(t, disponible)
	assert.Equal(t, []string{"64a000000000000000000001"}, query["medecinId"])
	assert.Equal(t, []string{"2025-10-20"}, query["date"])
	assert.Equal(t, []string{"09:00"}, query["heure"])
}

func TestMedecinCountsDeriveFromLinkedLists(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"medecins": [{
			"_id": "64a000000000000000000001",
			"nom": "Bernard",
			"prenom": "Claire",
			"Patients": ["a", "b", "c"],
			"Secretaires": ["d"]
		}]}`))
	}))

	secretary := NewSecretaryClient(client, StaticToken("t"))
	medecins, err := secretary.Medecins(context.Background())
	require.NoError(t, err)
	require.Len(t, medecins, 1)
	assert.Equal(t, 3, medecins[0].NombrePatients)
	assert.Equal(t, 1, medecins[0].NombreSecretaires)
}

func TestCreateOrdonnanceSendsMultipart(t *testing.T) {
	var contentType, destination, traitement, filename string
	var fileBody []byte
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		destination = r.FormValue("destination")
		traitement = r.FormValue("traitement")
		if file, header, err := r.FormFile("signatureElectronique"); err == nil {
			filename = header.Filename
			buf := make([]byte, header.Size)
			n, _ := file.Read(buf)
			fileBody = buf[:n]
			_ = file.Close()
		}
		writeCreated(w)
	}))

	traitements := NewTraitementsClient(client, StaticToken("t"))
	err := traitements.CreateOrdonnance(context.Background(), NouvelleOrdonnance{
		PatientID:    "64a000000000000000000002",
		TraitementID: "64a000000000000000000009",
		Signature:    strings.NewReader("fausse signature png"),
		SignatureNom: "signature.png",
	})
	require.NoError(t, err)

	assert.Contains(t, contentType, "multipart/form-data")
	assert.Equal(t, "64a000000000000000000002", destination)
	assert.Equal(t, "64a000000000000000000009", traitement)
	assert.Equal(t, "signature.png", filename)
	assert.Equal(t, "fausse signature png", string(fileBody))
}

func TestRefID(t *testing.T) {
	assert.Equal(t, "abc", refID(json.RawMessage(`"abc"`)))
	assert.Equal(t, "def", refID(json.RawMessage(`{"_id":"def","nom":"Dupont"}`)))
	assert.Equal(t, "", refID(nil))
	assert.Equal(t, "", refID(json.RawMessage(`42`)))
}

func writeCreated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write([]byte(`{"message":"ok"}`))
}
