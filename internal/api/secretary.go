package api

import (
	"context"
	"net/url"

	"github.com/Yassi1511/pfemedical-go/internal/domain"
)

// SecretaryClient is the secretary-scoped API surface: patient management,
// appointment CRUD, the availability query, and notification pushes.
type SecretaryClient struct {
	c  *Client
	ts TokenSource
}

func NewSecretaryClient(c *Client, ts TokenSource) *SecretaryClient {
	return &SecretaryClient{c: c, ts: ts}
}

// ---- patients ----

func (s *SecretaryClient) Patients(ctx context.Context) ([]domain.Patient, error) {
	var res struct {
		Patients []patientWire `json:"patients"`
	}
	if err := s.c.get(ctx, "/patients-by-secretaire", "/patients-by-secretaire", nil, s.ts.Token(), &res); err != nil {
		return nil, err
	}
	out := make([]domain.Patient, 0, len(res.Patients))
	for i := range res.Patients {
		out = append(out, res.Patients[i].toDomain())
	}
	return out, nil
}

func (s *SecretaryClient) CreatePatient(ctx context.Context, p domain.NouveauPatient) (*domain.Patient, error) {
	if err := checkPayload(p); err != nil {
		return nil, err
	}
	var wire patientWire
	if err := s.c.post(ctx, "/secretary/patients", "/secretary/patients", s.ts.Token(), p, &wire); err != nil {
		return nil, err
	}
	created := wire.toDomain()
	return &created, nil
}

func (s *SecretaryClient) Patient(ctx context.Context, patientID string) (*domain.Patient, error) {
	var wire patientWire
	if err := s.c.get(ctx, "/patients/patient/:id", "/patients/patient/"+patientID, nil, s.ts.Token(), &wire); err != nil {
		return nil, err
	}
	p := wire.toDomain()
	return &p, nil
}

func (s *SecretaryClient) UpdatePatient(ctx context.Context, patientID string, update domain.ProfilUpdate) error {
	return s.c.put(ctx, "/patients/:id", "/patients/"+patientID, s.ts.Token(), update, nil)
}

// DeletePatient removes the patient record. Callers must have confirmed
// with the user first.
func (s *SecretaryClient) DeletePatient(ctx context.Context, patientID string) error {
	return s.c.delete(ctx, "/secretary/patients/:id", "/secretary/patients/"+patientID, s.ts.Token(), nil)
}

func (s *SecretaryClient) SearchPatients(ctx context.Context, query string) ([]domain.Patient, error) {
	var wire []patientWire
	params := url.Values{"q": []string{query}}
	if err := s.c.get(ctx, "/secretary/patients/search", "/secretary/patients/search", params, s.ts.Token(), &wire); err != nil {
		return nil, err
	}
	out := make([]domain.Patient, 0, len(wire))
	for i := range wire {
		out = append(out, wire[i].toDomain())
	}
	return out, nil
}

// PatientsByMedecin narrows the patient list to one doctor's patients; the
// scheduling form uses it once a doctor is selected.
func (s *SecretaryClient) PatientsByMedecin(ctx context.Context, medecinID string) ([]domain.Patient, error) {
	var res struct {
		Patients []patientWire `json:"patients"`
	}
	if err := s.c.get(ctx, "/:medecinId/patients", "/"+medecinID+"/patients", nil, s.ts.Token(), &res); err != nil {
		return nil, err
	}
	out := make([]domain.Patient, 0, len(res.Patients))
	for i := range res.Patients {
		out = append(out, res.Patients[i].toDomain())
	}
	return out, nil
}

// ---- rendez-vous ----

// RendezVousData is the create/update payload for an appointment.
type RendezVousData struct {
	PatientID   string `json:"patientId"`
	MedecinID   string `json:"medecinId"`
	Date        string `json:"date"`
	Heure       string `json:"heure"`
	Statut      string `json:"statut,omitempty"`
	Commentaire string `json:"commentaire,omitempty"`
}

// RendezVous lists appointments, optionally restricted to one calendar
// date (backend wire format, 2006-01-02).
func (s *SecretaryClient) RendezVous(ctx context.Context, date string) ([]domain.RendezVous, error) {
	var params url.Values
	if date != "" {
		params = url.Values{"date": []string{date}}
	}
	var wire []rdvFlatWire
	if err := s.c.get(ctx, "/rendez-vous", "/rendez-vous", params, s.ts.Token(), &wire); err != nil {
		return nil, err
	}
	out := make([]domain.RendezVous, 0, len(wire))
	for i := range wire {
		out = append(out, wire[i].toDomain())
	}
	return out, nil
}

func (s *SecretaryClient) RendezVousByID(ctx context.Context, rdvID string) (*domain.RendezVous, error) {
	var wire rdvWire
	if err := s.c.get(ctx, "/rdv/:id", "/rdv/"+rdvID, nil, s.ts.Token(), &wire); err != nil {
		return nil, err
	}
	r := wire.toDomain()
	return &r, nil
}

func (s *SecretaryClient) CreateRendezVous(ctx context.Context, data RendezVousData) (*domain.RendezVous, error) {
	var wire rdvWire
	if err := s.c.post(ctx, "/rdv", "/rdv", s.ts.Token(), data, &wire); err != nil {
		return nil, err
	}
	r := wire.toDomain()
	return &r, nil
}

func (s *SecretaryClient) UpdateRendezVous(ctx context.Context, rdvID string, data RendezVousData) (*domain.RendezVous, error) {
	var wire rdvWire
	if err := s.c.put(ctx, "/rdv/modifier/:id", "/rdv/modifier/"+rdvID, s.ts.Token(), data, &wire); err != nil {
		return nil, err
	}
	r := wire.toDomain()
	return &r, nil
}

// DeleteRendezVous removes the record entirely; cancellation is a status
// change, deletion is not.
func (s *SecretaryClient) DeleteRendezVous(ctx context.Context, rdvID string) error {
	return s.c.delete(ctx, "/rdv/:id", "/rdv/"+rdvID, s.ts.Token(), nil)
}

func (s *SecretaryClient) CancelRendezVous(ctx context.Context, rdvID, reason string) error {
	body := struct {
		Reason string `json:"reason,omitempty"`
	}{Reason: reason}
	return s.c.put(ctx, "/rendez-vous/annuler/:id", "/rendez-vous/annuler/"+rdvID, s.ts.Token(), body, nil)
}

// Disponibilite asks whether (medecin, date, heure) is free. Best-effort:
// the answer can be stale by the time a create lands (see scheduler).
func (s *SecretaryClient) Disponibilite(ctx context.Context, medecinID, date, heure string) (bool, error) {
	params := url.Values{
		"medecinId": []string{medecinID},
		"date":      []string{date},
		"heure":     []string{heure},
	}
	var res struct {
		Disponible bool `json:"disponible"`
	}
	if err := s.c.get(ctx, "/rdv/disponibilite/test/main", "/rdv/disponibilite/test/main", params, s.ts.Token(), &res); err != nil {
		return false, err
	}
	return res.Disponible, nil
}

// ---- medecins ----

func (s *SecretaryClient) Medecins(ctx context.Context) ([]domain.Medecin, error) {
	var res struct {
		Medecins []medecinWire `json:"medecins"`
	}
	if err := s.c.get(ctx, "/medecins-by-secretaire", "/medecins-by-secretaire", nil, s.ts.Token(), &res); err != nil {
		return nil, err
	}
	out := make([]domain.Medecin, 0, len(res.Medecins))
	for i := range res.Medecins {
		out = append(out, res.Medecins[i].toDomain())
	}
	return out, nil
}

// ---- notifications ----

// NotificationPush is a message the secretary pushes to one patient.
type NotificationPush struct {
	PatientID string `json:"patientId" validate:"required"`
	Type      string `json:"type" validate:"required,oneof=rdv ordonnance info urgence"`
	Titre     string `json:"titre" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

func (s *SecretaryClient) SendNotification(ctx context.Context, n NotificationPush) error {
	if err := checkPayload(n); err != nil {
		return err
	}
	return s.c.post(ctx, "/secretary/notifications", "/secretary/notifications", s.ts.Token(), n, nil)
}

// BulkNotification fans one message out to several patients; the ids
// come from the list, not the message.
type BulkNotification struct {
	PatientIDs   []string    `json:"patientIds" validate:"required,min=1,dive,required"`
	Notification BulkMessage `json:"notification"`
}

type BulkMessage struct {
	Type    string `json:"type" validate:"required,oneof=rdv ordonnance info urgence"`
	Titre   string `json:"titre" validate:"required"`
	Message string `json:"message" validate:"required"`
}

func (s *SecretaryClient) SendBulkNotification(ctx context.Context, b BulkNotification) error {
	if err := checkPayload(b); err != nil {
		return err
	}
	return s.c.post(ctx, "/secretary/notifications/bulk", "/secretary/notifications/bulk", s.ts.Token(), b, nil)
}

// ---- stats ----

// AppointmentStats is the aggregate the reporting tab renders.
type AppointmentStats struct {
	Total     int `json:"total"`
	EnAttente int `json:"enAttente"`
	Confirmes int `json:"confirmes"`
	Consultes int `json:"consultes"`
	Annules   int `json:"annules"`
}

func (s *SecretaryClient) RendezVousStats(ctx context.Context, start, end string) (*AppointmentStats, error) {
	params := url.Values{
		"start": []string{start},
		"end":   []string{end},
	}
	var res AppointmentStats
	if err := s.c.get(ctx, "/secretary/stats/appointments", "/secretary/stats/appointments", params, s.ts.Token(), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type PatientStats struct {
	Total        int `json:"total"`
	NouveauxMois int `json:"nouveauxMois"`
}

func (s *SecretaryClient) PatientStats(ctx context.Context) (*PatientStats, error) {
	var res PatientStats
	if err := s.c.get(ctx, "/secretary/stats/patients", "/secretary/stats/patients", nil, s.ts.Token(), &res); err != nil {
		return nil, err
	}
	return &res, nil
}
