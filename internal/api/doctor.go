package api

import (
	"context"

	"github.com/Yassi1511/pfemedical-go/internal/domain"
)

// DoctorClient is the doctor-scoped API surface: today's consultations and
// the secretaries linked to the practice.
type DoctorClient struct {
	c  *Client
	ts TokenSource
}

func NewDoctorClient(c *Client, ts TokenSource) *DoctorClient {
	return &DoctorClient{c: c, ts: ts}
}

// RendezVousAujourdhui lists the doctor's appointments for the current day.
func (d *DoctorClient) RendezVousAujourdhui(ctx context.Context) ([]domain.RendezVous, error) {
	var wire []rdvWire
	if err := d.c.get(ctx, "/rdv/aujourdhui", "/rdv/aujourdhui", nil, d.ts.Token(), &wire); err != nil {
		return nil, err
	}
	out := make([]domain.RendezVous, 0, len(wire))
	for i := range wire {
		out = append(out, wire[i].toDomain())
	}
	return out, nil
}

// TousRendezVous lists every appointment of the doctor.
func (d *DoctorClient) TousRendezVous(ctx context.Context) ([]domain.RendezVous, error) {
	var wire []rdvWire
	if err := d.c.get(ctx, "/rdv", "/rdv", nil, d.ts.Token(), &wire); err != nil {
		return nil, err
	}
	out := make([]domain.RendezVous, 0, len(wire))
	for i := range wire {
		out = append(out, wire[i].toDomain())
	}
	return out, nil
}

// Consulter marks an appointment as consulted.
func (d *DoctorClient) Consulter(ctx context.Context, rdvID string) error {
	return d.c.put(ctx, "/rdv/consulter/:id", "/rdv/consulter/"+rdvID, d.ts.Token(), struct{}{}, nil)
}

// Ordonnances lists the prescriptions the doctor has issued.
func (d *DoctorClient) Ordonnances(ctx context.Context) ([]domain.Ordonnance, error) {
	var wire []ordonnanceWire
	if err := d.c.get(ctx, "/ordonnances/medecin", "/ordonnances/medecin", nil, d.ts.Token(), &wire); err != nil {
		return nil, err
	}
	out := make([]domain.Ordonnance, 0, len(wire))
	for i := range wire {
		out = append(out, wire[i].toDomain())
	}
	return out, nil
}

// LierSecretaire links an existing secretary account, by email, to the
// doctor's practice.
func (d *DoctorClient) LierSecretaire(ctx context.Context, email string) (*domain.Secretaire, error) {
	body := struct {
		Email string `json:"email"`
	}{Email: email}
	var res struct {
		Data secretaireWire `json:"data"`
	}
	if err := d.c.post(ctx, "/secretaires", "/secretaires", d.ts.Token(), body, &res); err != nil {
		return nil, err
	}
	s := res.Data.toDomain()
	return &s, nil
}

func (d *DoctorClient) Secretaires(ctx context.Context) ([]domain.Secretaire, error) {
	var res struct {
		Secretaires []secretaireWire `json:"secretaires"`
	}
	if err := d.c.get(ctx, "/secretaires", "/secretaires", nil, d.ts.Token(), &res); err != nil {
		return nil, err
	}
	out := make([]domain.Secretaire, 0, len(res.Secretaires))
	for i := range res.Secretaires {
		out = append(out, res.Secretaires[i].toDomain())
	}
	return out, nil
}

type SecretaireUpdate struct {
	Nom    string `json:"nom" validate:"required"`
	Prenom string `json:"prenom" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Numero string `json:"numero" validate:"required"`
}

func (d *DoctorClient) UpdateSecretaire(ctx context.Context, secretaireID string, update SecretaireUpdate) error {
	if err := checkPayload(update); err != nil {
		return err
	}
	return d.c.put(ctx, "/secretaires/:id", "/secretaires/"+secretaireID, d.ts.Token(), update, nil)
}

func (d *DoctorClient) RemoveSecretaire(ctx context.Context, secretaireID string) error {
	return d.c.delete(ctx, "/secretaires/:id", "/secretaires/"+secretaireID, d.ts.Token(), nil)
}
