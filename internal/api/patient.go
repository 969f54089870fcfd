package api

import (
	"context"
	"net/url"

	"github.com/Yassi1511/pfemedical-go/internal/domain"
)

// PatientClient is the patient-scoped API surface: own appointments,
// prescriptions, medications and the doctor directory.
type PatientClient struct {
	c  *Client
	ts TokenSource
}

func NewPatientClient(c *Client, ts TokenSource) *PatientClient {
	return &PatientClient{c: c, ts: ts}
}

// MesRendezVous lists the authenticated patient's appointments.
func (p *PatientClient) MesRendezVous(ctx context.Context) ([]domain.RendezVous, error) {
	var wire []rdvWire
	if err := p.c.get(ctx, "/rdv/patient/me", "/rdv/patient/me", nil, p.ts.Token(), &wire); err != nil {
		return nil, err
	}
	out := make([]domain.RendezVous, 0, len(wire))
	for i := range wire {
		out = append(out, wire[i].toDomain())
	}
	return out, nil
}

// Annuler cancels one of the patient's own appointments. The backend does
// not require a reason on this endpoint.
func (p *PatientClient) Annuler(ctx context.Context, rdvID string) error {
	return p.c.put(ctx, "/rdv/annuler/:id", "/rdv/annuler/"+rdvID, p.ts.Token(), struct{}{}, nil)
}

// AjouterCommentaire sets the free-text comment of an appointment.
func (p *PatientClient) AjouterCommentaire(ctx context.Context, rdvID, commentaire string) error {
	body := struct {
		Commentaire string `json:"commentaire"`
	}{Commentaire: commentaire}
	return p.c.put(ctx, "/rdv/patient/:id/commentaire", "/rdv/patient/"+rdvID+"/commentaire", p.ts.Token(), body, nil)
}

// ---- ordonnances ----

func (p *PatientClient) Ordonnances(ctx context.Context) ([]domain.Ordonnance, error) {
	var wire []ordonnanceWire
	if err := p.c.get(ctx, "/ordonnances/patient", "/ordonnances/patient", nil, p.ts.Token(), &wire); err != nil {
		return nil, err
	}
	out := make([]domain.Ordonnance, 0, len(wire))
	for i := range wire {
		out = append(out, wire[i].toDomain())
	}
	return out, nil
}

func (p *PatientClient) Ordonnance(ctx context.Context, ordonnanceID string) (*domain.Ordonnance, error) {
	var wire ordonnanceWire
	if err := p.c.get(ctx, "/ordonnances/patient/:id", "/ordonnances/patient/"+ordonnanceID, nil, p.ts.Token(), &wire); err != nil {
		return nil, err
	}
	o := wire.toDomain()
	return &o, nil
}

// ---- medicaments ----

func (p *PatientClient) Medicaments(ctx context.Context) ([]domain.Medicament, error) {
	var wire []medicamentWire
	if err := p.c.get(ctx, "/medicaments", "/medicaments", nil, p.ts.Token(), &wire); err != nil {
		return nil, err
	}
	out := make([]domain.Medicament, 0, len(wire))
	for i := range wire {
		out = append(out, wire[i].toDomain())
	}
	return out, nil
}

func (p *PatientClient) AddMedicament(ctx context.Context, m domain.NouveauMedicament) (*domain.Medicament, error) {
	if err := checkPayload(m); err != nil {
		return nil, err
	}
	var res struct {
		Message    string         `json:"message"`
		Medicament medicamentWire `json:"medicament"`
	}
	if err := p.c.post(ctx, "/medicaments", "/medicaments", p.ts.Token(), m, &res); err != nil {
		return nil, err
	}
	created := res.Medicament.toDomain()
	return &created, nil
}

// ---- medecins directory ----

func (p *PatientClient) Medecins(ctx context.Context) ([]domain.Medecin, error) {
	var wire []medecinWire
	if err := p.c.get(ctx, "/", "/", nil, p.ts.Token(), &wire); err != nil {
		return nil, err
	}
	out := make([]domain.Medecin, 0, len(wire))
	for i := range wire {
		out = append(out, wire[i].toDomain())
	}
	return out, nil
}

func (p *PatientClient) MedecinsBySpecialite(ctx context.Context, specialite string) ([]domain.Medecin, error) {
	var wire []medecinWire
	path := "/specialite/" + url.PathEscape(specialite)
	if err := p.c.get(ctx, "/specialite/:specialite", path, nil, p.ts.Token(), &wire); err != nil {
		return nil, err
	}
	out := make([]domain.Medecin, 0, len(wire))
	for i := range wire {
		out = append(out, wire[i].toDomain())
	}
	return out, nil
}

func (p *PatientClient) MedecinsByNom(ctx context.Context, nom string) ([]domain.Medecin, error) {
	var wire []medecinWire
	path := "/nom/" + url.PathEscape(nom)
	if err := p.c.get(ctx, "/nom/:nom", path, nil, p.ts.Token(), &wire); err != nil {
		return nil, err
	}
	out := make([]domain.Medecin, 0, len(wire))
	for i := range wire {
		out = append(out, wire[i].toDomain())
	}
	return out, nil
}
