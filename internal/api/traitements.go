package api

import (
	"context"
	"encoding/json"
	"io"

	"github.com/Yassi1511/pfemedical-go/internal/domain"
)

// TraitementsClient covers treatment bundles and prescription issuance
// (doctor side).
type TraitementsClient struct {
	c  *Client
	ts TokenSource
}

func NewTraitementsClient(c *Client, ts TokenSource) *TraitementsClient {
	return &TraitementsClient{c: c, ts: ts}
}

func (t *TraitementsClient) List(ctx context.Context) ([]domain.Traitement, error) {
	var wire []struct {
		ID          string           `json:"_id"`
		Nom         string           `json:"nom"`
		Patient     json.RawMessage  `json:"patient"`
		Medecin     json.RawMessage  `json:"medecin"`
		Medicaments []medicamentWire `json:"medicaments"`
	}
	if err := t.c.get(ctx, "/traitements", "/traitements", nil, t.ts.Token(), &wire); err != nil {
		return nil, err
	}
	out := make([]domain.Traitement, 0, len(wire))
	for _, w := range wire {
		meds := make([]domain.Medicament, 0, len(w.Medicaments))
		for i := range w.Medicaments {
			meds = append(meds, w.Medicaments[i].toDomain())
		}
		out = append(out, domain.Traitement{
			ID:          w.ID,
			Nom:         w.Nom,
			PatientID:   refID(w.Patient),
			MedecinID:   refID(w.Medecin),
			Medicaments: meds,
		})
	}
	return out, nil
}

// NouveauTraitement is the creation payload: a name, a patient, and the
// ids of the medications bundled.
type NouveauTraitement struct {
	Nom          string   `json:"nom" validate:"required"`
	PatientID    string   `json:"patient" validate:"required"`
	Medicaments  []string `json:"medicaments" validate:"required,min=1"`
	Observations string   `json:"observations,omitempty"`
}

func (t *TraitementsClient) Create(ctx context.Context, nt NouveauTraitement) error {
	if err := checkPayload(nt); err != nil {
		return err
	}
	return t.c.post(ctx, "/traitements", "/traitements", t.ts.Token(), nt, nil)
}

func (t *TraitementsClient) Update(ctx context.Context, traitementID string, nt NouveauTraitement) error {
	if err := checkPayload(nt); err != nil {
		return err
	}
	return t.c.put(ctx, "/traitements/:id", "/traitements/"+traitementID, t.ts.Token(), nt, nil)
}

func (t *TraitementsClient) Delete(ctx context.Context, traitementID string) error {
	return t.c.delete(ctx, "/traitements/:id", "/traitements/"+traitementID, t.ts.Token(), nil)
}

// NouvelleOrdonnance issues a prescription binding a treatment to a
// patient. Signature is optional; when present the request goes out as
// multipart with the file attached.
type NouvelleOrdonnance struct {
	PatientID    string
	TraitementID string
	Signature    io.Reader
	SignatureNom string
}

func (t *TraitementsClient) CreateOrdonnance(ctx context.Context, o NouvelleOrdonnance) error {
	fields := map[string]string{
		"destination": o.PatientID,
		"traitement":  o.TraitementID,
	}
	var files []multipartFile
	if o.Signature != nil {
		files = append(files, multipartFile{
			Field:    "signatureElectronique",
			Filename: o.SignatureNom,
			Content:  o.Signature,
		})
	}
	return t.c.postMultipart(ctx, "/ordonnances", "/ordonnances", t.ts.Token(), fields, files, nil)
}

// refID accepts either a plain id string or a populated sub-document and
// returns the id in both cases.
func refID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id
	}
	var doc struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(raw, &doc); err == nil {
		return doc.ID
	}
	return ""
}
