package dashboard

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Yassi1511/pfemedical-go/internal/api"
	"github.com/Yassi1511/pfemedical-go/internal/domain"
)

// PatientController drives the patient dashboard: appointments,
// prescriptions, medications and the doctor directory load concurrently
// with all-or-nothing semantics.
type PatientController struct {
	patient *api.PatientClient
	log     *zap.Logger
	now     func() time.Time
}

func NewPatientController(patient *api.PatientClient, log *zap.Logger) *PatientController {
	return &PatientController{patient: patient, log: log, now: time.Now}
}

type PatientView struct {
	RendezVous  []domain.RendezVous
	Ordonnances []domain.Ordonnance
	Medicaments []domain.Medicament
	Medecins    []domain.Medecin

	Prochain  *domain.RendezVous
	Compteurs CompteurStatuts
}

// Totaux feeds the summary tiles.
type Totaux struct {
	RendezVous  int
	Ordonnances int
	Medicaments int
	Medecins    int
}

func (v *PatientView) Totaux() Totaux {
	return Totaux{
		RendezVous:  len(v.RendezVous),
		Ordonnances: len(v.Ordonnances),
		Medicaments: len(v.Medicaments),
		Medecins:    len(v.Medecins),
	}
}

func (c *PatientController) Load(ctx context.Context) (*PatientView, error) {
	view := &PatientView{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rdv, err := c.patient.MesRendezVous(gctx)
		if err == nil {
			view.RendezVous = rdv
		}
		return err
	})
	g.Go(func() error {
		ords, err := c.patient.Ordonnances(gctx)
		if err == nil {
			view.Ordonnances = ords
		}
		return err
	})
	g.Go(func() error {
		meds, err := c.patient.Medicaments(gctx)
		if err == nil {
			view.Medicaments = meds
		}
		return err
	})
	g.Go(func() error {
		medecins, err := c.patient.Medecins(gctx)
		if err == nil {
			view.Medecins = medecins
		}
		return err
	})
	if err := g.Wait(); err != nil {
		c.log.Warn("patient dashboard load failed", zap.Error(err))
		return nil, err
	}

	now := c.now()
	TrierParInstant(view.RendezVous, now.Location())
	view.Prochain = ProchainRendezVous(view.RendezVous, now)
	view.Compteurs = CompterStatuts(view.RendezVous)
	return view, nil
}
