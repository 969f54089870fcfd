package dashboard

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Yassi1511/pfemedical-go/internal/api"
	"github.com/Yassi1511/pfemedical-go/internal/domain"
)

// SecretaryController drives the secretary dashboard. Its reads are
// all-or-nothing: patients, appointments and doctors load concurrently
// and a single failure fails the whole view with one shared error.
type SecretaryController struct {
	secretary *api.SecretaryClient
	log       *zap.Logger
	now       func() time.Time
}

func NewSecretaryController(secretary *api.SecretaryClient, log *zap.Logger) *SecretaryController {
	return &SecretaryController{secretary: secretary, log: log, now: time.Now}
}

type SecretaryView struct {
	Patients   []domain.Patient
	RendezVous []domain.RendezVous
	Medecins   []domain.Medecin

	Aujourdhui []domain.RendezVous
	ParMedecin []GroupeMedecin
	Compteurs  CompteurStatuts
}

func (c *SecretaryController) Load(ctx context.Context) (*SecretaryView, error) {
	view := &SecretaryView{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		patients, err := c.secretary.Patients(gctx)
		if err == nil {
			view.Patients = patients
		}
		return err
	})
	g.Go(func() error {
		rdv, err := c.secretary.RendezVous(gctx, "")
		if err == nil {
			view.RendezVous = rdv
		}
		return err
	})
	g.Go(func() error {
		medecins, err := c.secretary.Medecins(gctx)
		if err == nil {
			view.Medecins = medecins
		}
		return err
	})
	if err := g.Wait(); err != nil {
		c.log.Warn("secretary dashboard load failed", zap.Error(err))
		return nil, err
	}

	now := c.now()
	view.Aujourdhui = Aujourdhui(view.RendezVous, now)
	TrierParInstant(view.Aujourdhui, now.Location())
	view.ParMedecin = GrouperParMedecin(view.Aujourdhui)
	view.Compteurs = CompterStatuts(view.RendezVous)
	return view, nil
}
