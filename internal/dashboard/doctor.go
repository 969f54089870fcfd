package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Yassi1511/pfemedical-go/internal/api"
	"github.com/Yassi1511/pfemedical-go/internal/domain"
)

// DoctorController drives the doctor's day view. Each section loads in
// parallel and fails independently: a broken prescriptions endpoint must
// not blank the consultation list.
type DoctorController struct {
	doctor *api.DoctorClient
	log    *zap.Logger
	now    func() time.Time
}

func NewDoctorController(doctor *api.DoctorClient, log *zap.Logger) *DoctorController {
	return &DoctorController{doctor: doctor, log: log, now: time.Now}
}

// DoctorView is one fully loaded render of the doctor dashboard. Erreurs
// maps a section name to its user-facing message; a section present in
// the map rendered empty.
type DoctorView struct {
	Aujourdhui  []domain.RendezVous
	Ordonnances []domain.Ordonnance
	Secretaires []domain.Secretaire
	Compteurs   CompteurStatuts
	Erreurs     map[string]string
}

func (c *DoctorController) Load(ctx context.Context) *DoctorView {
	view := &DoctorView{Erreurs: make(map[string]string)}

	var mu sync.Mutex
	var wg sync.WaitGroup
	fail := func(section, msg string, err error) {
		mu.Lock()
		view.Erreurs[section] = msg
		mu.Unlock()
		c.log.Warn("section load failed", zap.String("section", section), zap.Error(err))
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		rdv, err := c.doctor.RendezVousAujourdhui(ctx)
		if err != nil {
			fail("rendezVous", "Erreur lors du chargement des rendez-vous", err)
			return
		}
		mu.Lock()
		view.Aujourdhui = rdv
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		ords, err := c.doctor.Ordonnances(ctx)
		if err != nil {
			fail("ordonnances", "Erreur lors du chargement des ordonnances", err)
			return
		}
		mu.Lock()
		view.Ordonnances = ords
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		secs, err := c.doctor.Secretaires(ctx)
		if err != nil {
			fail("secretaires", "Erreur lors du chargement des secrétaires", err)
			return
		}
		mu.Lock()
		view.Secretaires = secs
		mu.Unlock()
	}()
	wg.Wait()

	TrierParInstant(view.Aujourdhui, c.now().Location())
	view.Compteurs = CompterStatuts(view.Aujourdhui)
	return view
}
