package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Yassi1511/pfemedical-go/internal/api"
	"github.com/Yassi1511/pfemedical-go/internal/domain"
	"github.com/Yassi1511/pfemedical-go/pkg/metrics"
)

// Confirmer answers the "really do this?" prompt that guards destructive
// actions. The CLI backs it with an interactive prompt; tests with a
// canned answer.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(prompt string) bool

func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// Coordinator owns the appointment lifecycle: it validates preconditions
// client-side, runs the availability pre-check, and calls the role-scoped
// API clients. It never mutates state itself; status is backend-owned,
// the coordinator only requests transitions the state machine allows.
type Coordinator struct {
	secretary *api.SecretaryClient
	patient   *api.PatientClient
	doctor    *api.DoctorClient
	log       *zap.Logger
	metrics   *metrics.Collector

	// now is swappable for tests.
	now func() time.Time
}

func New(secretary *api.SecretaryClient, patient *api.PatientClient, doctor *api.DoctorClient, log *zap.Logger, collector *metrics.Collector) *Coordinator {
	return &Coordinator{
		secretary: secretary,
		patient:   patient,
		doctor:    doctor,
		log:       log,
		metrics:   collector,
		now:       time.Now,
	}
}

// ScheduleRequest is a secretary's request to book a slot.
type ScheduleRequest struct {
	MedecinID   string
	PatientID   string
	Date        string // 2006-01-02
	Heure       string // one of Creneaux
	Commentaire string
}

func (c *Coordinator) validateSlot(req ScheduleRequest) error {
	if err := domain.CheckID(req.MedecinID); err != nil {
		return fmt.Errorf("medecinId: %w", err)
	}
	if err := domain.CheckID(req.PatientID); err != nil {
		return fmt.Errorf("patientId: %w", err)
	}
	date, err := time.ParseInLocation(domain.DateLayout, req.Date, c.now().Location())
	if err != nil {
		return fmt.Errorf("date %q: format attendu %s", req.Date, domain.DateLayout)
	}
	y, m, d := c.now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, c.now().Location())
	if date.Before(today) {
		return domain.ErrScheduledInPast
	}
	if !ValidCreneau(req.Heure) {
		return domain.ErrInvalidCreneau
	}
	return nil
}

// Schedule books an appointment. The availability pre-check runs first; a
// negative answer stops everything before any mutation. The check and the
// create are two round trips, so a conflicting booking can still land in
// between; the backend's rejection then surfaces as ErrCreneauPris, which
// callers should treat as "refresh availability and let the user pick
// again", not as a failure.
func (c *Coordinator) Schedule(ctx context.Context, req ScheduleRequest) (*domain.RendezVous, error) {
	if err := c.validateSlot(req); err != nil {
		return nil, err
	}

	disponible, err := c.secretary.Disponibilite(ctx, req.MedecinID, req.Date, req.Heure)
	if err != nil {
		return nil, fmt.Errorf("vérification de la disponibilité: %w", err)
	}
	if !disponible {
		c.metrics.CreneauxRefused.Inc()
		return nil, ErrMedecinIndisponible
	}

	created, err := c.secretary.CreateRendezVous(ctx, api.RendezVousData{
		MedecinID:   req.MedecinID,
		PatientID:   req.PatientID,
		Date:        req.Date,
		Heure:       req.Heure,
		Statut:      string(domain.StatutEnAttente),
		Commentaire: req.Commentaire,
	})
	if err != nil {
		if api.IsConflict(err) {
			c.metrics.AvailabilityConflict.Inc()
			c.log.Warn("slot taken between pre-check and create",
				zap.String("medecin_id", req.MedecinID),
				zap.String("date", req.Date),
				zap.String("heure", req.Heure),
			)
			return nil, fmt.Errorf("%w: %s %s", ErrCreneauPris, req.Date, req.Heure)
		}
		return nil, err
	}

	c.metrics.RendezVousScheduled.Inc()
	c.log.Info("rendez-vous créé",
		zap.String("rdv_id", created.ID),
		zap.String("medecin_id", req.MedecinID),
		zap.String("date", req.Date),
		zap.String("heure", req.Heure),
	)
	return created, nil
}

// EditRequest is a partial update; nil fields keep the current value.
type EditRequest struct {
	MedecinID   *string
	PatientID   *string
	Date        *string
	Heure       *string
	Statut      *domain.Statut
	Commentaire *string
}

// Edit updates an existing appointment. When the (medecin, date, heure)
// triple changes, the availability check runs again before the update is
// sent; the historical client skipped it in edit mode and let operators
// double-book.
func (c *Coordinator) Edit(ctx context.Context, rdvID string, req EditRequest) (*domain.RendezVous, error) {
	if err := domain.CheckID(rdvID); err != nil {
		return nil, fmt.Errorf("rdvId: %w", err)
	}

	current, err := c.secretary.RendezVousByID(ctx, rdvID)
	if err != nil {
		return nil, fmt.Errorf("chargement du rendez-vous: %w", err)
	}

	data := api.RendezVousData{
		MedecinID:   current.MedecinID,
		PatientID:   current.PatientID,
		Date:        current.Date,
		Heure:       current.Heure,
		Statut:      string(current.Statut),
		Commentaire: current.Commentaire,
	}
	if req.MedecinID != nil {
		if err := domain.CheckID(*req.MedecinID); err != nil {
			return nil, fmt.Errorf("medecinId: %w", err)
		}
		data.MedecinID = *req.MedecinID
	}
	if req.PatientID != nil {
		if err := domain.CheckID(*req.PatientID); err != nil {
			return nil, fmt.Errorf("patientId: %w", err)
		}
		data.PatientID = *req.PatientID
	}
	if req.Date != nil {
		date, err := time.ParseInLocation(domain.DateLayout, *req.Date, c.now().Location())
		if err != nil {
			return nil, fmt.Errorf("date %q: format attendu %s", *req.Date, domain.DateLayout)
		}
		y, m, d := c.now().Date()
		today := time.Date(y, m, d, 0, 0, 0, 0, c.now().Location())
		if date.Before(today) {
			return nil, domain.ErrScheduledInPast
		}
		data.Date = *req.Date
	}
	if req.Heure != nil {
		if !ValidCreneau(*req.Heure) {
			return nil, domain.ErrInvalidCreneau
		}
		data.Heure = *req.Heure
	}
	if req.Statut != nil {
		if !req.Statut.IsValid() {
			return nil, domain.ErrInvalidStatut
		}
		if *req.Statut != current.Statut && !current.Statut.CanTransitionTo(*req.Statut) {
			return nil, domain.ErrInvalidTransition
		}
		data.Statut = string(*req.Statut)
	}
	if req.Commentaire != nil {
		data.Commentaire = *req.Commentaire
	}

	slotChanged := data.MedecinID != current.MedecinID ||
		data.Date != current.Date ||
		data.Heure != current.Heure
	if slotChanged {
		disponible, err := c.secretary.Disponibilite(ctx, data.MedecinID, data.Date, data.Heure)
		if err != nil {
			return nil, fmt.Errorf("vérification de la disponibilité: %w", err)
		}
		if !disponible {
			c.metrics.CreneauxRefused.Inc()
			return nil, ErrMedecinIndisponible
		}
	}

	updated, err := c.secretary.UpdateRendezVous(ctx, rdvID, data)
	if err != nil {
		if api.IsConflict(err) {
			c.metrics.AvailabilityConflict.Inc()
			return nil, fmt.Errorf("%w: %s %s", ErrCreneauPris, data.Date, data.Heure)
		}
		return nil, err
	}
	return updated, nil
}

// CancelAsPatient cancels one of the patient's own appointments. Terminal
// states are rejected before any call goes out.
func (c *Coordinator) CancelAsPatient(ctx context.Context, rdv *domain.RendezVous) error {
	if !rdv.Statut.CanTransitionTo(domain.StatutAnnule) {
		return domain.ErrInvalidTransition
	}
	if err := c.patient.Annuler(ctx, rdv.ID); err != nil {
		return err
	}
	c.metrics.RendezVousCancelled.Inc()
	c.log.Info("rendez-vous annulé par le patient", zap.String("rdv_id", rdv.ID))
	return nil
}

// CancelAsSecretary cancels on behalf of the practice, with a reason.
func (c *Coordinator) CancelAsSecretary(ctx context.Context, rdv *domain.RendezVous, reason string) error {
	if !rdv.Statut.CanTransitionTo(domain.StatutAnnule) {
		return domain.ErrInvalidTransition
	}
	if err := c.secretary.CancelRendezVous(ctx, rdv.ID, reason); err != nil {
		return err
	}
	c.metrics.RendezVousCancelled.Inc()
	c.log.Info("rendez-vous annulé par le secrétariat",
		zap.String("rdv_id", rdv.ID),
		zap.String("reason", reason),
	)
	return nil
}

// Confirm moves a pending appointment to confirmed (secretary action).
func (c *Coordinator) Confirm(ctx context.Context, rdv *domain.RendezVous) error {
	if !rdv.Statut.CanTransitionTo(domain.StatutConfirme) {
		return domain.ErrInvalidTransition
	}
	statut := domain.StatutConfirme
	_, err := c.Edit(ctx, rdv.ID, EditRequest{Statut: &statut})
	return err
}

// Delete removes an appointment record entirely (secretary only). The
// confirmation prompt runs first; declining it makes no network call and
// returns ErrNonConfirme.
func (c *Coordinator) Delete(ctx context.Context, rdvID string, confirm Confirmer) error {
	if err := domain.CheckID(rdvID); err != nil {
		return fmt.Errorf("rdvId: %w", err)
	}
	if !confirm.Confirm("Voulez-vous vraiment supprimer ce rendez-vous ?") {
		return ErrNonConfirme
	}
	if err := c.secretary.DeleteRendezVous(ctx, rdvID); err != nil {
		return err
	}
	c.log.Info("rendez-vous supprimé", zap.String("rdv_id", rdvID))
	return nil
}

// MarkConsulted transitions an appointment to consulted (doctor action).
func (c *Coordinator) MarkConsulted(ctx context.Context, rdv *domain.RendezVous) error {
	if !rdv.Statut.CanTransitionTo(domain.StatutConsulte) {
		return domain.ErrInvalidTransition
	}
	return c.doctor.Consulter(ctx, rdv.ID)
}

// AddComment sets the patient's free-text comment on an appointment.
// Empty or whitespace-only input is rejected locally; cancelled and
// consulted appointments cannot be commented.
func (c *Coordinator) AddComment(ctx context.Context, rdv *domain.RendezVous, commentaire string) error {
	trimmed := strings.TrimSpace(commentaire)
	if trimmed == "" {
		return domain.ErrCommentaireVide
	}
	if rdv.Statut.IsTerminal() {
		return domain.ErrCommentaireInterdit
	}
	return c.patient.AjouterCommentaire(ctx, rdv.ID, trimmed)
}
