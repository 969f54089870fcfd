package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Yassi1511/pfemedical-go/internal/api"
	"github.com/Yassi1511/pfemedical-go/internal/config"
	"github.com/Yassi1511/pfemedical-go/internal/dashboard"
	"github.com/Yassi1511/pfemedical-go/internal/domain"
	"github.com/Yassi1511/pfemedical-go/internal/scheduler"
	"github.com/Yassi1511/pfemedical-go/internal/session"
	"github.com/Yassi1511/pfemedical-go/pkg/logger"
	"github.com/Yassi1511/pfemedical-go/pkg/metrics"
	"github.com/Yassi1511/pfemedical-go/pkg/tracer"
)

const usage = `pfemedical <command>

Commands:
  login       -email -password     se connecter et enregistrer la session
  logout                           effacer la session locale
  whoami                           afficher le profil de la session active
  dashboard                        charger le tableau de bord du rôle actif
  rdv         -medecin -patient -date -heure [-commentaire]
                                   prendre un rendez-vous (secrétaire)
  annuler     -id [-raison]        annuler un rendez-vous
  commenter   -id -texte           commenter un rendez-vous (patient)
  confirmer   -id                  confirmer un rendez-vous (secrétaire)
  supprimer   -id                  supprimer un rendez-vous (secrétaire)
`

// app bundles what every command needs once the config is loaded.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	store session.Store
	sess  *session.Session

	client    *api.Client
	secretary *api.SecretaryClient
	patient   *api.PatientClient
	doctor    *api.DoctorClient
	coord     *scheduler.Coordinator
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		log.Fatal("tracer init failed", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}()

	a := &app{cfg: cfg, log: log, store: session.NewFileStore(cfg.Session.FilePath)}
	if sess, err := a.store.Load(); err == nil {
		a.sess = sess
	}

	collector := metrics.NewCollector("pfemedical")
	a.client = api.New(cfg.API, log, collector)
	a.secretary = api.NewSecretaryClient(a.client, a.sess)
	a.patient = api.NewPatientClient(a.client, a.sess)
	a.doctor = api.NewDoctorClient(a.client, a.sess)
	a.coord = scheduler.New(a.secretary, a.patient, a.doctor, log, collector)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "Erreur:", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.logout()
	case "whoami":
		return a.whoami(ctx)
	case "dashboard":
		return a.dashboard(ctx)
	case "rdv":
		return a.schedule(ctx, args)
	case "annuler":
		return a.cancel(ctx, args)
	case "commenter":
		return a.comment(ctx, args)
	case "confirmer":
		return a.confirm(ctx, args)
	case "supprimer":
		return a.deleteRdv(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("commande inconnue: %s", command)
	}
}

func (a *app) requireSession() error {
	if !a.sess.Active() {
		return session.ErrNoSession
	}
	if a.sess.Expired(time.Now()) {
		return errors.New("session expirée, reconnectez-vous")
	}
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "adresse email du compte")
	password := fs.String("password", "", "mot de passe")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("-email et -password sont requis")
	}

	auth := api.NewAuthClient(a.client)
	res, err := auth.Login(ctx, api.LoginRequest{Email: *email, MotDePasse: *password})
	if err != nil {
		return err
	}
	sess := session.FromAuth(res.Token, res.Role, res.ID)
	if err := a.store.Save(sess); err != nil {
		return err
	}
	fmt.Printf("Connecté en tant que %s (%s)\n", *email, res.Role)
	return nil
}

func (a *app) logout() error {
	if err := a.store.Clear(); err != nil {
		return err
	}
	fmt.Println("Session effacée")
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	users := api.NewUsersClient(a.client, a.sess)
	profil, err := users.Get(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s <%s> — rôle %s\n", profil.Prenom, profil.Nom, profil.Email, profil.Role)
	if claims, err := a.sess.InspectToken(); err == nil && !claims.ExpiresAt.IsZero() {
		fmt.Printf("Session valable jusqu'au %s\n", claims.ExpiresAt.Format("02/01/2006 15:04"))
	}
	return nil
}

func (a *app) dashboard(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	switch a.sess.Role {
	case domain.RoleMedecin:
		return a.doctorDashboard(ctx)
	case domain.RoleSecretaire:
		return a.secretaryDashboard(ctx)
	case domain.RolePatient:
		return a.patientDashboard(ctx)
	default:
		return fmt.Errorf("rôle inconnu: %s", a.sess.Role)
	}
}

func (a *app) doctorDashboard(ctx context.Context) error {
	view := dashboard.NewDoctorController(a.doctor, a.log).Load(ctx)
	fmt.Printf("Rendez-vous du jour: %d (en attente %d, confirmés %d, consultés %d)\n",
		view.Compteurs.Total, view.Compteurs.EnAttente, view.Compteurs.Confirmes, view.Compteurs.Consultes)
	for _, r := range view.Aujourdhui {
		fmt.Printf("  %s  %s %s  [%s]\n", r.Heure, r.PatientPrenom, r.PatientNom, r.Statut.Label())
	}
	fmt.Printf("Ordonnances émises: %d — Secrétaires: %d\n", len(view.Ordonnances), len(view.Secretaires))
	for section, msg := range view.Erreurs {
		fmt.Printf("  ! %s: %s\n", section, msg)
	}
	return nil
}

func (a *app) secretaryDashboard(ctx context.Context) error {
	view, err := dashboard.NewSecretaryController(a.secretary, a.log).Load(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Patients: %d — Médecins: %d — Rendez-vous: %d\n",
		len(view.Patients), len(view.Medecins), view.Compteurs.Total)
	for _, g := range view.ParMedecin {
		fmt.Printf("Dr %s — aujourd'hui:\n", g.Medecin)
		for _, r := range g.RendezVous {
			fmt.Printf("  %s  %s %s  [%s]\n", r.Heure, r.PatientPrenom, r.PatientNom, r.Statut.Label())
		}
	}
	return nil
}

func (a *app) patientDashboard(ctx context.Context) error {
	view, err := dashboard.NewPatientController(a.patient, a.log).Load(ctx)
	if err != nil {
		return err
	}
	t := view.Totaux()
	fmt.Printf("Rendez-vous: %d — Ordonnances: %d — Médicaments: %d\n",
		t.RendezVous, t.Ordonnances, t.Medicaments)
	if view.Prochain != nil {
		fmt.Printf("Prochain rendez-vous: %s à %s avec %s\n",
			view.Prochain.Date, view.Prochain.Heure, view.Prochain.Medecin)
	} else {
		fmt.Println("Aucun rendez-vous à venir")
	}
	return nil
}

func (a *app) schedule(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rdv", flag.ExitOnError)
	medecin := fs.String("medecin", "", "id du médecin")
	patient := fs.String("patient", "", "id du patient")
	date := fs.String("date", "", "date (2006-01-02)")
	heure := fs.String("heure", "", "créneau (ex: 09:30)")
	commentaire := fs.String("commentaire", "", "commentaire libre")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	created, err := a.coord.Schedule(ctx, scheduler.ScheduleRequest{
		MedecinID:   *medecin,
		PatientID:   *patient,
		Date:        *date,
		Heure:       *heure,
		Commentaire: *commentaire,
	})
	if errors.Is(err, scheduler.ErrMedecinIndisponible) || errors.Is(err, scheduler.ErrCreneauPris) {
		fmt.Println("Créneau indisponible, choisissez un autre horaire parmi:")
		fmt.Println("  " + strings.Join(scheduler.Creneaux, " "))
		return err
	}
	if err != nil {
		return err
	}
	fmt.Printf("Rendez-vous créé (%s) le %s à %s\n", created.ID, created.Date, created.Heure)
	return nil
}

func (a *app) cancel(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("annuler", flag.ExitOnError)
	id := fs.String("id", "", "id du rendez-vous")
	raison := fs.String("raison", "", "raison de l'annulation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	rdv, err := a.findRendezVous(ctx, *id)
	if err != nil {
		return err
	}
	if a.sess.Role == domain.RolePatient {
		return a.coord.CancelAsPatient(ctx, rdv)
	}
	return a.coord.CancelAsSecretary(ctx, rdv, *raison)
}

func (a *app) comment(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("commenter", flag.ExitOnError)
	id := fs.String("id", "", "id du rendez-vous")
	texte := fs.String("texte", "", "texte du commentaire")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}
	if a.sess.Role != domain.RolePatient {
		return fmt.Errorf("seul un patient peut commenter ses rendez-vous")
	}
	rdv, err := a.findRendezVous(ctx, *id)
	if err != nil {
		return err
	}
	if err := a.coord.AddComment(ctx, rdv, *texte); err != nil {
		return err
	}
	fmt.Println("Commentaire enregistré")
	return nil
}

func (a *app) confirm(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("confirmer", flag.ExitOnError)
	id := fs.String("id", "", "id du rendez-vous")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}
	rdv, err := a.secretary.RendezVousByID(ctx, *id)
	if err != nil {
		return err
	}
	if err := a.coord.Confirm(ctx, rdv); err != nil {
		return err
	}
	fmt.Println("Rendez-vous confirmé")
	return nil
}

func (a *app) deleteRdv(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("supprimer", flag.ExitOnError)
	id := fs.String("id", "", "id du rendez-vous")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}
	err := a.coord.Delete(ctx, *id, promptConfirmer{})
	if errors.Is(err, scheduler.ErrNonConfirme) {
		fmt.Println("Suppression abandonnée")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println("Rendez-vous supprimé")
	return nil
}

// findRendezVous resolves an appointment for the active role: patients can
// only see their own list, the secretary queries by id directly.
func (a *app) findRendezVous(ctx context.Context, id string) (*domain.RendezVous, error) {
	if err := domain.CheckID(id); err != nil {
		return nil, err
	}
	if a.sess.Role == domain.RolePatient {
		list, err := a.patient.MesRendezVous(ctx)
		if err != nil {
			return nil, err
		}
		for i := range list {
			if list[i].ID == id {
				return &list[i], nil
			}
		}
		return nil, domain.ErrRendezVousNotFound
	}
	return a.secretary.RendezVousByID(ctx, id)
}

// promptConfirmer asks on stdin; anything but "oui" or "o" declines.
type promptConfirmer struct{}

func (promptConfirmer) Confirm(prompt string) bool {
	fmt.Print(prompt + " [oui/non] ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "oui" || answer == "o"
}
