package stubserver

import (
	"errors"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/Yassi1511/pfemedical-go/internal/domain"
)

// errSlotTaken is returned when a create or reschedule lands on a slot
// already held by another non-cancelled appointment.
var errSlotTaken = errors.New("créneau déjà pris")

// Store is the in-memory state behind the stub backend. It keeps the
// documents in the same shape the real backend persists: users of the
// three roles, appointments referencing users by id, treatments
// bundling medications, prescriptions and the notification feed.
//
// Documents never leave the store by reference: queries return copies
// and mutations run under the lock, so concurrent handlers cannot
// observe a half-written struct.
type Store struct {
	mu sync.RWMutex

	users         map[string]*User
	rendezVous    map[string]*RendezVous
	medicaments   map[string]*Medicament
	traitements   map[string]*Traitement
	ordonnances   map[string]*Ordonnance
	notifications map[string]*Notification
}

// User is one account document. Role-specific fields stay zero for the
// other roles, the way a schemaless document store leaves them absent.
type User struct {
	ID           string
	Role         domain.Role
	Nom          string
	Prenom       string
	Email        string
	Numero       string
	PasswordHash []byte

	// medecin
	Specialite     string
	NumeroLicence  string
	AdresseCabinet string
	Patients       []string
	Secretaires    []string

	// secretaire
	Bureau       string
	DateEmbauche string

	// patient
	DateNaissance string
	Adresse       string
	Sexe          string
	GroupeSanguin string
	Allergies     string
	Medecins      []string

	CreatedAt time.Time
}

func (u *User) clone() *User {
	c := *u
	c.PasswordHash = append([]byte(nil), u.PasswordHash...)
	c.Patients = cloneStrings(u.Patients)
	c.Secretaires = cloneStrings(u.Secretaires)
	c.Medecins = cloneStrings(u.Medecins)
	return &c
}

type RendezVous struct {
	ID          string
	MedecinID   string
	PatientID   string
	Date        string
	Heure       string
	Statut      domain.Statut
	Commentaire string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r *RendezVous) clone() *RendezVous {
	c := *r
	return &c
}

type Medicament struct {
	ID                 string
	PatientID          string
	NomCommercial      string
	Dosage             string
	Frequence          int
	VoieAdministration string
	DateDebut          string
	DateFin            string
	Horaires           []string
}

func (m *Medicament) clone() *Medicament {
	c := *m
	c.Horaires = cloneStrings(m.Horaires)
	return &c
}

type Traitement struct {
	ID           string
	Nom          string
	Observations string
	PatientID    string
	MedecinID    string
	Medicaments  []string
}

func (t *Traitement) clone() *Traitement {
	c := *t
	c.Medicaments = cloneStrings(t.Medicaments)
	return &c
}

type Ordonnance struct {
	ID           string
	MedecinID    string
	PatientID    string
	TraitementID string
	Signature    string
	DateEmission time.Time
}

func (o *Ordonnance) clone() *Ordonnance {
	c := *o
	return &c
}

type Notification struct {
	ID           string
	PatientID    string
	Contenu      string
	Type         string
	Horaire      string
	Lu           bool
	DateEnvoi    time.Time
	MedicamentID string
}

func (n *Notification) clone() *Notification {
	c := *n
	return &c
}

func NewStore() *Store {
	return &Store{
		users:         make(map[string]*User),
		rendezVous:    make(map[string]*RendezVous),
		medicaments:   make(map[string]*Medicament),
		traitements:   make(map[string]*Traitement),
		ordonnances:   make(map[string]*Ordonnance),
		notifications: make(map[string]*Notification),
	}
}

// newID produces ids in the 24-hex shape the clients validate against.
func newID() string {
	return primitive.NewObjectID().Hex()
}

// AddUser hashes the password and stores the account. Email is the
// uniqueness key, matched case-insensitively. The caller keeps ownership
// of u; the store keeps its own copy.
func (s *Store) AddUser(u *User, motDePasse string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(motDePasse), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByEmailLocked(u.Email) != nil {
		return nil, ErrEmailTaken
	}
	if u.ID == "" {
		u.ID = newID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	stored := u.clone()
	stored.PasswordHash = hash
	s.users[stored.ID] = stored
	return u, nil
}

func (s *Store) findByEmailLocked(email string) *User {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

// Authenticate checks the credentials and returns the account.
func (s *Store) Authenticate(email, motDePasse string) (*User, error) {
	s.mu.RLock()
	var u *User
	if found := s.findByEmailLocked(email); found != nil {
		u = found.clone()
	}
	s.mu.RUnlock()
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(motDePasse)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Store) UserByID(id string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	return u.clone(), true
}

func (s *Store) UserByEmail(email string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.findByEmailLocked(email)
	if u == nil {
		return nil, false
	}
	return u.clone(), true
}

// UpdateUser applies the mutation to the stored account under the lock.
func (s *Store) UpdateUser(id string, apply func(*User)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return false
	}
	apply(u)
	return true
}

func (s *Store) DeleteUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// LinkSecretaire attaches a secretary to a doctor, both directions.
func (s *Store) LinkSecretaire(medecinID, secretaireID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, okM := s.users[medecinID]
	sec, okS := s.users[secretaireID]
	if !okM || !okS {
		return
	}
	m.Secretaires = appendUnique(m.Secretaires, secretaireID)
	sec.Medecins = appendUnique(sec.Medecins, medecinID)
}

func (s *Store) UnlinkSecretaire(medecinID, secretaireID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.users[medecinID]; ok {
		m.Secretaires = remove(m.Secretaires, secretaireID)
	}
	if sec, ok := s.users[secretaireID]; ok {
		sec.Medecins = remove(sec.Medecins, medecinID)
	}
}

// LinkPatient attaches a patient to a doctor, both directions.
func (s *Store) LinkPatient(medecinID, patientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, okM := s.users[medecinID]
	p, okP := s.users[patientID]
	if !okM || !okP {
		return
	}
	m.Patients = appendUnique(m.Patients, patientID)
	p.Medecins = appendUnique(p.Medecins, medecinID)
}

// UsersByRole returns accounts of one role, optionally restricted to a
// set of ids (nil means no restriction).
func (s *Store) UsersByRole(role domain.Role, ids []string) []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var allow map[string]bool
	if ids != nil {
		allow = make(map[string]bool, len(ids))
		for _, id := range ids {
			allow[id] = true
		}
	}
	out := make([]*User, 0)
	for _, u := range s.users {
		if u.Role != role {
			continue
		}
		if allow != nil && !allow[u.ID] {
			continue
		}
		out = append(out, u.clone())
	}
	return out
}

// ---- rendez-vous ----

func (s *Store) AddRendezVous(r *RendezVous) *RendezVous {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertRendezVousLocked(r)
	return r
}

// CreateRendezVousIfFree checks the slot and inserts under one lock, so
// two concurrent creates cannot both claim the same slot. Returns
// errSlotTaken when the slot is already held.
func (s *Store) CreateRendezVousIfFree(r *RendezVous) (*RendezVous, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slotTakenLocked(r.MedecinID, r.Date, r.Heure, "") {
		return nil, errSlotTaken
	}
	s.insertRendezVousLocked(r)
	return r, nil
}

func (s *Store) insertRendezVousLocked(r *RendezVous) {
	if r.ID == "" {
		r.ID = newID()
	}
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	s.rendezVous[r.ID] = r.clone()
}

func (s *Store) RendezVousByID(id string) (*RendezVous, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rendezVous[id]
	if !ok {
		return nil, false
	}
	return r.clone(), true
}

// UpdateRendezVous applies the mutation to the stored appointment under
// the lock and stamps UpdatedAt.
func (s *Store) UpdateRendezVous(id string, apply func(*RendezVous)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rendezVous[id]
	if !ok {
		return false
	}
	apply(r)
	r.UpdatedAt = time.Now()
	return true
}

// RescheduleRendezVous applies the mutation and re-checks the slot under
// one lock, so an edit cannot double-book either. ok reports whether the
// appointment exists; errSlotTaken means another appointment holds the
// target slot and nothing was changed.
func (s *Store) RescheduleRendezVous(id string, apply func(*RendezVous)) (*RendezVous, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.rendezVous[id]
	if !ok {
		return nil, false, nil
	}
	next := cur.clone()
	apply(next)
	if s.slotTakenLocked(next.MedecinID, next.Date, next.Heure, id) {
		return nil, true, errSlotTaken
	}
	next.UpdatedAt = time.Now()
	s.rendezVous[id] = next
	return next.clone(), true, nil
}

func (s *Store) DeleteRendezVous(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rendezVous[id]; !ok {
		return false
	}
	delete(s.rendezVous, id)
	return true
}

// RendezVousWhere returns appointments matching the predicate.
func (s *Store) RendezVousWhere(keep func(*RendezVous) bool) []*RendezVous {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*RendezVous, 0)
	for _, r := range s.rendezVous {
		if keep(r) {
			out = append(out, r.clone())
		}
	}
	return out
}

// SlotTaken reports whether the doctor already holds a non-cancelled
// appointment at (date, heure).
func (s *Store) SlotTaken(medecinID, date, heure string, excludeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slotTakenLocked(medecinID, date, heure, excludeID)
}

func (s *Store) slotTakenLocked(medecinID, date, heure string, excludeID string) bool {
	for _, r := range s.rendezVous {
		if r.ID == excludeID {
			continue
		}
		if r.MedecinID == medecinID && r.Date == date && r.Heure == heure && r.Statut != domain.StatutAnnule {
			return true
		}
	}
	return false
}

// ---- care ----

func (s *Store) AddMedicament(m *Medicament) *Medicament {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = newID()
	}
	s.medicaments[m.ID] = m.clone()
	return m
}

func (s *Store) MedicamentByID(id string) (*Medicament, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.medicaments[id]
	if !ok {
		return nil, false
	}
	return m.clone(), true
}

func (s *Store) MedicamentsByPatient(patientID string) []*Medicament {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Medicament, 0)
	for _, m := range s.medicaments {
		if m.PatientID == patientID {
			out = append(out, m.clone())
		}
	}
	return out
}

func (s *Store) AddTraitement(t *Traitement) *Traitement {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = newID()
	}
	s.traitements[t.ID] = t.clone()
	return t
}

func (s *Store) TraitementByID(id string) (*Traitement, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.traitements[id]
	if !ok {
		return nil, false
	}
	return t.clone(), true
}

func (s *Store) UpdateTraitement(id string, apply func(*Traitement)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.traitements[id]
	if !ok {
		return false
	}
	apply(t)
	return true
}

func (s *Store) DeleteTraitement(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.traitements[id]; !ok {
		return false
	}
	delete(s.traitements, id)
	return true
}

func (s *Store) TraitementsByMedecin(medecinID string) []*Traitement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Traitement, 0)
	for _, t := range s.traitements {
		if t.MedecinID == medecinID {
			out = append(out, t.clone())
		}
	}
	return out
}

func (s *Store) AddOrdonnance(o *Ordonnance) *Ordonnance {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == "" {
		o.ID = newID()
	}
	if o.DateEmission.IsZero() {
		o.DateEmission = time.Now()
	}
	s.ordonnances[o.ID] = o.clone()
	return o
}

func (s *Store) OrdonnanceByID(id string) (*Ordonnance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.ordonnances[id]
	if !ok {
		return nil, false
	}
	return o.clone(), true
}

func (s *Store) OrdonnancesWhere(keep func(*Ordonnance) bool) []*Ordonnance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Ordonnance, 0)
	for _, o := range s.ordonnances {
		if keep(o) {
			out = append(out, o.clone())
		}
	}
	return out
}

func (s *Store) AddNotification(n *Notification) *Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == "" {
		n.ID = newID()
	}
	if n.DateEnvoi.IsZero() {
		n.DateEnvoi = time.Now()
	}
	s.notifications[n.ID] = n.clone()
	return n
}

func (s *Store) NotificationsByPatient(patientID string) []*Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Notification, 0)
	for _, n := range s.notifications {
		if n.PatientID == patientID {
			out = append(out, n.clone())
		}
	}
	return out
}

func (s *Store) MarkNotificationRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return false
	}
	n.Lu = true
	return true
}

func cloneStrings(list []string) []string {
	if list == nil {
		return nil
	}
	return append([]string(nil), list...)
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func remove(list []string, v string) []string {
	out := list[:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
