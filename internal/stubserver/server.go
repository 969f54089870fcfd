package stubserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Yassi1511/pfemedical-go/internal/domain"
)

// Config tunes the stub backend.
type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// Server is an in-memory rendition of the practice backend: the same
// routes, JSON shapes and status codes, no database. Development and the
// integration tests run the clients against it.
type Server struct {
	Engine *gin.Engine
	store  *Store
	tokens *tokenManager
	log    *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Server {
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "stub-secret"
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 24 * time.Hour
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		Engine: gin.New(),
		store:  NewStore(),
		tokens: newTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		log:    log,
	}
	s.Engine.Use(gin.Recovery())
	s.routes()
	return s
}

// Store exposes the backing state for seeding.
func (s *Server) Store() *Store { return s.store }

func (s *Server) routes() {
	r := s.Engine

	r.POST("/users/login", s.login)
	r.POST("/users/register", s.register)
	r.POST("/users/forget-password", s.forgotPassword)

	auth := r.Group("", s.authenticate)

	auth.GET("/users/profile", s.profile)
	auth.PUT("/users/profile", s.updateProfile)
	auth.DELETE("/users/profile", s.deleteProfile)

	medecin := auth.Group("", requireRole(domain.RoleMedecin))
	medecin.GET("/rdv/aujourdhui", s.rdvAujourdhui)
	medecin.GET("/rdv", s.rdvByMedecin)
	medecin.PUT("/rdv/consulter/:id", s.rdvConsulter)
	medecin.GET("/ordonnances/medecin", s.ordonnancesByMedecin)
	medecin.POST("/ordonnances", s.createOrdonnance)
	medecin.GET("/secretaires", s.secretaires)
	medecin.POST("/secretaires", s.lierSecretaire)
	medecin.PUT("/secretaires/:id", s.updateSecretaire)
	medecin.DELETE("/secretaires/:id", s.removeSecretaire)
	medecin.GET("/traitements", s.traitements)
	medecin.POST("/traitements", s.createTraitement)
	medecin.PUT("/traitements/:id", s.updateTraitement)
	medecin.DELETE("/traitements/:id", s.deleteTraitement)

	secretaire := auth.Group("", requireRole(domain.RoleSecretaire))
	secretaire.GET("/patients-by-secretaire", s.patientsBySecretaire)
	secretaire.POST("/secretary/patients", s.createPatient)
	secretaire.GET("/patients/patient/:id", s.patientByID)
	secretaire.PUT("/patients/:id", s.updatePatient)
	secretaire.DELETE("/secretary/patients/:id", s.deletePatient)
	secretaire.GET("/secretary/patients/search", s.searchPatients)
	secretaire.GET("/:medecinId/patients", s.patientsByMedecin)
	secretaire.GET("/medecins-by-secretaire", s.medecinsBySecretaire)
	secretaire.GET("/rendez-vous", s.rdvBySecretaire)
	secretaire.GET("/rdv/:id", s.rdvByID)
	secretaire.POST("/rdv", s.createRendezVous)
	secretaire.PUT("/rdv/modifier/:id", s.updateRendezVous)
	secretaire.DELETE("/rdv/:id", s.deleteRendezVous)
	secretaire.PUT("/rendez-vous/annuler/:id", s.cancelRendezVous)
	secretaire.GET("/rdv/disponibilite/test/main", s.disponibilite)
	secretaire.POST("/secretary/notifications", s.pushNotification)
	secretaire.POST("/secretary/notifications/bulk", s.pushBulkNotification)
	secretaire.GET("/secretary/stats/appointments", s.rdvStats)
	secretaire.GET("/secretary/stats/patients", s.patientStats)

	patient := auth.Group("", requireRole(domain.RolePatient))
	patient.GET("/rdv/patient/me", s.rdvByPatient)
	patient.PUT("/rdv/annuler/:id", s.annulerAsPatient)
	patient.PUT("/rdv/patient/:id/commentaire", s.addCommentaire)
	patient.GET("/ordonnances/patient", s.ordonnancesByPatient)
	patient.GET("/ordonnances/patient/:id", s.ordonnanceByID)
	patient.GET("/medicaments", s.medicaments)
	patient.POST("/medicaments", s.addMedicament)
	patient.GET("/", s.medecins)
	patient.GET("/specialite/:specialite", s.medecinsBySpecialite)
	patient.GET("/nom/:nom", s.medecinsByNom)
	patient.GET("/api/notifications", s.notifications)
	patient.PUT("/api/notifications/:id/lire", s.markNotificationRead)
	patient.POST("/api/notifications/generer/:id", s.generateNotifications)
}

// ---- auth & profile ----

type loginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	MotDePasse string `json:"motDePasse" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := s.store.Authenticate(req.Email, req.MotDePasse)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
		return
	}
	token, err := s.tokens.Issue(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "erreur interne"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"role":  string(u.Role),
		"_id":   u.ID,
	})
}

type registerRequest struct {
	Role       string `json:"role" binding:"required,oneof=medecin secretaire patient"`
	Nom        string `json:"nom" binding:"required"`
	Prenom     string `json:"prenom" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Numero     string `json:"numero" binding:"required"`
	MotDePasse string `json:"motDePasse" binding:"required,min=8"`

	Specialite     string `json:"specialite"`
	NumeroLicence  string `json:"numeroLicence"`
	AdresseCabinet string `json:"adresseCabinet"`

	Bureau       string `json:"bureau"`
	DateEmbauche string `json:"dateEmbauche"`

	DateNaissance string `json:"dateNaissance"`
	Adresse       string `json:"adresse"`
	Sexe          string `json:"sexe"`
	GroupeSanguin string `json:"groupeSanguin"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	u := &User{
		Role:           domain.Role(req.Role),
		Nom:            req.Nom,
		Prenom:         req.Prenom,
		Email:          req.Email,
		Numero:         req.Numero,
		Specialite:     req.Specialite,
		NumeroLicence:  req.NumeroLicence,
		AdresseCabinet: req.AdresseCabinet,
		Bureau:         req.Bureau,
		DateEmbauche:   req.DateEmbauche,
		DateNaissance:  req.DateNaissance,
		Adresse:        req.Adresse,
		Sexe:           req.Sexe,
		GroupeSanguin:  req.GroupeSanguin,
	}
	if _, err := s.store.AddUser(u, req.MotDePasse); err != nil {
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "compte créé"})
}

func (s *Server) forgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if !bindJSON(c, &req) {
		return
	}
	// Always answer the same way; whether the account exists is not leaked.
	c.JSON(http.StatusOK, gin.H{"message": "si le compte existe, un email a été envoyé"})
}

func (s *Server) profile(c *gin.Context) {
	u, ok := s.store.UserByID(currentUserID(c))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "utilisateur introuvable"})
		return
	}
	var doc gin.H
	switch u.Role {
	case domain.RoleMedecin:
		doc = s.renderMedecin(u)
	case domain.RoleSecretaire:
		doc = s.renderSecretaire(u)
	default:
		doc = s.renderPatient(u)
	}
	doc["role"] = string(u.Role)
	c.JSON(http.StatusOK, doc)
}

type profileUpdateRequest struct {
	Nom     *string `json:"nom"`
	Prenom  *string `json:"prenom"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Numero  *string `json:"numero"`
	Adresse *string `json:"adresse"`
	Bureau  *string `json:"bureau"`
}

func (s *Server) updateProfile(c *gin.Context) {
	var req profileUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	ok := s.store.UpdateUser(currentUserID(c), func(u *User) {
		applyProfileUpdate(u, &req)
	})
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "utilisateur introuvable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profil mis à jour"})
}

func applyProfileUpdate(u *User, req *profileUpdateRequest) {
	if req.Nom != nil {
		u.Nom = *req.Nom
	}
	if req.Prenom != nil {
		u.Prenom = *req.Prenom
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Numero != nil {
		u.Numero = *req.Numero
	}
	if req.Adresse != nil {
		u.Adresse = *req.Adresse
	}
	if req.Bureau != nil {
		u.Bureau = *req.Bureau
	}
}

func (s *Server) deleteProfile(c *gin.Context) {
	s.store.DeleteUser(currentUserID(c))
	c.JSON(http.StatusOK, gin.H{"message": "compte supprimé"})
}

// ---- helpers ----

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "requête invalide: " + err.Error()})
		return false
	}
	return true
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"message": what + " introuvable"})
}
