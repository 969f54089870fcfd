package stubserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Yassi1511/pfemedical-go/internal/domain"
)

// Directory and account-management handlers: the secretary's patient
// roster, the doctor's secretary links and the patient-facing doctor
// directory.

// secretaryMedecins resolves the doctors the authenticated secretary
// works for.
func (s *Server) secretaryMedecins(c *gin.Context) []string {
	sec, ok := s.store.UserByID(currentUserID(c))
	if !ok {
		return nil
	}
	return sec.Medecins
}

// secretaryPatients collects the patients of every linked doctor.
func (s *Server) secretaryPatients(c *gin.Context) []*User {
	seen := make(map[string]bool)
	out := make([]*User, 0)
	for _, medecinID := range s.secretaryMedecins(c) {
		m, ok := s.store.UserByID(medecinID)
		if !ok {
			continue
		}
		for _, p := range s.store.UsersByRole(domain.RolePatient, m.Patients) {
			if !seen[p.ID] {
				seen[p.ID] = true
				out = append(out, p)
			}
		}
	}
	return out
}

func (s *Server) patientsBySecretaire(c *gin.Context) {
	patients := s.secretaryPatients(c)
	out := make([]gin.H, 0, len(patients))
	for _, p := range patients {
		out = append(out, s.renderPatient(p))
	}
	c.JSON(http.StatusOK, gin.H{"patients": out})
}

type createPatientRequest struct {
	Nom           string   `json:"nom" binding:"required"`
	Prenom        string   `json:"prenom" binding:"required"`
	Email         string   `json:"email" binding:"required,email"`
	Numero        string   `json:"numero" binding:"required"`
	DateNaissance string   `json:"dateNaissance" binding:"required"`
	Adresse       string   `json:"adresse"`
	MotDePasse    string   `json:"motDePasse" binding:"required,min=8"`
	Sexe          string   `json:"sexe"`
	GroupeSanguin string   `json:"groupeSanguin"`
	Medecins      []string `json:"Medecins"`
}

func (s *Server) createPatient(c *gin.Context) {
	var req createPatientRequest
	if !bindJSON(c, &req) {
		return
	}
	medecins := req.Medecins
	if len(medecins) == 0 {
		medecins = s.secretaryMedecins(c)
	}
	u := &User{
		Role:          domain.RolePatient,
		Nom:           req.Nom,
		Prenom:        req.Prenom,
		Email:         req.Email,
		Numero:        req.Numero,
		DateNaissance: req.DateNaissance,
		Adresse:       req.Adresse,
		Sexe:          req.Sexe,
		GroupeSanguin: req.GroupeSanguin,
	}
	if _, err := s.store.AddUser(u, req.MotDePasse); err != nil {
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
		return
	}
	for _, medecinID := range medecins {
		s.store.LinkPatient(medecinID, u.ID)
	}
	created, _ := s.store.UserByID(u.ID)
	c.JSON(http.StatusCreated, s.renderPatient(created))
}

func (s *Server) patientByID(c *gin.Context) {
	p, ok := s.store.UserByID(c.Param("id"))
	if !ok || p.Role != domain.RolePatient {
		notFound(c, "patient")
		return
	}
	c.JSON(http.StatusOK, s.renderPatient(p))
}

func (s *Server) updatePatient(c *gin.Context) {
	var req profileUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	p, ok := s.store.UserByID(c.Param("id"))
	if !ok || p.Role != domain.RolePatient {
		notFound(c, "patient")
		return
	}
	s.store.UpdateUser(p.ID, func(u *User) {
		applyProfileUpdate(u, &req)
	})
	c.JSON(http.StatusOK, gin.H{"message": "patient mis à jour"})
}

func (s *Server) deletePatient(c *gin.Context) {
	p, ok := s.store.UserByID(c.Param("id"))
	if !ok || p.Role != domain.RolePatient {
		notFound(c, "patient")
		return
	}
	s.store.DeleteUser(p.ID)
	c.JSON(http.StatusOK, gin.H{"message": "patient supprimé"})
}

// searchPatients matches name, first name or email, case-insensitively,
// within the secretary's roster.
func (s *Server) searchPatients(c *gin.Context) {
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	out := make([]gin.H, 0)
	for _, p := range s.secretaryPatients(c) {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Nom), q) ||
			strings.Contains(strings.ToLower(p.Prenom), q) ||
			strings.Contains(strings.ToLower(p.Email), q) {
			out = append(out, s.renderPatient(p))
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) patientsByMedecin(c *gin.Context) {
	m, ok := s.store.UserByID(c.Param("medecinId"))
	if !ok || m.Role != domain.RoleMedecin {
		notFound(c, "médecin")
		return
	}
	patients := s.store.UsersByRole(domain.RolePatient, m.Patients)
	out := make([]gin.H, 0, len(patients))
	for _, p := range patients {
		out = append(out, s.renderPatient(p))
	}
	c.JSON(http.StatusOK, gin.H{"patients": out})
}

func (s *Server) medecinsBySecretaire(c *gin.Context) {
	medecins := s.store.UsersByRole(domain.RoleMedecin, s.secretaryMedecins(c))
	out := make([]gin.H, 0, len(medecins))
	for _, m := range medecins {
		out = append(out, s.renderMedecin(m))
	}
	c.JSON(http.StatusOK, gin.H{"medecins": out})
}

func (s *Server) patientStats(c *gin.Context) {
	patients := s.secretaryPatients(c)
	monthStart := time.Now().AddDate(0, -1, 0)
	nouveaux := 0
	for _, p := range patients {
		if p.CreatedAt.After(monthStart) {
			nouveaux++
		}
	}
	c.JSON(http.StatusOK, gin.H{"total": len(patients), "nouveauxMois": nouveaux})
}

// ---- doctor's secretaries ----

func (s *Server) secretaires(c *gin.Context) {
	m, ok := s.store.UserByID(currentUserID(c))
	if !ok {
		notFound(c, "médecin")
		return
	}
	secs := s.store.UsersByRole(domain.RoleSecretaire, m.Secretaires)
	out := make([]gin.H, 0, len(secs))
	for _, sec := range secs {
		out = append(out, s.renderSecretaire(sec))
	}
	c.JSON(http.StatusOK, gin.H{"secretaires": out})
}

func (s *Server) lierSecretaire(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if !bindJSON(c, &req) {
		return
	}
	sec, ok := s.store.UserByEmail(req.Email)
	if !ok || sec.Role != domain.RoleSecretaire {
		notFound(c, "secrétaire")
		return
	}
	s.store.LinkSecretaire(currentUserID(c), sec.ID)
	linked, _ := s.store.UserByID(sec.ID)
	c.JSON(http.StatusOK, gin.H{"data": s.renderSecretaire(linked)})
}

func (s *Server) updateSecretaire(c *gin.Context) {
	var req struct {
		Nom    string `json:"nom" binding:"required"`
		Prenom string `json:"prenom" binding:"required"`
		Email  string `json:"email" binding:"required,email"`
		Numero string `json:"numero" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	sec, ok := s.store.UserByID(c.Param("id"))
	if !ok || sec.Role != domain.RoleSecretaire {
		notFound(c, "secrétaire")
		return
	}
	s.store.UpdateUser(sec.ID, func(u *User) {
		u.Nom = req.Nom
		u.Prenom = req.Prenom
		u.Email = req.Email
		u.Numero = req.Numero
	})
	c.JSON(http.StatusOK, gin.H{"message": "secrétaire mise à jour"})
}

func (s *Server) removeSecretaire(c *gin.Context) {
	sec, ok := s.store.UserByID(c.Param("id"))
	if !ok || sec.Role != domain.RoleSecretaire {
		notFound(c, "secrétaire")
		return
	}
	s.store.UnlinkSecretaire(currentUserID(c), sec.ID)
	c.JSON(http.StatusOK, gin.H{"message": "secrétaire retirée"})
}

// ---- patient-facing doctor directory ----

func (s *Server) medecins(c *gin.Context) {
	s.renderMedecinList(c, func(*User) bool { return true })
}

func (s *Server) medecinsBySpecialite(c *gin.Context) {
	specialite := strings.ToLower(c.Param("specialite"))
	s.renderMedecinList(c, func(m *User) bool {
		return strings.ToLower(m.Specialite) == specialite
	})
}

func (s *Server) medecinsByNom(c *gin.Context) {
	nom := strings.ToLower(c.Param("nom"))
	s.renderMedecinList(c, func(m *User) bool {
		return strings.Contains(strings.ToLower(m.Nom), nom) ||
			strings.Contains(strings.ToLower(m.Prenom), nom)
	})
}

func (s *Server) renderMedecinList(c *gin.Context, keep func(*User) bool) {
	out := make([]gin.H, 0)
	for _, m := range s.store.UsersByRole(domain.RoleMedecin, nil) {
		if keep(m) {
			out = append(out, s.renderMedecin(m))
		}
	}
	c.JSON(http.StatusOK, out)
}
