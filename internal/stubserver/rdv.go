package stubserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Yassi1511/pfemedical-go/internal/domain"
)

// Appointment handlers. Cancellation is a status change; only DELETE
// removes the record.

func (s *Server) rdvAujourdhui(c *gin.Context) {
	medecinID := currentUserID(c)
	today := time.Now().Format(domain.DateLayout)
	list := s.store.RendezVousWhere(func(r *RendezVous) bool {
		return r.MedecinID == medecinID && r.Date == today
	})
	c.JSON(http.StatusOK, s.renderRendezVousList(list))
}

func (s *Server) rdvByMedecin(c *gin.Context) {
	medecinID := currentUserID(c)
	list := s.store.RendezVousWhere(func(r *RendezVous) bool {
		return r.MedecinID == medecinID
	})
	c.JSON(http.StatusOK, s.renderRendezVousList(list))
}

func (s *Server) rdvConsulter(c *gin.Context) {
	r, ok := s.store.RendezVousByID(c.Param("id"))
	if !ok {
		notFound(c, "rendez-vous")
		return
	}
	if r.MedecinID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"message": "accès refusé"})
		return
	}
	if !r.Statut.CanTransitionTo(domain.StatutConsulte) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "transition de statut invalide"})
		return
	}
	s.store.UpdateRendezVous(r.ID, func(r *RendezVous) {
		r.Statut = domain.StatutConsulte
	})
	c.JSON(http.StatusOK, gin.H{"message": "rendez-vous consulté"})
}

func (s *Server) rdvBySecretaire(c *gin.Context) {
	date := c.Query("date")
	sec, ok := s.store.UserByID(currentUserID(c))
	if !ok {
		notFound(c, "utilisateur")
		return
	}
	medecins := make(map[string]bool, len(sec.Medecins))
	for _, id := range sec.Medecins {
		medecins[id] = true
	}
	list := s.store.RendezVousWhere(func(r *RendezVous) bool {
		if !medecins[r.MedecinID] {
			return false
		}
		return date == "" || r.Date == date
	})
	out := make([]gin.H, 0, len(list))
	for _, r := range list {
		out = append(out, s.renderRendezVousFlat(r))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) rdvByID(c *gin.Context) {
	r, ok := s.store.RendezVousByID(c.Param("id"))
	if !ok {
		notFound(c, "rendez-vous")
		return
	}
	c.JSON(http.StatusOK, s.renderRendezVous(r))
}

type rendezVousRequest struct {
	PatientID   string `json:"patientId" binding:"required"`
	MedecinID   string `json:"medecinId" binding:"required"`
	Date        string `json:"date" binding:"required"`
	Heure       string `json:"heure" binding:"required"`
	Statut      string `json:"statut"`
	Commentaire string `json:"commentaire"`
}

func (s *Server) createRendezVous(c *gin.Context) {
	var req rendezVousRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, ok := s.store.UserByID(req.MedecinID); !ok {
		notFound(c, "médecin")
		return
	}
	if _, ok := s.store.UserByID(req.PatientID); !ok {
		notFound(c, "patient")
		return
	}
	statut := domain.NormalizeStatut(req.Statut)
	if req.Statut == "" {
		statut = domain.StatutEnAttente
	}
	r, err := s.store.CreateRendezVousIfFree(&RendezVous{
		MedecinID:   req.MedecinID,
		PatientID:   req.PatientID,
		Date:        req.Date,
		Heure:       req.Heure,
		Statut:      statut,
		Commentaire: req.Commentaire,
	})
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, s.renderRendezVous(r))
}

func (s *Server) updateRendezVous(c *gin.Context) {
	var req rendezVousRequest
	if !bindJSON(c, &req) {
		return
	}
	r, ok, err := s.store.RescheduleRendezVous(c.Param("id"), func(r *RendezVous) {
		r.MedecinID = req.MedecinID
		r.PatientID = req.PatientID
		r.Date = req.Date
		r.Heure = req.Heure
		if req.Statut != "" {
			r.Statut = domain.NormalizeStatut(req.Statut)
		}
		r.Commentaire = req.Commentaire
	})
	if !ok {
		notFound(c, "rendez-vous")
		return
	}
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.renderRendezVous(r))
}

func (s *Server) deleteRendezVous(c *gin.Context) {
	if !s.store.DeleteRendezVous(c.Param("id")) {
		notFound(c, "rendez-vous")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rendez-vous supprimé"})
}

func (s *Server) cancelRendezVous(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	// Reason is optional, an empty body is accepted.
	_ = c.ShouldBindJSON(&req)
	s.cancel(c, req.Reason)
}

func (s *Server) annulerAsPatient(c *gin.Context) {
	s.cancel(c, "")
}

func (s *Server) cancel(c *gin.Context, reason string) {
	r, ok := s.store.RendezVousByID(c.Param("id"))
	if !ok {
		notFound(c, "rendez-vous")
		return
	}
	if !r.Statut.CanTransitionTo(domain.StatutAnnule) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "transition de statut invalide"})
		return
	}
	s.store.UpdateRendezVous(r.ID, func(r *RendezVous) {
		r.Statut = domain.StatutAnnule
		if reason != "" {
			r.Commentaire = reason
		}
	})
	c.JSON(http.StatusOK, gin.H{"message": "rendez-vous annulé"})
}

func (s *Server) disponibilite(c *gin.Context) {
	medecinID := c.Query("medecinId")
	date := c.Query("date")
	heure := c.Query("heure")
	if medecinID == "" || date == "" || heure == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "medecinId, date et heure sont requis"})
		return
	}
	taken := s.store.SlotTaken(medecinID, date, heure, "")
	c.JSON(http.StatusOK, gin.H{"disponible": !taken})
}

func (s *Server) addCommentaire(c *gin.Context) {
	var req struct {
		Commentaire string `json:"commentaire" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	r, ok := s.store.RendezVousByID(c.Param("id"))
	if !ok {
		notFound(c, "rendez-vous")
		return
	}
	if r.PatientID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"message": "accès refusé"})
		return
	}
	s.store.UpdateRendezVous(r.ID, func(r *RendezVous) {
		r.Commentaire = req.Commentaire
	})
	c.JSON(http.StatusOK, gin.H{"message": "commentaire ajouté"})
}

func (s *Server) rdvByPatient(c *gin.Context) {
	patientID := currentUserID(c)
	list := s.store.RendezVousWhere(func(r *RendezVous) bool {
		return r.PatientID == patientID
	})
	c.JSON(http.StatusOK, s.renderRendezVousList(list))
}

func (s *Server) rdvStats(c *gin.Context) {
	start, end := c.Query("start"), c.Query("end")
	list := s.store.RendezVousWhere(func(r *RendezVous) bool {
		if start != "" && r.Date < start {
			return false
		}
		if end != "" && r.Date > end {
			return false
		}
		return true
	})
	stats := gin.H{"total": len(list)}
	var enAttente, confirmes, consultes, annules int
	for _, r := range list {
		switch r.Statut {
		case domain.StatutEnAttente:
			enAttente++
		case domain.StatutConfirme:
			confirmes++
		case domain.StatutConsulte:
			consultes++
		case domain.StatutAnnule:
			annules++
		}
	}
	stats["enAttente"] = enAttente
	stats["confirmes"] = confirmes
	stats["consultes"] = consultes
	stats["annules"] = annules
	c.JSON(http.StatusOK, stats)
}

func (s *Server) renderRendezVousList(list []*RendezVous) []gin.H {
	out := make([]gin.H, 0, len(list))
	for _, r := range list {
		out = append(out, s.renderRendezVous(r))
	}
	return out
}
