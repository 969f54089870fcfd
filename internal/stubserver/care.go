package stubserver

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Treatment, prescription, medication and notification handlers.

func (s *Server) traitements(c *gin.Context) {
	list := s.store.TraitementsByMedecin(currentUserID(c))
	out := make([]gin.H, 0, len(list))
	for _, t := range list {
		out = append(out, s.renderTraitement(t))
	}
	c.JSON(http.StatusOK, out)
}

type traitementRequest struct {
	Nom          string   `json:"nom" binding:"required"`
	PatientID    string   `json:"patient" binding:"required"`
	Medicaments  []string `json:"medicaments" binding:"required,min=1"`
	Observations string   `json:"observations"`
}

func (s *Server) createTraitement(c *gin.Context) {
	var req traitementRequest
	if !bindJSON(c, &req) {
		return
	}
	t := s.store.AddTraitement(&Traitement{
		Nom:          req.Nom,
		Observations: req.Observations,
		PatientID:    req.PatientID,
		MedecinID:    currentUserID(c),
		Medicaments:  req.Medicaments,
	})
	c.JSON(http.StatusCreated, s.renderTraitement(t))
}

func (s *Server) updateTraitement(c *gin.Context) {
	var req traitementRequest
	if !bindJSON(c, &req) {
		return
	}
	ok := s.store.UpdateTraitement(c.Param("id"), func(t *Traitement) {
		t.Nom = req.Nom
		t.Observations = req.Observations
		t.PatientID = req.PatientID
		t.Medicaments = req.Medicaments
	})
	if !ok {
		notFound(c, "traitement")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "traitement mis à jour"})
}

func (s *Server) deleteTraitement(c *gin.Context) {
	if !s.store.DeleteTraitement(c.Param("id")) {
		notFound(c, "traitement")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "traitement supprimé"})
}

// createOrdonnance accepts multipart form data: destination (patient id),
// traitement (treatment id) and an optional signatureElectronique file.
func (s *Server) createOrdonnance(c *gin.Context) {
	patientID := c.PostForm("destination")
	traitementID := c.PostForm("traitement")
	if patientID == "" || traitementID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "destination et traitement sont requis"})
		return
	}
	if _, ok := s.store.TraitementByID(traitementID); !ok {
		notFound(c, "traitement")
		return
	}

	signature := ""
	if file, err := c.FormFile("signatureElectronique"); err == nil {
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "signature illisible"})
			return
		}
		defer f.Close()
		n, _ := io.Copy(io.Discard, f)
		// The real backend uploads the file; the stub only records that
		// one was attached.
		signature = fmt.Sprintf("%s (%d octets)", file.Filename, n)
	}

	o := s.store.AddOrdonnance(&Ordonnance{
		MedecinID:    currentUserID(c),
		PatientID:    patientID,
		TraitementID: traitementID,
		Signature:    signature,
	})
	c.JSON(http.StatusCreated, s.renderOrdonnance(o))
}

func (s *Server) ordonnancesByMedecin(c *gin.Context) {
	medecinID := currentUserID(c)
	s.renderOrdonnanceList(c, func(o *Ordonnance) bool {
		return o.MedecinID == medecinID
	})
}

func (s *Server) ordonnancesByPatient(c *gin.Context) {
	patientID := currentUserID(c)
	s.renderOrdonnanceList(c, func(o *Ordonnance) bool {
		return o.PatientID == patientID
	})
}

func (s *Server) renderOrdonnanceList(c *gin.Context, keep func(*Ordonnance) bool) {
	list := s.store.OrdonnancesWhere(keep)
	out := make([]gin.H, 0, len(list))
	for _, o := range list {
		out = append(out, s.renderOrdonnance(o))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) ordonnanceByID(c *gin.Context) {
	o, ok := s.store.OrdonnanceByID(c.Param("id"))
	if !ok || o.PatientID != currentUserID(c) {
		notFound(c, "ordonnance")
		return
	}
	c.JSON(http.StatusOK, s.renderOrdonnance(o))
}

// ---- medicaments ----

func (s *Server) medicaments(c *gin.Context) {
	list := s.store.MedicamentsByPatient(currentUserID(c))
	out := make([]gin.H, 0, len(list))
	for _, m := range list {
		out = append(out, renderMedicament(m))
	}
	c.JSON(http.StatusOK, out)
}

type medicamentRequest struct {
	NomCommercial      string   `json:"nomCommercial" binding:"required"`
	Dosage             string   `json:"dosage" binding:"required"`
	Frequence          int      `json:"frequence" binding:"required,gt=0"`
	VoieAdministration string   `json:"voieAdministration" binding:"required"`
	DateDebut          string   `json:"dateDebut" binding:"required"`
	DateFin            string   `json:"dateFin" binding:"required"`
	Horaires           []string `json:"horaires"`
}

func (s *Server) addMedicament(c *gin.Context) {
	var req medicamentRequest
	if !bindJSON(c, &req) {
		return
	}
	m := s.store.AddMedicament(&Medicament{
		PatientID:          currentUserID(c),
		NomCommercial:      req.NomCommercial,
		Dosage:             req.Dosage,
		Frequence:          req.Frequence,
		VoieAdministration: req.VoieAdministration,
		DateDebut:          req.DateDebut,
		DateFin:            req.DateFin,
		Horaires:           req.Horaires,
	})
	c.JSON(http.StatusCreated, gin.H{
		"message":    "médicament ajouté",
		"medicament": renderMedicament(m),
	})
}

// ---- notifications ----

func (s *Server) notifications(c *gin.Context) {
	list := s.store.NotificationsByPatient(currentUserID(c))
	out := make([]gin.H, 0, len(list))
	for _, n := range list {
		out = append(out, s.renderNotification(n))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) markNotificationRead(c *gin.Context) {
	if !s.store.MarkNotificationRead(c.Param("id")) {
		notFound(c, "notification")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification lue"})
}

// generateNotifications builds one reminder per scheduled time of the
// medication.
func (s *Server) generateNotifications(c *gin.Context) {
	m, ok := s.store.MedicamentByID(c.Param("id"))
	if !ok {
		notFound(c, "médicament")
		return
	}
	for _, horaire := range m.Horaires {
		s.store.AddNotification(&Notification{
			PatientID:    m.PatientID,
			Contenu:      "Rappel: " + m.NomCommercial + " (" + m.Dosage + ")",
			Type:         "rappel",
			Horaire:      horaire,
			MedicamentID: m.ID,
		})
	}
	c.JSON(http.StatusCreated, gin.H{"message": "notifications générées"})
}

type notificationPushRequest struct {
	PatientID string `json:"patientId" binding:"required"`
	Type      string `json:"type" binding:"required,oneof=rdv ordonnance info urgence"`
	Titre     string `json:"titre" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

func (s *Server) pushNotification(c *gin.Context) {
	var req notificationPushRequest
	if !bindJSON(c, &req) {
		return
	}
	s.push(req)
	c.JSON(http.StatusCreated, gin.H{"message": "notification envoyée"})
}

func (s *Server) pushBulkNotification(c *gin.Context) {
	var req struct {
		PatientIDs   []string `json:"patientIds" binding:"required,min=1"`
		Notification struct {
			Type    string `json:"type" binding:"required,oneof=rdv ordonnance info urgence"`
			Titre   string `json:"titre" binding:"required"`
			Message string `json:"message" binding:"required"`
		} `json:"notification"`
	}
	if !bindJSON(c, &req) {
		return
	}
	for _, id := range req.PatientIDs {
		s.push(notificationPushRequest{
			PatientID: id,
			Type:      req.Notification.Type,
			Titre:     req.Notification.Titre,
			Message:   req.Notification.Message,
		})
	}
	c.JSON(http.StatusCreated, gin.H{"message": "notifications envoyées"})
}

func (s *Server) push(req notificationPushRequest) {
	s.store.AddNotification(&Notification{
		PatientID: req.PatientID,
		Contenu:   req.Titre + ": " + req.Message,
		Type:      req.Type,
	})
}
