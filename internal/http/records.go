package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medexa/internal/domain"
	"medexa/internal/service"
)

type createMedicineRequest struct {
	Name      string   `json:"name" binding:"required"`
	Dosage    string   `json:"dosage" binding:"required"`
	Duration  string   `json:"duration"`
	Form      string   `json:"type"`
	Meal      string   `json:"meal"`
	Frequency string   `json:"frequency"`
	Times     []string `json:"notification_times"`
}

type replaceTimesRequest struct {
	Times []string `json:"notification_times"`
}

type createHealthLogRequest struct {
	Type       string    `json:"type" binding:"required"`
	Value      string    `json:"value" binding:"required"`
	Notes      string    `json:"notes"`
	RecordedAt time.Time `json:"recorded_at"`
}

type createAppointmentRequest struct {
	Doctor      string    `json:"doctor" binding:"required"`
	Specialty   string    `json:"specialty"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

type updateAppointmentRequest struct {
	Status string `json:"status" binding:"required"`
}

type MedicineResponse struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	Dosage            string   `json:"dosage"`
	Duration          string   `json:"duration"`
	Type              string   `json:"type"`
	Meal              string   `json:"meal"`
	Frequency         string   `json:"frequency"`
	NotificationTimes []string `json:"notification_times"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

type HealthLogResponse struct {
	ID         int64  `json:"id"`
	Type       string `json:"type"`
	Value      string `json:"value"`
	Notes      string `json:"notes"`
	RecordedAt string `json:"recorded_at"`
}

type AppointmentResponse struct {
	ID          int64  `json:"id"`
	Doctor      string `json:"doctor"`
	Specialty   string `json:"specialty"`
	ScheduledAt string `json:"scheduled_at"`
	Status      string `json:"status"`
}

func (h *Handler) listMedicines(c *gin.Context) {
	medicines, err := h.medicines.List(c.Request.Context(), currentUID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]MedicineResponse, len(medicines))
	for i := range medicines {
		resp[i] = medicineToResponse(medicines[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createMedicine(c *gin.Context) {
	var req createMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	medicine, err := h.medicines.Create(c.Request.Context(), currentUID(c), service.MedicineInput{
		Name:      req.Name,
		Dosage:    req.Dosage,
		Duration:  req.Duration,
		Form:      domain.MedicineForm(req.Form),
		Meal:      domain.MealTiming(req.Meal),
		Frequency: domain.Frequency(req.Frequency),
		Times:     req.Times,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, medicineToResponse(*medicine))
}

func (h *Handler) getMedicine(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	medicine, err := h.medicines.Get(c.Request.Context(), currentUID(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, medicineToResponse(*medicine))
}

func (h *Handler) replaceMedicineTimes(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req replaceTimesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	medicine, err := h.medicines.ReplaceTimes(c.Request.Context(), currentUID(c), id, req.Times)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, medicineToResponse(*medicine))
}

func (h *Handler) deleteMedicine(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.medicines.Delete(c.Request.Context(), currentUID(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) listHealthLogs(c *gin.Context) {
	logs, err := h.healthLogs.List(c.Request.Context(), currentUID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]HealthLogResponse, len(logs))
	for i := range logs {
		resp[i] = healthLogToResponse(logs[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createHealthLog(c *gin.Context) {
	var req createHealthLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log, err := h.healthLogs.Create(c.Request.Context(), currentUID(c), service.HealthLogInput{
		Type:       req.Type,
		Value:      req.Value,
		Notes:      req.Notes,
		RecordedAt: req.RecordedAt,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, healthLogToResponse(*log))
}

func (h *Handler) deleteHealthLog(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.healthLogs.Delete(c.Request.Context(), currentUID(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) listAppointments(c *gin.Context) {
	appts, err := h.appointments.List(c.Request.Context(), currentUID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]AppointmentResponse, len(appts))
	for i := range appts {
		resp[i] = appointmentToResponse(appts[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createAppointment(c *gin.Context) {
	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	appt, err := h.appointments.Create(c.Request.Context(), currentUID(c), service.AppointmentInput{
		Doctor:      req.Doctor,
		Specialty:   req.Specialty,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appointmentToResponse(*appt))
}

func (h *Handler) updateAppointment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	appt, err := h.appointments.SetStatus(c.Request.Context(), currentUID(c), id, domain.AppointmentStatus(req.Status))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointmentToResponse(*appt))
}

func (h *Handler) deleteAppointment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.appointments.Delete(c.Request.Context(), currentUID(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func medicineToResponse(m domain.Medicine) MedicineResponse {
	resp := MedicineResponse{
		ID:                m.ID,
		Name:              m.Name,
		Dosage:            m.Dosage,
		Duration:          m.Duration,
		Type:              string(m.Form),
		Meal:              string(m.Meal),
		Frequency:         string(m.Frequency),
		NotificationTimes: make([]string, len(m.Times)),
		CreatedAt:         m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         m.UpdatedAt.Format(time.RFC3339),
	}
	for i := range m.Times {
		resp.NotificationTimes[i] = m.Times[i].Label
	}
	return resp
}

func healthLogToResponse(l domain.HealthLog) HealthLogResponse {
	return HealthLogResponse{
		ID:         l.ID,
		Type:       l.Type,
		Value:      l.Value,
		Notes:      l.Notes,
		RecordedAt: l.RecordedAt.Format(time.RFC3339),
	}
}

func appointmentToResponse(a domain.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID,
		Doctor:      a.Doctor,
		Specialty:   a.Specialty,
		ScheduledAt: a.ScheduledAt.Format(time.RFC3339),
		Status:      string(a.Status),
	}
}
