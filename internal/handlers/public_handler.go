package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/trimbook/internal/domain/shop"
	"github.com/BruksfildServices01/trimbook/internal/dto"
	"github.com/BruksfildServices01/trimbook/internal/httperr"
	"github.com/BruksfildServices01/trimbook/internal/httpresp"
	"github.com/BruksfildServices01/trimbook/internal/middleware"
	ucShop "github.com/BruksfildServices01/trimbook/internal/usecase/shop"
)

// ======================================================
// HANDLER (public booking)
// ======================================================

type PublicHandler struct {
	shops *ucShop.Service
}

func NewPublicHandler(shops *ucShop.Service) *PublicHandler {
	return &PublicHandler{shops: shops}
}

// ======================================================
// REQUESTS
// ======================================================

type ClientRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type CreateAppointmentRequest struct {
	BarberName  string        `json:"barberName"`
	Client      ClientRequest `json:"client"`
	DateTime    string        `json:"dateTime"`
	ServiceType string        `json:"serviceType"`
}

type UpdateAppointmentRequest struct {
	Client      ClientRequest `json:"client"`
	DateTime    string        `json:"dateTime"`
	ServiceType string        `json:"serviceType"`
}

type BookSlotRequest struct {
	Client ClientRequest `json:"client"`
}

// ======================================================
// READS
// ======================================================

func (h *PublicHandler) Show(c *gin.Context) {
	sh, err := h.shops.ResolveBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, dto.NewPublicShop(sh))
}

func (h *PublicHandler) ListBarbers(c *gin.Context) {
	barbers, err := h.shops.ListBarbers(c.Request.Context(), c.Param("slug"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Seq(c, barbers)
}

// AvailableSlots lists the barber's open slots.
func (h *PublicHandler) AvailableSlots(c *gin.Context) {
	slots, err := h.shops.AvailableSlots(c.Request.Context(), c.Param("slug"), c.Param("barberId"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, slots)
}

// ======================================================
// BOOKING
// ======================================================

func (h *PublicHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Incomplete data for appointment.")
		return
	}

	cmd, err := domain.NewCreateAppointment(req.BarberName, req.Client.Name, req.Client.Phone, req.DateTime, req.ServiceType)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	created, err := h.shops.CreateAppointment(c.Request.Context(), middleware.Identity(c), c.Param("slug"), cmd)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, gin.H{
		"barberId":    created.BarberID,
		"appointment": created.Appointment,
		"schedule":    dto.NewPublicSchedule(created.Schedule, created.Appointment.ID),
	})
}

func (h *PublicHandler) UpdateAppointment(c *gin.Context) {
	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Incomplete data for appointment.")
		return
	}

	cmd, err := domain.NewUpdateAppointment(
		c.Param("barberId"),
		c.Param("appointmentId"),
		req.Client.Name,
		req.Client.Phone,
		req.DateTime,
		req.ServiceType,
	)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	schedule, err := h.shops.UpdateAppointment(c.Request.Context(), middleware.Identity(c), c.Param("slug"), cmd)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, dto.NewPublicSchedule(schedule, cmd.AppointmentID))
}

func (h *PublicHandler) DeleteAppointment(c *gin.Context) {
	schedule, err := h.shops.DeleteAppointment(
		c.Request.Context(),
		middleware.Identity(c),
		c.Param("slug"),
		c.Param("barberId"),
		c.Param("appointmentId"),
	)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, dto.NewPublicSchedule(schedule, ""))
}

func (h *PublicHandler) BookSlot(c *gin.Context) {
	var req BookSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Incomplete data for appointment.")
		return
	}

	cmd, err := domain.NewBookSlot(c.Param("barberId"), c.Param("appointmentId"), req.Client.Name, req.Client.Phone)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	ap, err := h.shops.BookSlot(c.Request.Context(), middleware.Identity(c), c.Param("slug"), cmd)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, ap)
}
