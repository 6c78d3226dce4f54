package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/trimbook/internal/domain/shop"
	"github.com/BruksfildServices01/trimbook/internal/httperr"
	"github.com/BruksfildServices01/trimbook/internal/httpresp"
	"github.com/BruksfildServices01/trimbook/internal/middleware"
	ucShop "github.com/BruksfildServices01/trimbook/internal/usecase/shop"
)

// ======================================================
// HANDLER (owner routes)
// ======================================================

type BarbershopHandler struct {
	shops *ucShop.Service
}

func NewBarbershopHandler(shops *ucShop.Service) *BarbershopHandler {
	return &BarbershopHandler{shops: shops}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBarbershopRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	// URL is the older name of slug.
	URL string `json:"url"`
}

type BarberRequest struct {
	BarberName string `json:"barberName"`
}

type OpenSlotRequest struct {
	DateTime    string `json:"dateTime"`
	ServiceType string `json:"serviceType"`
}

// ======================================================
// SHOP
// ======================================================

func (h *BarbershopHandler) Create(c *gin.Context) {
	var req CreateBarbershopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid body.")
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = req.URL
	}

	sh, err := h.shops.CreateShop(c.Request.Context(), middleware.Identity(c), ucShop.CreateShopInput{
		Name: req.Name,
		Slug: slug,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, sh)
}

// Get returns the full shop, client contacts included, to its owner.
func (h *BarbershopHandler) Get(c *gin.Context) {
	sh, err := h.shops.OwnerView(c.Request.Context(), middleware.Identity(c), c.Param("slug"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, sh)
}

// ======================================================
// BARBERS
// ======================================================

func (h *BarbershopHandler) AddBarber(c *gin.Context) {
	var req BarberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid body.")
		return
	}

	barbers, err := h.shops.AddBarber(c.Request.Context(), middleware.Identity(c), c.Param("slug"), req.BarberName)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, httpresp.ListResponse[domain.Barber]{Data: barbers, Total: len(barbers)})
}

func (h *BarbershopHandler) RemoveBarber(c *gin.Context) {
	var req BarberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid body.")
		return
	}

	removed, err := h.shops.RemoveBarber(c.Request.Context(), middleware.Identity(c), c.Param("slug"), req.BarberName)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, gin.H{"removed": removed})
}

func (h *BarbershopHandler) OpenSlot(c *gin.Context) {
	var req OpenSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid body.")
		return
	}

	cmd, err := domain.NewOpenSlot(c.Param("barberId"), req.DateTime, req.ServiceType)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	slot, err := h.shops.OpenSlot(c.Request.Context(), middleware.Identity(c), c.Param("slug"), cmd)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, slot)
}
