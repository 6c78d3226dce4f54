package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/trimbook/internal/billing"
	"github.com/BruksfildServices01/trimbook/internal/httperr"
	"github.com/BruksfildServices01/trimbook/internal/httpresp"
)

type BillingHandler struct {
	sync *billing.MercadoPagoSync
}

// NewBillingHandler takes a nil sync when no provider is configured.
func NewBillingHandler(sync *billing.MercadoPagoSync) *BillingHandler {
	return &BillingHandler{sync: sync}
}

type paymentNotification struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Webhook receives Mercado Pago notifications. The provider sends either
// a JSON body or type/id query parameters; other topics are acknowledged
// and ignored.
func (h *BillingHandler) Webhook(c *gin.Context) {
	if h.sync == nil {
		httperr.Respond(c, httperr.Unavailable("billing_not_configured", nil))
		return
	}

	var n paymentNotification
	// query-style notifications carry no body; the fallback below covers them
	_ = c.ShouldBindJSON(&n)

	if n.Type == "" {
		n.Type = c.DefaultQuery("type", c.Query("topic"))
	}
	if n.Data.ID == "" {
		n.Data.ID = c.DefaultQuery("data.id", c.Query("id"))
	}

	if n.Type != "payment" {
		httpresp.OK(c, gin.H{"status": "ignored"})
		return
	}

	paymentID, err := strconv.Atoi(n.Data.ID)
	if err != nil {
		httperr.BadRequest(c, "invalid_payment_id", "Invalid payment id.")
		return
	}

	p, err := h.sync.HandleNotification(c.Request.Context(), paymentID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, gin.H{"status": p.Status})
}
