package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/trimbook/internal/httperr"
	"github.com/BruksfildServices01/trimbook/internal/middleware"
	"github.com/BruksfildServices01/trimbook/internal/realtime"
	ucShop "github.com/BruksfildServices01/trimbook/internal/usecase/shop"
)

type RealtimeHandler struct {
	hub   *realtime.Hub
	shops *ucShop.Service
}

func NewRealtimeHandler(hub *realtime.Hub, shops *ucShop.Service) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, shops: shops}
}

// Connect binds the socket to the shop the caller owns.
func (h *RealtimeHandler) Connect(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	sh, err := h.shops.ResolveByOwner(c.Request.Context(), userID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	if sh == nil {
		httperr.Respond(c, httperr.Forbidden("no_barbershop", "Create a barbershop before connecting."))
		return
	}

	// upgrade failures are answered by the upgrader itself
	_ = h.hub.Serve(c.Writer, c.Request, userID, sh.Slug)
}
