package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/trimbook/internal/dto"
	"github.com/BruksfildServices01/trimbook/internal/httperr"
	"github.com/BruksfildServices01/trimbook/internal/httpresp"
	"github.com/BruksfildServices01/trimbook/internal/middleware"
	ucIdentity "github.com/BruksfildServices01/trimbook/internal/usecase/identity"
)

type MeHandler struct {
	identity *ucIdentity.Service
}

func NewMeHandler(identity *ucIdentity.Service) *MeHandler {
	return &MeHandler{identity: identity}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	profile, err := h.identity.Me(c.Request.Context(), userID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"user":         dto.NewUser(profile.User),
		"barbershop":   profile.Shop,
		"requiresShop": profile.RequiresShop,
	})
}
