package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/trimbook/internal/audit"
	"github.com/BruksfildServices01/trimbook/internal/httperr"
	"github.com/BruksfildServices01/trimbook/internal/httpresp"
	"github.com/BruksfildServices01/trimbook/internal/middleware"
	ucShop "github.com/BruksfildServices01/trimbook/internal/usecase/shop"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	shops *ucShop.Service
	logs  *audit.Logger
	log   *zap.Logger
}

func NewAuditLogsHandler(shops *ucShop.Service, logs *audit.Logger, log *zap.Logger) *AuditLogsHandler {
	return &AuditLogsHandler{shops: shops, logs: logs, log: log}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	// only the owner reads a shop's trail
	sh, err := h.shops.OwnerView(c.Request.Context(), middleware.Identity(c), c.Param("slug"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	f := audit.Filter{
		Action: c.Query("action"),
		Entity: c.Query("entity"),
	}
	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))

	if from, err := time.Parse(time.DateOnly, c.Query("from")); err == nil {
		f.From = &from
	}
	if to, err := time.Parse(time.DateOnly, c.Query("to")); err == nil {
		end := to.Add(24 * time.Hour)
		f.To = &end
	}

	page, err := h.logs.List(c.Request.Context(), sh.Slug, f)
	if err != nil {
		h.log.Error("audit list failed", zap.String("slug", sh.Slug), zap.Error(err))
		httperr.Internal(c, "audit_list_failed", "Could not list audit logs.")
		return
	}

	httpresp.OK(c, page)
}
