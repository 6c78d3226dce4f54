package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/trimbook/internal/dto"
	"github.com/BruksfildServices01/trimbook/internal/httperr"
	"github.com/BruksfildServices01/trimbook/internal/httpresp"
	ucIdentity "github.com/BruksfildServices01/trimbook/internal/usecase/identity"
)

type AuthHandler struct {
	identity *ucIdentity.Service
}

func NewAuthHandler(identity *ucIdentity.Service) *AuthHandler {
	return &AuthHandler{identity: identity}
}

// --------- Requests ---------

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Name, valid e-mail and password are required.")
		return
	}

	res, err := h.identity.Register(c.Request.Context(), ucIdentity.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, gin.H{
		"token": res.Token,
		"user":  dto.NewUser(res.User),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "E-mail and password are required.")
		return
	}

	res, err := h.identity.Login(c.Request.Context(), ucIdentity.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"token":        res.Token,
		"user":         dto.NewUser(res.User),
		"barbershop":   res.Shop,
		"requiresShop": res.RequiresShop,
	})
}
