package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func (a *API) handleRegister(c *gin.Context) {
	var payload credentials
	if !bindJSON(c, &payload) {
		return
	}
	u, err := a.Users.Register(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": u.ID, "email": u.Email})
}

func (a *API) handleLogin(c *gin.Context) {
	var payload credentials
	if !bindJSON(c, &payload) {
		return
	}
	pair, err := a.Users.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (a *API) handleRefresh(c *gin.Context) {
	var payload refreshRequest
	if !bindJSON(c, &payload) {
		return
	}
	pair, err := a.Users.RefreshToken(c.Request.Context(), payload.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (a *API) handleLogout(c *gin.Context) {
	var payload refreshRequest
	if !bindJSON(c, &payload) {
		return
	}
	if err := a.Users.Logout(c.Request.Context(), payload.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
