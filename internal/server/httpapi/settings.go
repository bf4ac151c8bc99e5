package httpapi

import (
	"net/http"

	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
	"github.com/gin-gonic/gin"
)

func (a *API) handleGetSettings(c *gin.Context) {
	s, err := a.Settings.Get(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (a *API) handleUpdateSettings(c *gin.Context) {
	var patch models.UserSettings
	if !bindJSON(c, &patch) {
		return
	}
	s, err := a.Settings.Update(c.Request.Context(), currentUser(c), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
