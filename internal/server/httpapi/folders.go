package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type folderPayload struct {
	Name string `json:"name" binding:"required"`
}

func (a *API) handleListFolders(c *gin.Context) {
	folders, err := a.Folders.List(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, folders)
}

func (a *API) handleCreateFolder(c *gin.Context) {
	var payload folderPayload
	if !bindJSON(c, &payload) {
		return
	}
	folder, err := a.Folders.Create(c.Request.Context(), currentUser(c), payload.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, folder)
}

func (a *API) handleRenameFolder(c *gin.Context) {
	var payload folderPayload
	if !bindJSON(c, &payload) {
		return
	}
	folder, err := a.Folders.Rename(c.Request.Context(), currentUser(c), c.Param("id"), payload.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, folder)
}

func (a *API) handleDeleteFolder(c *gin.Context) {
	if err := a.Folders.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
