package httpapi

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/services"
	"github.com/gin-gonic/gin"
)

const maxBatchDelete = 500

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._ -]+`)

type batchDeleteRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

type publishRequest struct {
	Published *bool `json:"published" binding:"required"`
}

type regenerateRequest struct {
	Style string `json:"style" binding:"required"`
}

type rewriteRequest struct {
	Instructions string `json:"instructions" binding:"required"`
}

func (a *API) handleListNotes(c *gin.Context) {
	var folderID *string
	if v, ok := c.GetQuery("folderId"); ok && v != "" {
		folderID = &v
	}
	list, err := a.Notes.List(c.Request.Context(), currentUser(c), folderID, c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (a *API) handleCreateNote(c *gin.Context) {
	var payload services.NoteInput
	if !bindJSON(c, &payload) {
		return
	}
	note, err := a.Notes.Create(c.Request.Context(), currentUser(c), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (a *API) handleGetNote(c *gin.Context) {
	note, err := a.Notes.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (a *API) handleUpdateNote(c *gin.Context) {
	var patch models.NotePatch
	if !bindJSON(c, &patch) {
		return
	}
	if patch.Empty() {
		respondError(c, fmt.Errorf("%w: nothing to update", common.ErrInvalidArgument))
		return
	}
	note, err := a.Notes.Update(c.Request.Context(), currentUser(c), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (a *API) handleDeleteNote(c *gin.Context) {
	if err := a.Notes.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) handleBatchDeleteNotes(c *gin.Context) {
	var payload batchDeleteRequest
	if !bindJSON(c, &payload) {
		return
	}
	if len(payload.IDs) > maxBatchDelete {
		respondError(c, fmt.Errorf("%w: at most %d ids per request", common.ErrInvalidArgument, maxBatchDelete))
		return
	}
	n, err := a.Notes.DeleteBatch(c.Request.Context(), currentUser(c), payload.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func (a *API) handlePublishNote(c *gin.Context) {
	var payload publishRequest
	if !bindJSON(c, &payload) {
		return
	}
	token, err := a.Notes.SetPublished(c.Request.Context(), currentUser(c), c.Param("id"), *payload.Published)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := gin.H{"published": *payload.Published, "publishToken": token}
	if token != "" {
		resp["url"] = strings.TrimRight(a.publicBaseURL, "/") + "/p/" + token
	}
	c.JSON(http.StatusOK, resp)
}

func (a *API) handleRegenerateNote(c *gin.Context) {
	var payload regenerateRequest
	if !bindJSON(c, &payload) {
		return
	}
	note, err := a.AI.Regenerate(c.Request.Context(), currentUser(c), c.Param("id"), payload.Style)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (a *API) handleRewriteNote(c *gin.Context) {
	var payload rewriteRequest
	if !bindJSON(c, &payload) {
		return
	}
	note, err := a.AI.Rewrite(c.Request.Context(), currentUser(c), c.Param("id"), payload.Instructions)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (a *API) handleListStyles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"styles": a.AI.Styles()})
}

func (a *API) handleExportNote(c *gin.Context) {
	ctx := c.Request.Context()
	userID, id := currentUser(c), c.Param("id")

	note, err := a.Notes.Get(ctx, userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	pdf, err := a.Notes.ExportPDF(ctx, userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	name := strings.TrimSpace(unsafeFilename.ReplaceAllString(note.Title, ""))
	if name == "" {
		name = "note"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, name))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
