package httpapi

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type publicPage struct {
	Title      string
	CreatedAt  time.Time
	Paragraphs []string
}

func (a *API) handlePublicNote(c *gin.Context) {
	note, err := a.Notes.GetPublished(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (a *API) handlePublicPage(c *gin.Context) {
	note, err := a.Notes.GetPublished(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			renderPage(c, http.StatusNotFound, "not_found.html", nil)
			return
		}
		respondError(c, err)
		return
	}

	page := publicPage{Title: note.Title, CreatedAt: note.CreatedAt}
	for _, p := range strings.Split(note.Content, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			page.Paragraphs = append(page.Paragraphs, p)
		}
	}
	renderPage(c, http.StatusOK, "public_note.html", page)
}

func renderPage(c *gin.Context, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		respondError(c, err)
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
