package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/actuallystonmai/country-directory/internal/domain"
	"github.com/actuallystonmai/country-directory/internal/view"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

//go:embed templates/page.html
var templates embed.FS

var pageTemplate = template.Must(template.ParseFS(templates, "templates/page.html"))

type pageData struct {
	SessionID string
	Page      view.Page
	Filters   []domain.GenderFilter
}

// GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Mount(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/s/"+sess.ID, http.StatusSeeOther)
}

// GET /s/{sessionID}
func (h *Handler) RenderPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	page, err := h.service.Page(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	data := pageData{SessionID: id, Page: page, Filters: domain.GenderFilters}
	if err := h.pages.Execute(&buf, data); err != nil {
		h.log.Error("render_failed", zap.String("session", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// POST /s/{sessionID}/toggle
func (h *Handler) SubmitToggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Invalid form")
		return
	}
	if _, err := h.service.ToggleCountry(r.Context(), id, r.PostForm.Get("country")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.backToPage(w, r, id)
}

// POST /s/{sessionID}/filter
func (h *Handler) SubmitFilter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Invalid form")
		return
	}
	filter, err := domain.ParseGenderFilter(r.PostForm.Get("gender"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if _, err := h.service.SetFilter(r.Context(), id, filter); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.backToPage(w, r, id)
}

// POST /s/{sessionID}/reload
func (h *Handler) SubmitReload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if _, err := h.service.Reload(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.backToPage(w, r, id)
}

func (h *Handler) backToPage(w http.ResponseWriter, r *http.Request, id string) {
	http.Redirect(w, r, "/s/"+id, http.StatusSeeOther)
}
