package handler

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/actuallystonmai/country-directory/internal/domain"
	"github.com/go-chi/chi/v5"
)

// POST /api/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Mount(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respondPage(w, r, http.StatusCreated, sess.ID)
}

// GET /api/sessions/{sessionID}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.respondPage(w, r, http.StatusOK, chi.URLParam(r, "sessionID"))
}

// DELETE /api/sessions/{sessionID}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Unmount(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/sessions/{sessionID}/countries/{country}/toggle
func (h *Handler) ToggleCountry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	country, err := url.PathUnescape(chi.URLParam(r, "country"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid country parameter")
		return
	}

	if _, err := h.service.ToggleCountry(r.Context(), id, country); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respondPage(w, r, http.StatusOK, id)
}

// PUT /api/sessions/{sessionID}/filter
func (h *Handler) SetFilter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	var req FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Body must be {\"gender\": \"all|male|female\"}")
		return
	}
	filter, err := domain.ParseGenderFilter(req.Gender)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if _, err := h.service.SetFilter(r.Context(), id, filter); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respondPage(w, r, http.StatusOK, id)
}

// POST /api/sessions/{sessionID}/reload
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if _, err := h.service.Reload(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respondPage(w, r, http.StatusAccepted, id)
}

func (h *Handler) respondPage(w http.ResponseWriter, r *http.Request, status int, id string) {
	page, err := h.service.Page(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, status, SessionResponse{SessionID: id, Page: page})
}
