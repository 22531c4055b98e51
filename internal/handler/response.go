package handler

import "github.com/actuallystonmai/country-directory/internal/view"

type SessionResponse struct {
	SessionID string    `json:"session_id"`
	Page      view.Page `json:"page"`
}

type FilterRequest struct {
	Gender string `json:"gender"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
