package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/combat-tracker/pkg/catalog"
	"github.com/jwebster45206/combat-tracker/pkg/encounter"
)

// CatalogResponse lists the status and icon presets.
type CatalogResponse struct {
	Statuses []encounter.StatusTemplate `json:"statuses"`
	Icons    map[string]string          `json:"icons"`
}

type CatalogHandler struct {
	logger *slog.Logger
}

func NewCatalogHandler(logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{logger: logger}
}

// ServeHTTP handles GET /v1/catalog
func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		if err := json.NewEncoder(w).Encode(ErrorResponse{
			Error: "Method not allowed. Only GET is supported.",
		}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	response := CatalogResponse{
		Statuses: catalog.Statuses(),
		Icons:    catalog.Icons(),
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode catalog response", "error", err)
	}
}
