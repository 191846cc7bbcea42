package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/combat-tracker/pkg/roster"
)

// PCSummary is the list view of a stored party member.
type PCSummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Class           string `json:"class,omitempty"`
	Level           int    `json:"level,omitempty"`
	Race            string `json:"race,omitempty"`
	Icon            string `json:"icon,omitempty"`
	Ally            bool   `json:"ally,omitempty"`
	HP              int    `json:"hp"`
	MaxHP           int    `json:"max_hp"`
	AC              int    `json:"ac"`
	InitiativeBonus int    `json:"initiative_bonus"`
}

type PCHandler struct {
	log    *slog.Logger
	source roster.Source
}

func NewPCHandler(log *slog.Logger, source roster.Source) *PCHandler {
	return &PCHandler{
		log:    log,
		source: source,
	}
}

func (h *PCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if r.URL.Path == "/v1/pcs" || r.URL.Path == "/v1/pcs/" {
			h.ListPCs(w, r)
		} else {
			h.handleGet(w, r)
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ListPCs lists all available PC files
func (h *PCHandler) ListPCs(w http.ResponseWriter, r *http.Request) {
	pcIDs, err := h.source.ListPCs(r.Context())
	if err != nil {
		h.log.Error("Failed to list PCs", "error", err)
		http.Error(w, "Failed to list PCs", http.StatusInternalServerError)
		return
	}

	// Initialize as empty slice instead of nil
	pcList := make([]PCSummary, 0, len(pcIDs))
	for _, pcID := range pcIDs {
		spec, err := h.source.GetPCSpec(r.Context(), pcID)
		if err != nil {
			h.log.Warn("Failed to load PC spec", "error", err, "id", pcID)
			continue
		}
		pc, err := roster.NewPCFromSpec(spec)
		if err != nil {
			h.log.Warn("Invalid PC spec", "error", err, "id", pcID)
			continue
		}
		pcList = append(pcList, summarize(pc))
	}

	h.writeJSON(w, pcList)
}

func (h *PCHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/v1/pcs/"))
	if id == "" {
		http.Error(w, "PC ID is required in URL path (e.g., /v1/pcs/aldo)", http.StatusBadRequest)
		return
	}

	// Security: prevent directory traversal
	if strings.Contains(id, "..") || strings.Contains(id, "/") {
		http.Error(w, "Invalid PC ID", http.StatusBadRequest)
		return
	}

	spec, err := h.source.GetPCSpec(r.Context(), id)
	if err != nil {
		h.log.Warn("Failed to load PC spec", "error", err, "id", id)
		http.Error(w, "PC not found", http.StatusNotFound)
		return
	}
	pc, err := roster.NewPCFromSpec(spec)
	if err != nil {
		h.log.Error("Failed to build PC from spec", "error", err, "id", id)
		http.Error(w, "Failed to build PC", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, summarize(pc))
}

func summarize(pc *roster.PC) PCSummary {
	name := pc.Spec.Name
	if name == "" {
		name = pc.Spec.ID
	}
	return PCSummary{
		ID:              pc.Spec.ID,
		Name:            name,
		Class:           pc.Spec.Class,
		Level:           pc.Spec.Level,
		Race:            pc.Spec.Race,
		Icon:            pc.Spec.Icon,
		Ally:            pc.Spec.Ally,
		HP:              pc.Actor.HP(),
		MaxHP:           pc.Actor.MaxHP(),
		AC:              pc.Actor.AC(),
		InitiativeBonus: pc.InitiativeBonus(),
	}
}

func (h *PCHandler) writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Error("Failed to marshal PC response", "error", err)
		http.Error(w, "Failed to process PC", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.log.Error("Failed to write PC response", "error", err)
	}
}
