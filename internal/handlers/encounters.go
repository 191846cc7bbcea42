package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jwebster45206/combat-tracker/pkg/catalog"
	"github.com/jwebster45206/combat-tracker/pkg/encounter"
	"github.com/jwebster45206/combat-tracker/pkg/roster"
	"github.com/jwebster45206/combat-tracker/pkg/tracker"
)

// maxBodyBytes caps command and party request bodies.
const maxBodyBytes = 1 << 20

// hydrateTimeout bounds how long a request waits for an encounter to load.
const hydrateTimeout = 10 * time.Second

type ErrorResponse struct {
	Error string `json:"error"`
}

// EncounterDeleter removes a stored encounter.
type EncounterDeleter interface {
	DeleteEncounter(ctx context.Context, id string) error
}

// CommandResponse is returned for every applied command.
type CommandResponse struct {
	Changed bool         `json:"changed"`
	View    tracker.View `json:"view"`
}

// PartyRequest imports stored PCs into an encounter.
type PartyRequest struct {
	IDs   []string       `json:"ids,omitempty"`   // empty means every stored PC
	Rolls map[string]int `json:"rolls,omitempty"` // PC id -> initiative roll
}

// PartyResponse reports how many party members joined.
type PartyResponse struct {
	Added int          `json:"added"`
	View  tracker.View `json:"view"`
}

// commandExtras are wire-only fields a command may carry alongside the action.
type commandExtras struct {
	Preset string `json:"preset,omitempty"`
}

type EncountersHandler struct {
	registry *tracker.Registry
	store    EncounterDeleter
	roster   *roster.Roster
	logger   *slog.Logger
}

func NewEncountersHandler(registry *tracker.Registry, store EncounterDeleter, r *roster.Roster, logger *slog.Logger) *EncountersHandler {
	return &EncountersHandler{
		registry: registry,
		store:    store,
		roster:   r,
		logger:   logger,
	}
}

// ServeHTTP handles encounter requests.
// Routes:
// GET /v1/encounters/{id}           - Current view
// DELETE /v1/encounters/{id}        - Reset the encounter
// POST /v1/encounters/{id}/commands - Apply one action
// POST /v1/encounters/{id}/party    - Import stored PCs
func (h *EncountersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	pathParts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/encounters"), "/"), "/")
	if len(pathParts) == 0 || pathParts[0] == "" || len(pathParts) > 2 {
		h.writeError(w, http.StatusBadRequest, "Invalid path. Expected /v1/encounters/{id}[/commands|/party]")
		return
	}
	encounterID := pathParts[0]
	if !ValidEncounterID(encounterID) {
		h.logger.Warn("Invalid encounter ID", "id", encounterID)
		h.writeError(w, http.StatusBadRequest, "Invalid encounter ID format")
		return
	}

	sub := ""
	if len(pathParts) == 2 {
		sub = pathParts[1]
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		h.handleRead(w, r, encounterID)
	case sub == "" && r.Method == http.MethodDelete:
		h.handleReset(w, r, encounterID)
	case sub == "commands" && r.Method == http.MethodPost:
		h.handleCommand(w, r, encounterID)
	case sub == "party" && r.Method == http.MethodPost:
		h.handleParty(w, r, encounterID)
	case sub == "" || sub == "commands" || sub == "party":
		h.logger.Warn("Method not allowed for encounters endpoint", "method", r.Method, "path", r.URL.Path)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	default:
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown encounter resource: %s", sub))
	}
}

// ValidEncounterID accepts 1-128 characters of letters, digits, '-' and '_'.
func ValidEncounterID(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

func (h *EncountersHandler) controller(w http.ResponseWriter, r *http.Request, encounterID string) (*tracker.Controller, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), hydrateTimeout)
	defer cancel()

	c, err := h.registry.Get(ctx, encounterID)
	if err != nil {
		h.logger.Error("Failed to open encounter", "encounter_id", encounterID, "error", err)
		h.writeError(w, http.StatusServiceUnavailable, "Encounter is not available")
		return nil, false
	}
	return c, true
}

func (h *EncountersHandler) handleRead(w http.ResponseWriter, r *http.Request, encounterID string) {
	c, ok := h.controller(w, r, encounterID)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, c.View())
}

func (h *EncountersHandler) handleReset(w http.ResponseWriter, r *http.Request, encounterID string) {
	c, ok := h.controller(w, r, encounterID)
	if !ok {
		return
	}
	if err := h.store.DeleteEncounter(r.Context(), encounterID); err != nil {
		h.logger.Error("Failed to delete encounter", "encounter_id", encounterID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to reset encounter")
		return
	}
	c.Reset()
	h.logger.Info("Encounter reset", "encounter_id", encounterID)
	h.writeJSON(w, http.StatusOK, c.View())
}

func (h *EncountersHandler) handleCommand(w http.ResponseWriter, r *http.Request, encounterID string) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	action, err := decodeCommand(body)
	if err != nil {
		h.logger.Warn("Invalid command", "encounter_id", encounterID, "error", err)
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, ok := h.controller(w, r, encounterID)
	if !ok {
		return
	}
	changed := c.Dispatch(action)
	h.logger.Debug("Command applied",
		"encounter_id", encounterID,
		"action", action.Type(),
		"changed", changed)
	h.writeJSON(w, http.StatusOK, CommandResponse{Changed: changed, View: c.View()})
}

// decodeCommand parses an action, filling an add-status template from the
// catalog when only a preset id is given.
func decodeCommand(body []byte) (encounter.Action, error) {
	action, err := encounter.DecodeAction(body)
	if err != nil {
		return nil, err
	}

	add, ok := action.(encounter.AddStatus)
	if !ok {
		return action, nil
	}
	var extras commandExtras
	if err := json.Unmarshal(body, &extras); err != nil {
		return nil, fmt.Errorf("failed to decode command: %w", err)
	}
	if extras.Preset != "" && add.Template.ID == "" && add.Template.Label == "" {
		add.Template = catalog.Resolve(extras.Preset)
	}
	if add.Template.Label == "" {
		return nil, errors.New("add-status requires a template label or a preset")
	}
	return add, nil
}

func (h *EncountersHandler) handleParty(w http.ResponseWriter, r *http.Request, encounterID string) {
	var req PartyRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
			return
		}
	}

	party, err := h.roster.Party(r.Context(), req.Rolls, req.IDs...)
	if err != nil {
		h.logger.Warn("Failed to load party", "encounter_id", encounterID, "error", err)
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, ok := h.controller(w, r, encounterID)
	if !ok {
		return
	}
	added := 0
	for _, member := range party {
		if c.AddCombatant(member) {
			added++
		}
	}
	h.logger.Info("Party imported", "encounter_id", encounterID, "added", added)
	h.writeJSON(w, http.StatusOK, PartyResponse{Added: added, View: c.View()})
}

func (h *EncountersHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *EncountersHandler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, ErrorResponse{Error: msg})
}
