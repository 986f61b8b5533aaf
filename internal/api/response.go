package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/cory-johannsen/risus/internal/game/probability"
	"github.com/cory-johannsen/risus/internal/game/ruleset"
	"github.com/cory-johannsen/risus/internal/report"
	"github.com/cory-johannsen/risus/internal/tables"
)

type rulesetResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	PoolTerm     string `json:"pool_term"`
	TargetTerm   string `json:"target_term"`
	SuccessFaces []int  `json:"success_faces"`
	FreeFaces    []int  `json:"free_faces"`
}

func toRulesetResponse(p ruleset.Policy) rulesetResponse {
	free := p.FreeFaces()
	if free == nil {
		free = []int{}
	}
	return rulesetResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		PoolTerm:     p.PoolTerm(),
		TargetTerm:   p.TargetTerm(),
		SuccessFaces: p.SuccessFaces(),
		FreeFaces:    free,
	}
}

type probabilityResponse struct {
	Ruleset     string  `json:"ruleset"`
	Pool        int     `json:"pool"`
	Target      int     `json:"target"`
	Probability float64 `json:"probability"`
	Percent     float64 `json:"percent"`
}

type failuresResponse struct {
	Ruleset   string                `json:"ruleset"`
	Pool      int                   `json:"pool"`
	Target    int                   `json:"target"`
	MaxLength int                   `json:"max_length"`
	Count     int                   `json:"count"`
	Truncated bool                  `json:"truncated"`
	Failures  []probability.Failure `json:"failures"`
}

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to status codes. Internal errors are logged
// and answered without a description.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ruleset.ErrUnknownRuleset):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Description: err.Error()})
	case errors.Is(err, errBadRequest),
		errors.Is(err, tables.ErrInvalidCell),
		errors.Is(err, report.ErrInvalidPoolSize),
		errors.Is(err, report.ErrInvalidTarget):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Description: err.Error()})
	default:
		h.logger.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
	}
}
