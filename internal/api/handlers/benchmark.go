package handlers

import (
	"errors"
	"net/http"

	"github.com/saad2134/greenprompt/internal/energy"
)

type benchmarkRequest struct {
	Prompt          string   `json:"prompt"`
	Models          []string `json:"models"`
	IncludeStandard *bool    `json:"include_standard"`
}

// Benchmark compares models against the standard prompt suite or a custom prompt.
func (h *Handler) Benchmark(w http.ResponseWriter, r *http.Request) {
	var req benchmarkRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Prompt) > 5000 {
		fail(w, http.StatusBadRequest, "prompt exceeds maximum length of 5000 characters")
		return
	}
	includeStandard := true
	if req.IncludeStandard != nil {
		includeStandard = *req.IncludeStandard
	}

	result, err := energy.RunBenchmark(req.Prompt, req.Models, includeStandard)
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	ok(w, result)
}

// Recommend suggests the best-fit model for the stated requirements.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	req := energy.Requirements{Priority: "balanced", MinAccuracy: 0.85}
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	switch req.Priority {
	case "efficiency", "accuracy", "balanced":
	default:
		fail(w, http.StatusBadRequest, "priority must be one of: efficiency, accuracy, balanced")
		return
	}
	if req.MinAccuracy < 0 || req.MinAccuracy > 1 {
		fail(w, http.StatusBadRequest, "min_accuracy must be between 0 and 1")
		return
	}

	rec, err := energy.RecommendModel(req)
	if err != nil {
		if errors.Is(err, energy.ErrNoMatch) {
			fail(w, http.StatusNotFound, err.Error())
			return
		}
		fail(w, http.StatusInternalServerError, "internal error")
		return
	}
	ok(w, rec)
}
