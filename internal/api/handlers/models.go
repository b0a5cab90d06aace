package handlers

import (
	"net/http"

	"github.com/saad2134/greenprompt/internal/energy"
)

// ListModels returns the full model catalog grouped by energy tier.
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	ok(w, energy.ListModels())
}

// ModelSpecs returns the static coefficients for one catalog model.
func (h *Handler) ModelSpecs(w http.ResponseWriter, r *http.Request) {
	name := pathID(r, "model")
	spec, found := energy.Specs(name)
	if !found {
		fail(w, http.StatusNotFound, "model not found: "+name)
		return
	}
	ok(w, spec)
}
