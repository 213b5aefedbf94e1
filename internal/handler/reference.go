package handler

import (
	"net/http"

	"github.com/gct-et/assistant/internal/model"
)

// Languages handles GET /api/v1/languages
func Languages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]model.Language{
		"languages": model.SupportedLanguages,
	})
}

// Templates handles GET /api/v1/templates
func Templates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"templates": model.ElectricalTemplates,
	})
}
