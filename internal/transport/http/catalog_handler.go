package http

import (
	"errors"
	"net/http"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
)

// CatalogHandler serves the subject/difficulty picker data.
type CatalogHandler struct {
	catalog *app.Catalog
}

func NewCatalogHandler(catalog *app.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/quizzes", h.byCategory)
}

func (h *CatalogHandler) byCategory(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		writeError(w, http.StatusBadRequest, "missing category")
		return
	}
	quizzes, err := h.catalog.ByCategory(r.Context(), category)
	if err != nil {
		if errors.Is(err, domain.ErrDataUnavailable) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}
