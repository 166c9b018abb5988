package handler

import (
	"net/http"

	"doctrack/internal/catalog"
	"doctrack/internal/httputil"
)

// CatalogHandler serves the department/category/status reference data.
type CatalogHandler struct {
	registry *catalog.Registry
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(registry *catalog.Registry) *CatalogHandler {
	return &CatalogHandler{registry: registry}
}

// GetCatalog returns the full reference catalog
// GET /api/v1/catalog
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.registry.Catalog())
}
