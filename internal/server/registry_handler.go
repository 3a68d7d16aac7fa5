package server

import (
	"net/http"

	"github.com/emrgen/cadeia/internal/service"
	"github.com/go-chi/chi/v5"
)

// RegistryHandler exposes the registry writes the chains are built from.
type RegistryHandler struct {
	registry *service.RegistryService
}

func NewRegistryHandler(registry *service.RegistryService) *RegistryHandler {
	return &RegistryHandler{registry: registry}
}

func (h *RegistryHandler) Register(r chi.Router) {
	r.Post("/offices", h.createOffice)
	r.Post("/parcels", h.createParcel)
	r.Delete("/parcels/{parcelID}", h.deleteParcel)
	r.Post("/parcels/{parcelID}/documents", h.createDocument)
	r.Get("/parcels/{parcelID}/imports", h.listImports)
}

func (h *RegistryHandler) createOffice(w http.ResponseWriter, r *http.Request) {
	var req service.OfficeRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.registry.CreateOffice(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

func (h *RegistryHandler) createParcel(w http.ResponseWriter, r *http.Request) {
	var req service.ParcelRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.registry.CreateParcel(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

func (h *RegistryHandler) deleteParcel(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.DeleteParcel(r.Context(), chi.URLParam(r, "parcelID")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RegistryHandler) createDocument(w http.ResponseWriter, r *http.Request) {
	var req service.DocumentRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.registry.CreateDocument(r.Context(), chi.URLParam(r, "parcelID"), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

func (h *RegistryHandler) listImports(w http.ResponseWriter, r *http.Request) {
	res, err := h.registry.ListImports(r.Context(), chi.URLParam(r, "parcelID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}
