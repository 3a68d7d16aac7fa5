package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/emrgen/cadeia/internal/model"
	"github.com/emrgen/cadeia/internal/module"
	"github.com/emrgen/cadeia/internal/origin"
	"github.com/emrgen/cadeia/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// ChainHandler exposes the chain service over HTTP.
type ChainHandler struct {
	chain *service.ChainService
}

func NewChainHandler(chain *service.ChainService) *ChainHandler {
	return &ChainHandler{chain: chain}
}

func (h *ChainHandler) Register(r chi.Router) {
	r.Get("/parcels/{parcelID}/chain", h.tree)
	r.Post("/duplicates/check", h.checkDuplicate)
	r.Post("/imports", h.importDocuments)
	r.Post("/imports/proposals/{token}/confirm", h.confirmImport)
	r.Delete("/imports/{documentID}", h.undoImport)
	r.Put("/documents/{documentID}/level", h.setLevel)
	r.Post("/documents/{documentID}/entries", h.addEntry)
	r.Get("/origins/parse", h.parse)
}

func (h *ChainHandler) tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.chain.Tree(r.Context(), chi.URLParam(r, "parcelID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tree)
}

func (h *ChainHandler) checkDuplicate(w http.ResponseWriter, r *http.Request) {
	var req service.DuplicateCheckRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.chain.CheckDuplicate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

type ImportRequest struct {
	DocumentIDs []string `json:"document_ids"`
	ParcelID    string   `json:"parcel_id"`
}

func (h *ChainHandler) importDocuments(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.chain.Import(r.Context(), req.DocumentIDs, req.ParcelID, module.Actor(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *ChainHandler) confirmImport(w http.ResponseWriter, r *http.Request) {
	res, err := h.chain.ConfirmImport(r.Context(), chi.URLParam(r, "token"), module.Actor(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *ChainHandler) undoImport(w http.ResponseWriter, r *http.Request) {
	if err := h.chain.UndoImport(r.Context(), chi.URLParam(r, "documentID")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type LevelRequest struct {
	Level *int `json:"level"`
}

func (h *ChainHandler) setLevel(w http.ResponseWriter, r *http.Request) {
	var req LevelRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.chain.SetManualLevel(r.Context(), chi.URLParam(r, "documentID"), req.Level); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ChainHandler) addEntry(w http.ResponseWriter, r *http.Request) {
	var req service.EntryRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.chain.AddEntry(r.Context(), chi.URLParam(r, "documentID"), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

type ParseResponse struct {
	Codes []string `json:"codes"`
}

func (h *ChainHandler) parse(w http.ResponseWriter, r *http.Request) {
	res := ParseResponse{Codes: make([]string, 0)}
	for _, code := range origin.ParseSorted(r.URL.Query().Get("text")) {
		res.Codes = append(res.Codes, code.String())
	}

	writeJSON(w, http.StatusOK, res)
}

type errorResponse struct {
	Error string `json:"error"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrParcelNotFound),
		errors.Is(err, service.ErrDocumentNotFound),
		errors.Is(err, service.ErrProposalNotFound),
		errors.Is(err, service.ErrNotImported):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidDocumentCode),
		errors.Is(err, service.ErrSelfReference),
		errors.Is(err, service.ErrMissingActor),
		errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDocumentExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logrus.Errorf("request failed: %v", err)
		msg = http.StatusText(status)
	}

	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("failed to write response: %v", err)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}

	return true
}
