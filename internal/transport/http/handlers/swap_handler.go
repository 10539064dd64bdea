package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/swaploop/swaploop/internal/service"
	"github.com/swaploop/swaploop/internal/transport/http/middleware"
	"github.com/swaploop/swaploop/pkg/validator"
)

type SwapHandler struct {
	swapService *service.SwapService
}

func NewSwapHandler(swapService *service.SwapService) *SwapHandler {
	return &SwapHandler{swapService: swapService}
}

func (h *SwapHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input service.CreateSwapInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateCreateSwap(input.OwnerID, input.RequesterListingID, input.OwnerListingID); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	swap, err := h.swapService.Create(r.Context(), userID, input)
	if err != nil {
		log.Printf("ERROR create swap: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusCreated, swap)
}

func (h *SwapHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	swaps, err := h.swapService.ListForUser(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR list swaps: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, swaps)
}

func (h *SwapHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	swapID := r.PathValue("id")

	swap, err := h.swapService.Get(r.Context(), userID, swapID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSwapNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Swap not found")
		case errors.Is(err, service.ErrNotParticipant):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "You are not a participant in this swap")
		default:
			log.Printf("ERROR get swap: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, swap)
}

func (h *SwapHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	swapID := r.PathValue("id")

	var input service.UpdateSwapStatusInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	swap, err := h.swapService.UpdateStatus(r.Context(), userID, swapID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSwapNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Swap not found")
		case errors.Is(err, service.ErrNotParticipant):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "You are not a participant in this swap")
		case errors.Is(err, service.ErrInvalidTransition):
			writeError(w, http.StatusConflict, "INVALID_TRANSITION", "Swap cannot move to that status")
		default:
			log.Printf("ERROR update swap status: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, swap)
}

func (h *SwapHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	swapID := r.PathValue("id")

	if err := h.swapService.Delete(r.Context(), userID, swapID); err != nil {
		switch {
		case errors.Is(err, service.ErrSwapNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Swap not found")
		case errors.Is(err, service.ErrNotRequester):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the requester can delete a pending swap")
		default:
			log.Printf("ERROR delete swap: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
