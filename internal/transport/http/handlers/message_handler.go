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

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// List returns every message in a swap's thread, oldest first.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	swapID := r.PathValue("id")

	messages, err := h.messageService.List(r.Context(), userID, swapID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSwapNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Swap not found")
		case errors.Is(err, service.ErrNotParticipant):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "You are not a participant in this swap")
		default:
			log.Printf("ERROR list messages: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	swapID := r.PathValue("id")

	var input service.SendMessageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateMessageContent(input.Content); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	msg, err := h.messageService.Send(r.Context(), userID, swapID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSwapNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Swap not found")
		case errors.Is(err, service.ErrNotParticipant):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "You are not a participant in this swap")
		case errors.Is(err, service.ErrEmptyContent):
			writeError(w, http.StatusBadRequest, "MISSING_CONTENT", "Message content is required")
		default:
			log.Printf("ERROR send message: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	messageID := r.PathValue("id")
	swapID := r.URL.Query().Get("swap_id")
	if swapID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_SWAP_ID", "swap_id query parameter is required")
		return
	}

	msg, err := h.messageService.MarkRead(r.Context(), userID, swapID, messageID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSwapNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Swap not found")
		case errors.Is(err, service.ErrNotParticipant):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "You are not a participant in this swap")
		case errors.Is(err, service.ErrMessageNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Message not found or user is not the recipient")
		default:
			log.Printf("ERROR mark message read: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

func (h *MessageHandler) Unread(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	counts, err := h.messageService.Unread(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR unread counts: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, counts)
}

func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	messageID := r.PathValue("id")
	swapID := r.URL.Query().Get("swap_id")
	if swapID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_SWAP_ID", "swap_id query parameter is required")
		return
	}

	if err := h.messageService.Delete(r.Context(), userID, swapID, messageID); err != nil {
		switch {
		case errors.Is(err, service.ErrSwapNotFound), errors.Is(err, service.ErrMessageNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Message not found")
		case errors.Is(err, service.ErrNotParticipant):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "You are not a participant in this swap")
		case errors.Is(err, service.ErrNotSender):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "You can only delete your own messages")
		default:
			log.Printf("ERROR delete message: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
