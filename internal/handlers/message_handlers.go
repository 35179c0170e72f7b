package handlers

import (
	"net/http"

	"studybud/internal/auth"
	"studybud/internal/services"
	"studybud/internal/view"
)

type MessageHandlers struct {
	pages
	messageService *services.MessageService
}

func NewMessageHandlers(messageService *services.MessageService, sessions *auth.Sessions, renderer view.Renderer) *MessageHandlers {
	return &MessageHandlers{
		pages:          pages{renderer: renderer, sessions: sessions},
		messageService: messageService,
	}
}

// DeleteMessage asks for confirmation on GET and deletes on POST. Only the
// author may do either.
func (h *MessageHandlers) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	messageID, ok := pathID(r)
	if !ok {
		http.Error(w, notFoundText, http.StatusNotFound)
		return
	}
	userID := currentUserID(r)

	msg, err := h.messageService.DeletableMessage(r.Context(), messageID, userID)
	if err != nil {
		handleServiceError(w, "Delete message", err, deleteMessageForbidden)
		return
	}

	if r.Method != http.MethodPost {
		h.render(w, r, view.Delete, view.DeleteData{Object: msg.Preview(), CancelURL: roomPath(msg.RoomID)})
		return
	}

	if err := h.messageService.DeleteMessage(r.Context(), messageID, userID); err != nil {
		handleServiceError(w, "Delete message", err, deleteMessageForbidden)
		return
	}
	h.flash(w, r, "Message was deleted")
	redirect(w, r, "/")
}
