package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"studybud/internal/auth"
	"studybud/internal/forms"
	"studybud/internal/models"
	"studybud/internal/services"
	"studybud/internal/view"
)

type RoomHandlers struct {
	pages
	roomService *services.RoomService
}

func NewRoomHandlers(roomService *services.RoomService, sessions *auth.Sessions, renderer view.Renderer) *RoomHandlers {
	return &RoomHandlers{
		pages:       pages{renderer: renderer, sessions: sessions},
		roomService: roomService,
	}
}

func (h *RoomHandlers) Home(w http.ResponseWriter, r *http.Request) {
	listing, err := h.roomService.Listing(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		internalError(w, "Home", err)
		return
	}
	h.render(w, r, view.Home, listing)
}

// Room shows a room, joining the viewer to it. A POST posts a message and
// redirects back.
func (h *RoomHandlers) Room(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(r)
	if !ok {
		http.Error(w, notFoundText, http.StatusNotFound)
		return
	}
	userID := currentUserID(r)

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if _, err := h.roomService.PostMessage(r.Context(), roomID, userID, forms.BindMessageForm(r.PostForm)); err != nil {
			handleServiceError(w, "Post message", err, "")
			return
		}
		redirect(w, r, roomPath(roomID))
		return
	}

	roomView, err := h.roomService.View(r.Context(), roomID, userID)
	if err != nil {
		handleServiceError(w, "View room", err, "")
		return
	}
	h.render(w, r, view.Room, roomView)
}

func (h *RoomHandlers) CreateRoom(w http.ResponseWriter, r *http.Request) {
	form := &forms.RoomForm{Errors: forms.Errors{}}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		form = forms.BindRoomForm(r.PostForm)
		_, err := h.roomService.CreateRoom(r.Context(), currentUserID(r), form)
		if err == nil {
			redirect(w, r, "/")
			return
		}
		if !errors.Is(err, forms.ErrInvalid) {
			internalError(w, "Create room", err)
			return
		}
	}

	h.renderForm(w, r, form, nil)
}

func (h *RoomHandlers) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(r)
	if !ok {
		http.Error(w, notFoundText, http.StatusNotFound)
		return
	}
	userID := currentUserID(r)

	room, err := h.roomService.EditableRoom(r.Context(), roomID, userID)
	if err != nil {
		handleServiceError(w, "Update room", err, updateRoomForbidden)
		return
	}

	form := forms.RoomFormFromRoom(room)
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		form = forms.BindRoomForm(r.PostForm)
		err := h.roomService.UpdateRoom(r.Context(), roomID, userID, form)
		if err == nil {
			redirect(w, r, "/")
			return
		}
		if !errors.Is(err, forms.ErrInvalid) {
			handleServiceError(w, "Update room", err, updateRoomForbidden)
			return
		}
	}

	h.renderForm(w, r, form, room)
}

func (h *RoomHandlers) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(r)
	if !ok {
		http.Error(w, notFoundText, http.StatusNotFound)
		return
	}
	userID := currentUserID(r)

	room, err := h.roomService.EditableRoom(r.Context(), roomID, userID)
	if err != nil {
		handleServiceError(w, "Delete room", err, deleteRoomForbidden)
		return
	}

	if r.Method != http.MethodPost {
		h.render(w, r, view.Delete, view.DeleteData{Object: room.Name, CancelURL: roomPath(room.ID)})
		return
	}

	if err := h.roomService.DeleteRoom(r.Context(), roomID, userID); err != nil {
		handleServiceError(w, "Delete room", err, deleteRoomForbidden)
		return
	}
	h.flash(w, r, fmt.Sprintf("Room %q was deleted", room.Name))
	redirect(w, r, "/")
}

func (h *RoomHandlers) renderForm(w http.ResponseWriter, r *http.Request, form *forms.RoomForm, room *models.Room) {
	topics, err := h.roomService.Topics(r.Context())
	if err != nil {
		internalError(w, "Room form", err)
		return
	}
	h.render(w, r, view.RoomForm, view.RoomFormData{Form: form, Topics: topics, Room: room})
}
