package forms

import (
	"net/url"
	"strings"

	"studybud/internal/models"
)

const (
	MaxRoomNameLength  = 200
	MaxTopicNameLength = 200
)

type RoomForm struct {
	Name        string
	Topic       string
	Description string
	Errors      Errors
}

func BindRoomForm(values url.Values) *RoomForm {
	return &RoomForm{
		Name:        strings.TrimSpace(values.Get("name")),
		Topic:       strings.TrimSpace(values.Get("topic")),
		Description: strings.TrimSpace(values.Get("description")),
		Errors:      Errors{},
	}
}

// RoomFormFromRoom pre-populates a form with the current room values.
func RoomFormFromRoom(room *models.Room) *RoomForm {
	return &RoomForm{
		Name:        room.Name,
		Topic:       room.TopicName,
		Description: room.Description,
		Errors:      Errors{},
	}
}

func (f *RoomForm) Valid() bool {
	f.Errors = Errors{}
	if required(f.Errors, "name", f.Name) {
		maxLength(f.Errors, "name", f.Name, MaxRoomNameLength)
	}
	maxLength(f.Errors, "topic", f.Topic, MaxTopicNameLength)
	return !f.Errors.Any()
}
