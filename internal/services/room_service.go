package services

import (
	"context"
	"fmt"

	"studybud/internal/database"
	"studybud/internal/forms"
	"studybud/internal/models"
)

type RoomService struct {
	db database.Database
}

func NewRoomService(db database.Database) *RoomService {
	return &RoomService{db: db}
}

// Listing is the home page: rooms matching the query plus navigation data.
type Listing struct {
	Query     string
	Rooms     []*models.Room
	Topics    []*models.Topic
	RoomCount int
	Activity  []*models.Message
}

// RoomView is a room with its conversation and participants.
type RoomView struct {
	Room         *models.Room
	Messages     []*models.Message
	Participants []*models.User
}

// Listing returns the rooms whose topic, name or description contains q.
// The activity feed covers every room regardless of q.
func (s *RoomService) Listing(ctx context.Context, q string) (*Listing, error) {
	rooms, err := s.db.SearchRooms(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to search rooms: %w", err)
	}

	topics, err := s.db.ListTopics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}

	activity, err := s.db.ListRecentMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return &Listing{
		Query:     q,
		Rooms:     rooms,
		Topics:    topics,
		RoomCount: len(rooms),
		Activity:  activity,
	}, nil
}

// View joins userID to the room and returns it. Every view joins, posting
// or not.
func (s *RoomService) View(ctx context.Context, roomID, userID int64) (*RoomView, error) {
	room, err := s.db.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, notFound(err)
	}

	if err := s.db.AddParticipant(ctx, roomID, userID); err != nil {
		return nil, fmt.Errorf("failed to join room: %w", notFound(err))
	}

	messages, err := s.db.ListRoomMessages(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	participants, err := s.db.ListParticipants(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	return &RoomView{Room: room, Messages: messages, Participants: participants}, nil
}

// PostMessage joins userID to the room and, when the form carries a body,
// stores the message. An empty body is not an error; nothing is posted
// and the returned message is nil.
func (s *RoomService) PostMessage(ctx context.Context, roomID, userID int64, form *forms.MessageForm) (*models.Message, error) {
	if err := s.db.AddParticipant(ctx, roomID, userID); err != nil {
		return nil, notFound(err)
	}

	if !form.Valid() {
		return nil, nil
	}

	msg, err := s.db.CreateMessage(ctx, userID, roomID, form.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", notFound(err))
	}
	return msg, nil
}

// Topics lists every topic for the room form's suggestions.
func (s *RoomService) Topics(ctx context.Context) ([]*models.Topic, error) {
	topics, err := s.db.ListTopics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	return topics, nil
}

// CreateRoom stores a room hosted by hostID. A named topic is created on
// first use.
func (s *RoomService) CreateRoom(ctx context.Context, hostID int64, form *forms.RoomForm) (*models.Room, error) {
	if !form.Valid() {
		return nil, forms.ErrInvalid
	}

	topicID, err := s.topicID(ctx, form.Topic)
	if err != nil {
		return nil, err
	}

	room, err := s.db.CreateRoom(ctx, &models.RoomInput{
		HostID:      &hostID,
		TopicID:     topicID,
		Name:        form.Name,
		Description: form.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return room, nil
}

// EditableRoom returns the room if userID hosts it.
func (s *RoomService) EditableRoom(ctx context.Context, roomID, userID int64) (*models.Room, error) {
	room, err := s.db.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, notFound(err)
	}
	if !room.IsHostedBy(userID) {
		return nil, ErrForbidden
	}
	return room, nil
}

// UpdateRoom overwrites the room's name, topic and description. The host
// never changes.
func (s *RoomService) UpdateRoom(ctx context.Context, roomID, userID int64, form *forms.RoomForm) error {
	room, err := s.EditableRoom(ctx, roomID, userID)
	if err != nil {
		return err
	}

	if !form.Valid() {
		return forms.ErrInvalid
	}

	topicID, err := s.topicID(ctx, form.Topic)
	if err != nil {
		return err
	}

	err = s.db.UpdateRoom(ctx, room.ID, &models.RoomInput{
		HostID:      room.HostID,
		TopicID:     topicID,
		Name:        form.Name,
		Description: form.Description,
	})
	if err != nil {
		return fmt.Errorf("failed to update room: %w", notFound(err))
	}
	return nil
}

func (s *RoomService) DeleteRoom(ctx context.Context, roomID, userID int64) error {
	if _, err := s.EditableRoom(ctx, roomID, userID); err != nil {
		return err
	}
	if err := s.db.DeleteRoom(ctx, roomID); err != nil {
		return fmt.Errorf("failed to delete room: %w", notFound(err))
	}
	return nil
}

func (s *RoomService) topicID(ctx context.Context, name string) (*int64, error) {
	if name == "" {
		return nil, nil
	}
	topic, err := s.db.GetOrCreateTopic(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get topic %q: %w", name, err)
	}
	return &topic.ID, nil
}
