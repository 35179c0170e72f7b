package database

import (
	"context"
	"errors"

	"studybud/internal/models"
)

var (
	// ErrNotFound is returned when a row is missing, including when a
	// referenced row disappeared between a read and a write.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned on unique constraint violations.
	ErrDuplicate = errors.New("duplicate record")
)

type UserRepository interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type TopicRepository interface {
	GetOrCreateTopic(ctx context.Context, name string) (*models.Topic, error)
	ListTopics(ctx context.Context) ([]*models.Topic, error)
	DeleteTopic(ctx context.Context, id int64) error
}

type RoomRepository interface {
	CreateRoom(ctx context.Context, in *models.RoomInput) (*models.Room, error)
	GetRoomByID(ctx context.Context, id int64) (*models.Room, error)
	SearchRooms(ctx context.Context, q string) ([]*models.Room, error)
	UpdateRoom(ctx context.Context, id int64, in *models.RoomInput) error
	DeleteRoom(ctx context.Context, id int64) error
}

type MessageRepository interface {
	CreateMessage(ctx context.Context, userID, roomID int64, body string) (*models.Message, error)
	GetMessageByID(ctx context.Context, id int64) (*models.Message, error)
	ListRoomMessages(ctx context.Context, roomID int64) ([]*models.Message, error)
	ListRecentMessages(ctx context.Context) ([]*models.Message, error)
	DeleteMessage(ctx context.Context, id int64) error
}

type ParticipantRepository interface {
	AddParticipant(ctx context.Context, roomID, userID int64) error
	ListParticipants(ctx context.Context, roomID int64) ([]*models.User, error)
}

type Database interface {
	UserRepository
	TopicRepository
	RoomRepository
	MessageRepository
	ParticipantRepository
	Migrate(ctx context.Context) error
	Close() error
}

// Open connects to the store selected by driver ("postgres" or "sqlite").
func Open(driver, url string) (Database, error) {
	switch driver {
	case "postgres":
		db, err := NewPostgresDB(url)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "sqlite":
		db, err := NewSQLiteDB(url)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, errors.New("unsupported database driver: " + driver)
	}
}
