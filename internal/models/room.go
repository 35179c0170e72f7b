package models

import "time"

type Topic struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Room is a discussion room. HostID and TopicID are nil once the
// referenced user or topic has been deleted.
type Room struct {
	ID          int64     `json:"id"`
	HostID      *int64    `json:"host_id,omitempty"`
	HostName    string    `json:"host_name,omitempty"`
	TopicID     *int64    `json:"topic_id,omitempty"`
	TopicName   string    `json:"topic_name,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r *Room) IsHostedBy(userID int64) bool {
	return r.HostID != nil && *r.HostID == userID
}

type Message struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	RoomID    int64     `json:"room_id"`
	RoomName  string    `json:"room_name,omitempty"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *Message) IsAuthoredBy(userID int64) bool {
	return m.UserID == userID
}

// Preview returns at most the first 50 characters of the body.
func (m *Message) Preview() string {
	runes := []rune(m.Body)
	if len(runes) <= 50 {
		return m.Body
	}
	return string(runes[:50])
}

// RoomInput carries the mutable fields of a room to the store.
type RoomInput struct {
	HostID      *int64
	TopicID     *int64
	Name        string
	Description string
}
