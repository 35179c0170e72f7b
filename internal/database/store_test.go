package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybud/internal/models"
)

// storeSuite runs the same behaviour checks against every Database
// implementation. newDB must return an empty, migrated store.
func storeSuite(t *testing.T, newDB func(t *testing.T) Database) {
	t.Run("users", func(t *testing.T) { testUsers(t, newDB(t)) })
	t.Run("topic nullified on delete", func(t *testing.T) { testTopicDeleteNullifies(t, newDB(t)) })
	t.Run("host nullified on delete", func(t *testing.T) { testHostDeleteNullifies(t, newDB(t)) })
	t.Run("messages cascade", func(t *testing.T) { testMessageCascade(t, newDB(t)) })
	t.Run("search", func(t *testing.T) { testSearchRooms(t, newDB(t)) })
	t.Run("participants", func(t *testing.T) { testParticipants(t, newDB(t)) })
	t.Run("update and ordering", func(t *testing.T) { testUpdateRoomOrdering(t, newDB(t)) })
	t.Run("not found", func(t *testing.T) { testNotFound(t, newDB(t)) })
}

func TestSQLiteStore(t *testing.T) {
	storeSuite(t, func(t *testing.T) Database { return NewTestDB(t) })
}

func mustUser(t *testing.T, db Database, name string) *models.User {
	t.Helper()
	user, err := db.CreateUser(context.Background(), name, "hash-"+name)
	require.NoError(t, err)
	return user
}

func mustRoom(t *testing.T, db Database, host *models.User, topic, name, description string) *models.Room {
	t.Helper()
	ctx := context.Background()
	in := &models.RoomInput{Name: name, Description: description}
	if host != nil {
		in.HostID = &host.ID
	}
	if topic != "" {
		tp, err := db.GetOrCreateTopic(ctx, topic)
		require.NoError(t, err)
		in.TopicID = &tp.ID
	}
	room, err := db.CreateRoom(ctx, in)
	require.NoError(t, err)
	return room
}

func roomNames(rooms []*models.Room) []string {
	names := make([]string, 0, len(rooms))
	for _, r := range rooms {
		names = append(names, r.Name)
	}
	return names
}

func testUsers(t *testing.T, db Database) {
	ctx := context.Background()
	alice := mustUser(t, db, "alice")

	got, err := db.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.Equal(t, "hash-alice", got.PasswordHash)

	byID, err := db.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = db.CreateUser(ctx, "alice", "other")
	assert.ErrorIs(t, err, ErrDuplicate)
}

func testTopicDeleteNullifies(t *testing.T, db Database) {
	ctx := context.Background()
	host := mustUser(t, db, "host")
	room := mustRoom(t, db, host, "Python", "Lets learn python!", "")
	require.NotNil(t, room.TopicID)
	assert.Equal(t, "Python", room.TopicName)

	again, err := db.GetOrCreateTopic(ctx, "Python")
	require.NoError(t, err)
	assert.Equal(t, *room.TopicID, again.ID, "topic lookup by name must reuse the existing row")

	require.NoError(t, db.DeleteTopic(ctx, *room.TopicID))

	got, err := db.GetRoomByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TopicID)
	assert.Empty(t, got.TopicName)
}

func testHostDeleteNullifies(t *testing.T, db Database) {
	ctx := context.Background()
	host := mustUser(t, db, "host")
	room := mustRoom(t, db, host, "", "Design with me", "")
	assert.Equal(t, "host", room.HostName)

	require.NoError(t, db.DeleteUser(ctx, host.ID))

	got, err := db.GetRoomByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Nil(t, got.HostID)
	assert.Empty(t, got.HostName)
}

func testMessageCascade(t *testing.T, db Database) {
	ctx := context.Background()
	host := mustUser(t, db, "host")
	author := mustUser(t, db, "author")
	keep := mustRoom(t, db, host, "", "keep", "")
	drop := mustRoom(t, db, host, "", "drop", "")

	inDropped, err := db.CreateMessage(ctx, host.ID, drop.ID, "gone with the room")
	require.NoError(t, err)
	byAuthor, err := db.CreateMessage(ctx, author.ID, keep.ID, "gone with the author")
	require.NoError(t, err)
	survivor, err := db.CreateMessage(ctx, host.ID, keep.ID, "stays")
	require.NoError(t, err)
	require.NoError(t, db.AddParticipant(ctx, drop.ID, author.ID))

	require.NoError(t, db.DeleteRoom(ctx, drop.ID))
	_, err = db.GetMessageByID(ctx, inDropped.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.DeleteUser(ctx, author.ID))
	_, err = db.GetMessageByID(ctx, byAuthor.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	msgs, err := db.ListRecentMessages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, survivor.ID, msgs[0].ID)
	assert.Equal(t, "host", msgs[0].Username)
	assert.Equal(t, "keep", msgs[0].RoomName)
}

func testSearchRooms(t *testing.T, db Database) {
	ctx := context.Background()
	host := mustUser(t, db, "host")
	mustRoom(t, db, host, "Python", "Lets learn", "")
	mustRoom(t, db, host, "", "python meetup", "")
	mustRoom(t, db, host, "", "Python Caps", "")
	mustRoom(t, db, host, "", "Scripting", "We write PYTHON daily")
	mustRoom(t, db, host, "Design", "Frontend Developers", "")
	mustRoom(t, db, nil, "", "Orphan", "")

	all, err := db.SearchRooms(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 6)

	matched, err := db.SearchRooms(ctx, "python")
	require.NoError(t, err)
	// room names match case-sensitively, topic and description do not
	assert.ElementsMatch(t, []string{"Lets learn", "python meetup", "Scripting"}, roomNames(matched))

	percent, err := db.SearchRooms(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, percent, "search terms are literal substrings, not patterns")
}

func testParticipants(t *testing.T, db Database) {
	ctx := context.Background()
	host := mustUser(t, db, "host")
	bob := mustUser(t, db, "bob")
	room := mustRoom(t, db, host, "", "room", "")

	require.NoError(t, db.AddParticipant(ctx, room.ID, bob.ID))
	require.NoError(t, db.AddParticipant(ctx, room.ID, bob.ID))
	require.NoError(t, db.AddParticipant(ctx, room.ID, host.ID))

	participants, err := db.ListParticipants(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, participants, 2)
	assert.Equal(t, "bob", participants[0].Username)
	assert.Equal(t, "host", participants[1].Username)
	assert.Empty(t, participants[0].PasswordHash)

	after, err := db.GetRoomByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, room.UpdatedAt.Unix(), after.UpdatedAt.Unix(), "joining does not touch the room")

	err = db.AddParticipant(ctx, room.ID+1000, bob.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func testUpdateRoomOrdering(t *testing.T, db Database) {
	ctx := context.Background()
	host := mustUser(t, db, "host")
	first := mustRoom(t, db, host, "", "first", "")
	second := mustRoom(t, db, host, "", "second", "")

	rooms, err := db.SearchRooms(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "first"}, roomNames(rooms))

	topic, err := db.GetOrCreateTopic(ctx, "Go")
	require.NoError(t, err)
	require.NoError(t, db.UpdateRoom(ctx, first.ID, &models.RoomInput{TopicID: &topic.ID, Name: "first, renamed", Description: "now with a topic"}))

	updated, err := db.GetRoomByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "first, renamed", updated.Name)
	assert.Equal(t, "Go", updated.TopicName)
	assert.Equal(t, "now with a topic", updated.Description)
	assert.True(t, updated.IsHostedBy(host.ID), "update keeps the host")
	assert.False(t, updated.UpdatedAt.Before(second.UpdatedAt))

	rooms, err = db.SearchRooms(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "first, renamed", rooms[0].Name, "most recently updated room comes first")

	m1, err := db.CreateMessage(ctx, host.ID, first.ID, "one")
	require.NoError(t, err)
	m2, err := db.CreateMessage(ctx, host.ID, first.ID, "two")
	require.NoError(t, err)
	msgs, err := db.ListRoomMessages(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, m2.ID, msgs[0].ID)
	assert.Equal(t, m1.ID, msgs[1].ID)
}

func testNotFound(t *testing.T, db Database) {
	ctx := context.Background()

	_, err := db.GetRoomByID(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.GetMessageByID(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, db.DeleteRoom(ctx, 42), ErrNotFound)
	assert.ErrorIs(t, db.DeleteMessage(ctx, 42), ErrNotFound)
	assert.ErrorIs(t, db.UpdateRoom(ctx, 42, &models.RoomInput{Name: "x"}), ErrNotFound)

	host := mustUser(t, db, "host")
	_, err = db.CreateMessage(ctx, host.ID, 42, "into the void")
	assert.ErrorIs(t, err, ErrNotFound)
}
