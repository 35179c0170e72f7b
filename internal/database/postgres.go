package database

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"studybud/internal/models"
	"studybud/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var postgresSchema string

type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(databaseURL string) (*PostgresDB, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to database successfully")
	return &PostgresDB{pool: pool}, nil
}

func (db *PostgresDB) Close() error {
	db.pool.Close()
	return nil
}

func (db *PostgresDB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// mapPgError translates driver errors into the package sentinels.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", ErrNotFound, pgErr.ConstraintName)
		}
	}
	return err
}

// User Repository Implementation
func (db *PostgresDB) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (username, password_hash, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, username, password_hash, created_at`

	user := &models.User{}
	err := db.pool.QueryRow(ctx, query, username, passwordHash).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", mapPgError(err))
	}
	return user, nil
}

func (db *PostgresDB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, username, password_hash, created_at FROM users WHERE id = $1`

	user := &models.User{}
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		return nil, mapPgError(err)
	}
	return user, nil
}

func (db *PostgresDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`

	user := &models.User{}
	err := db.pool.QueryRow(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		return nil, mapPgError(err)
	}
	return user, nil
}

func (db *PostgresDB) DeleteUser(ctx context.Context, id int64) error {
	return db.deleteByID(ctx, "users", id)
}

// Topic Repository Implementation
func (db *PostgresDB) GetOrCreateTopic(ctx context.Context, name string) (*models.Topic, error) {
	query := `
		INSERT INTO topics (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name`

	topic := &models.Topic{}
	if err := db.pool.QueryRow(ctx, query, name).Scan(&topic.ID, &topic.Name); err != nil {
		return nil, fmt.Errorf("failed to get or create topic: %w", mapPgError(err))
	}
	return topic, nil
}

func (db *PostgresDB) ListTopics(ctx context.Context) ([]*models.Topic, error) {
	rows, err := db.pool.Query(ctx, `SELECT id, name FROM topics ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []*models.Topic
	for rows.Next() {
		topic := &models.Topic{}
		if err := rows.Scan(&topic.ID, &topic.Name); err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

func (db *PostgresDB) DeleteTopic(ctx context.Context, id int64) error {
	return db.deleteByID(ctx, "topics", id)
}

// Room Repository Implementation
const roomSelect = `
	SELECT r.id, r.host_id, COALESCE(u.username, ''), r.topic_id, COALESCE(t.name, ''),
	       r.name, r.description, r.updated_at, r.created_at
	FROM rooms r
	LEFT JOIN users u ON u.id = r.host_id
	LEFT JOIN topics t ON t.id = r.topic_id`

const roomOrder = ` ORDER BY r.updated_at DESC, r.created_at DESC, r.id DESC`

func scanRoom(row pgx.Row) (*models.Room, error) {
	room := &models.Room{}
	err := row.Scan(
		&room.ID, &room.HostID, &room.HostName, &room.TopicID, &room.TopicName,
		&room.Name, &room.Description, &room.UpdatedAt, &room.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (db *PostgresDB) CreateRoom(ctx context.Context, in *models.RoomInput) (*models.Room, error) {
	query := `
		INSERT INTO rooms (host_id, topic_id, name, description, updated_at, created_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id`

	var id int64
	if err := db.pool.QueryRow(ctx, query, in.HostID, in.TopicID, in.Name, in.Description).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", mapPgError(err))
	}
	return db.GetRoomByID(ctx, id)
}

func (db *PostgresDB) GetRoomByID(ctx context.Context, id int64) (*models.Room, error) {
	room, err := scanRoom(db.pool.QueryRow(ctx, roomSelect+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	return room, nil
}

func (db *PostgresDB) SearchRooms(ctx context.Context, q string) ([]*models.Room, error) {
	query := roomSelect + `
		WHERE strpos(lower(t.name), lower($1)) > 0
		   OR strpos(r.name, $1) > 0
		   OR strpos(lower(r.description), lower($1)) > 0` + roomOrder

	rows, err := db.pool.Query(ctx, query, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (db *PostgresDB) UpdateRoom(ctx context.Context, id int64, in *models.RoomInput) error {
	query := `
		UPDATE rooms SET topic_id = $2, name = $3, description = $4, updated_at = NOW()
		WHERE id = $1`

	tag, err := db.pool.Exec(ctx, query, id, in.TopicID, in.Name, in.Description)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRoom removes the room; messages and participant rows go with it
// through ON DELETE CASCADE.
func (db *PostgresDB) DeleteRoom(ctx context.Context, id int64) error {
	return db.deleteByID(ctx, "rooms", id)
}

// Message Repository Implementation
const messageSelect = `
	SELECT m.id, m.user_id, u.username, m.room_id, r.name, m.body, m.updated_at, m.created_at
	FROM messages m
	JOIN users u ON u.id = m.user_id
	JOIN rooms r ON r.id = m.room_id`

const messageOrder = ` ORDER BY m.updated_at DESC, m.created_at DESC, m.id DESC`

func scanMessage(row pgx.Row) (*models.Message, error) {
	msg := &models.Message{}
	err := row.Scan(
		&msg.ID, &msg.UserID, &msg.Username, &msg.RoomID, &msg.RoomName,
		&msg.Body, &msg.UpdatedAt, &msg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (db *PostgresDB) CreateMessage(ctx context.Context, userID, roomID int64, body string) (*models.Message, error) {
	query := `
		INSERT INTO messages (user_id, room_id, body, updated_at, created_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id`

	var id int64
	if err := db.pool.QueryRow(ctx, query, userID, roomID, body).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", mapPgError(err))
	}
	return db.GetMessageByID(ctx, id)
}

func (db *PostgresDB) GetMessageByID(ctx context.Context, id int64) (*models.Message, error) {
	msg, err := scanMessage(db.pool.QueryRow(ctx, messageSelect+` WHERE m.id = $1`, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	return msg, nil
}

func (db *PostgresDB) ListRoomMessages(ctx context.Context, roomID int64) ([]*models.Message, error) {
	return db.queryMessages(ctx, messageSelect+` WHERE m.room_id = $1`+messageOrder, roomID)
}

func (db *PostgresDB) ListRecentMessages(ctx context.Context) ([]*models.Message, error) {
	return db.queryMessages(ctx, messageSelect+messageOrder)
}

func (db *PostgresDB) queryMessages(ctx context.Context, query string, args ...any) ([]*models.Message, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (db *PostgresDB) DeleteMessage(ctx context.Context, id int64) error {
	return db.deleteByID(ctx, "messages", id)
}

// Participant Repository Implementation
func (db *PostgresDB) AddParticipant(ctx context.Context, roomID, userID int64) error {
	query := `
		INSERT INTO room_participants (room_id, user_id) VALUES ($1, $2)
		ON CONFLICT (room_id, user_id) DO NOTHING`

	if _, err := db.pool.Exec(ctx, query, roomID, userID); err != nil {
		return fmt.Errorf("failed to add participant: %w", mapPgError(err))
	}
	return nil
}

func (db *PostgresDB) ListParticipants(ctx context.Context, roomID int64) ([]*models.User, error) {
	query := `
		SELECT u.id, u.username, u.created_at
		FROM room_participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.room_id = $1
		ORDER BY u.username`

	rows, err := db.pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Username, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// deleteByID deletes a single row; table is always a package constant.
func (db *PostgresDB) deleteByID(ctx context.Context, table string, id int64) error {
	tag, err := db.pool.Exec(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
