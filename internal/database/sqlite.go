package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"studybud/internal/models"
	"studybud/pkg/logger"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

type userRecord struct {
	ID           int64     `gorm:"primaryKey"`
	Username     string    `gorm:"size:150;not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (userRecord) TableName() string { return "users" }

type topicRecord struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"size:200;not null;uniqueIndex"`
}

func (topicRecord) TableName() string { return "topics" }

type roomRecord struct {
	ID          int64        `gorm:"primaryKey"`
	HostID      *int64       `gorm:"index"`
	Host        *userRecord  `gorm:"foreignKey:HostID;constraint:OnDelete:SET NULL"`
	TopicID     *int64       `gorm:"index"`
	Topic       *topicRecord `gorm:"foreignKey:TopicID;constraint:OnDelete:SET NULL"`
	Name        string       `gorm:"size:200;not null"`
	Description string       `gorm:"not null;default:''"`
	UpdatedAt   time.Time    `gorm:"not null;index"`
	CreatedAt   time.Time    `gorm:"not null"`
}

func (roomRecord) TableName() string { return "rooms" }

type messageRecord struct {
	ID        int64       `gorm:"primaryKey"`
	UserID    int64       `gorm:"not null;index"`
	User      *userRecord `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	RoomID    int64       `gorm:"not null;index"`
	Room      *roomRecord `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
	Body      string      `gorm:"not null"`
	UpdatedAt time.Time   `gorm:"not null;index"`
	CreatedAt time.Time   `gorm:"not null"`
}

func (messageRecord) TableName() string { return "messages" }

type participantRecord struct {
	RoomID int64       `gorm:"primaryKey;autoIncrement:false"`
	Room   *roomRecord `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
	UserID int64       `gorm:"primaryKey;autoIncrement:false"`
	User   *userRecord `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (participantRecord) TableName() string { return "room_participants" }

// roomRow and messageRow are the flat shapes read back from joined queries.
type roomRow struct {
	ID          int64
	HostID      *int64
	HostName    *string
	TopicID     *int64
	TopicName   *string
	Name        string
	Description string
	UpdatedAt   time.Time
	CreatedAt   time.Time
}

func (r roomRow) toModel() *models.Room {
	room := &models.Room{
		ID:          r.ID,
		HostID:      r.HostID,
		TopicID:     r.TopicID,
		Name:        r.Name,
		Description: r.Description,
		UpdatedAt:   r.UpdatedAt,
		CreatedAt:   r.CreatedAt,
	}
	if r.HostName != nil {
		room.HostName = *r.HostName
	}
	if r.TopicName != nil {
		room.TopicName = *r.TopicName
	}
	return room
}

type messageRow struct {
	ID        int64
	UserID    int64
	Username  string
	RoomID    int64
	RoomName  string
	Body      string
	UpdatedAt time.Time
	CreatedAt time.Time
}

func (m messageRow) toModel() *models.Message {
	return &models.Message{
		ID:        m.ID,
		UserID:    m.UserID,
		Username:  m.Username,
		RoomID:    m.RoomID,
		RoomName:  m.RoomName,
		Body:      m.Body,
		UpdatedAt: m.UpdatedAt,
		CreatedAt: m.CreatedAt,
	}
}

func toUser(r *userRecord) *models.User {
	return &models.User{ID: r.ID, Username: r.Username, PasswordHash: r.PasswordHash, CreatedAt: r.CreatedAt}
}

// SQLiteDB is the embedded store. It keeps a single connection so that
// ":memory:" databases and the foreign_keys pragma survive across calls.
type SQLiteDB struct {
	db *gorm.DB
}

// sqliteDriverName is go-sqlite3 with a casefold(text) SQL function, since
// the builtin lower() only folds ASCII.
const sqliteDriverName = "sqlite3_casefold"

var registerDriver sync.Once

func registerSQLiteDriver() {
	registerDriver.Do(func() {
		sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("casefold", casefold, true)
			},
		})
	})
}

// casefold lower-cases text values and passes NULL through.
func casefold(v interface{}) interface{} {
	switch s := v.(type) {
	case string:
		return strings.ToLower(s)
	case []byte:
		if s == nil {
			return nil
		}
		return strings.ToLower(string(s))
	}
	return v
}

func NewSQLiteDB(dsn string) (*SQLiteDB, error) {
	registerSQLiteDriver()

	dialector := sqlite.New(sqlite.Config{DriverName: sqliteDriverName, DSN: dsn})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	logger.Info("Opened sqlite database %s", dsn)
	return &SQLiteDB{db: db}, nil
}

func (s *SQLiteDB) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLiteDB) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&userRecord{}, &topicRecord{}, &roomRecord{}, &messageRecord{}, &participantRecord{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate sqlite database: %w", err)
	}
	return nil
}

func mapGormError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

// User Repository Implementation
func (s *SQLiteDB) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	rec := &userRecord{Username: username, PasswordHash: passwordHash}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", mapGormError(err))
	}
	return toUser(rec), nil
}

func (s *SQLiteDB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var rec userRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, mapGormError(err)
	}
	return toUser(&rec), nil
}

func (s *SQLiteDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var rec userRecord
	if err := s.db.WithContext(ctx).First(&rec, "username = ?", username).Error; err != nil {
		return nil, mapGormError(err)
	}
	return toUser(&rec), nil
}

func (s *SQLiteDB) DeleteUser(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, &userRecord{}, id)
}

// Topic Repository Implementation
func (s *SQLiteDB) GetOrCreateTopic(ctx context.Context, name string) (*models.Topic, error) {
	rec := topicRecord{Name: name}
	err := s.db.WithContext(ctx).Where(topicRecord{Name: name}).FirstOrCreate(&rec).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get or create topic: %w", mapGormError(err))
	}
	return &models.Topic{ID: rec.ID, Name: rec.Name}, nil
}

func (s *SQLiteDB) ListTopics(ctx context.Context) ([]*models.Topic, error) {
	var recs []topicRecord
	if err := s.db.WithContext(ctx).Order("name").Find(&recs).Error; err != nil {
		return nil, err
	}
	topics := make([]*models.Topic, 0, len(recs))
	for _, rec := range recs {
		topics = append(topics, &models.Topic{ID: rec.ID, Name: rec.Name})
	}
	return topics, nil
}

func (s *SQLiteDB) DeleteTopic(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, &topicRecord{}, id)
}

// Room Repository Implementation
func (s *SQLiteDB) roomQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("rooms").
		Select("rooms.id, rooms.host_id, users.username AS host_name, rooms.topic_id, topics.name AS topic_name, " +
			"rooms.name, rooms.description, rooms.updated_at, rooms.created_at").
		Joins("LEFT JOIN users ON users.id = rooms.host_id").
		Joins("LEFT JOIN topics ON topics.id = rooms.topic_id")
}

func (s *SQLiteDB) CreateRoom(ctx context.Context, in *models.RoomInput) (*models.Room, error) {
	rec := &roomRecord{
		HostID:      in.HostID,
		TopicID:     in.TopicID,
		Name:        in.Name,
		Description: in.Description,
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("failed to create room: %w", mapGormError(err))
	}
	return s.GetRoomByID(ctx, rec.ID)
}

func (s *SQLiteDB) GetRoomByID(ctx context.Context, id int64) (*models.Room, error) {
	var rows []roomRow
	if err := s.roomQuery(ctx).Where("rooms.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0].toModel(), nil
}

func (s *SQLiteDB) SearchRooms(ctx context.Context, q string) ([]*models.Room, error) {
	var rows []roomRow
	err := s.roomQuery(ctx).
		Where("instr(casefold(topics.name), casefold(?)) > 0 OR instr(rooms.name, ?) > 0 OR instr(casefold(rooms.description), casefold(?)) > 0", q, q, q).
		Order("rooms.updated_at DESC, rooms.created_at DESC, rooms.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	rooms := make([]*models.Room, 0, len(rows))
	for _, row := range rows {
		rooms = append(rooms, row.toModel())
	}
	return rooms, nil
}

func (s *SQLiteDB) UpdateRoom(ctx context.Context, id int64, in *models.RoomInput) error {
	result := s.db.WithContext(ctx).Model(&roomRecord{}).Where("id = ?", id).Updates(map[string]interface{}{
		"topic_id":    in.TopicID,
		"name":        in.Name,
		"description": in.Description,
		"updated_at":  time.Now(),
	})
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update room: %w", mapGormError(err))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteDB) DeleteRoom(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, &roomRecord{}, id)
}

// Message Repository Implementation
func (s *SQLiteDB) messageQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("messages").
		Select("messages.id, messages.user_id, users.username, messages.room_id, rooms.name AS room_name, " +
			"messages.body, messages.updated_at, messages.created_at").
		Joins("JOIN users ON users.id = messages.user_id").
		Joins("JOIN rooms ON rooms.id = messages.room_id").
		Order("messages.updated_at DESC, messages.created_at DESC, messages.id DESC")
}

func (s *SQLiteDB) CreateMessage(ctx context.Context, userID, roomID int64, body string) (*models.Message, error) {
	rec := &messageRecord{UserID: userID, RoomID: roomID, Body: body}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("failed to create message: %w", mapGormError(err))
	}
	return s.GetMessageByID(ctx, rec.ID)
}

func (s *SQLiteDB) GetMessageByID(ctx context.Context, id int64) (*models.Message, error) {
	var rows []messageRow
	if err := s.messageQuery(ctx).Where("messages.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0].toModel(), nil
}

func (s *SQLiteDB) ListRoomMessages(ctx context.Context, roomID int64) ([]*models.Message, error) {
	return s.scanMessages(s.messageQuery(ctx).Where("messages.room_id = ?", roomID))
}

func (s *SQLiteDB) ListRecentMessages(ctx context.Context) ([]*models.Message, error) {
	return s.scanMessages(s.messageQuery(ctx))
}

func (s *SQLiteDB) scanMessages(query *gorm.DB) ([]*models.Message, error) {
	var rows []messageRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	messages := make([]*models.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, row.toModel())
	}
	return messages, nil
}

func (s *SQLiteDB) DeleteMessage(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, &messageRecord{}, id)
}

// Participant Repository Implementation
func (s *SQLiteDB) AddParticipant(ctx context.Context, roomID, userID int64) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&participantRecord{RoomID: roomID, UserID: userID}).Error
	if err != nil {
		return fmt.Errorf("failed to add participant: %w", mapGormError(err))
	}
	return nil
}

func (s *SQLiteDB) ListParticipants(ctx context.Context, roomID int64) ([]*models.User, error) {
	var recs []userRecord
	err := s.db.WithContext(ctx).
		Joins("JOIN room_participants ON room_participants.user_id = users.id").
		Where("room_participants.room_id = ?", roomID).
		Order("users.username").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	users := make([]*models.User, 0, len(recs))
	for i := range recs {
		user := toUser(&recs[i])
		user.PasswordHash = ""
		users = append(users, user)
	}
	return users, nil
}

func (s *SQLiteDB) deleteByID(ctx context.Context, model interface{}, id int64) error {
	result := s.db.WithContext(ctx).Delete(model, id)
	if err := result.Error; err != nil {
		return mapGormError(err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
