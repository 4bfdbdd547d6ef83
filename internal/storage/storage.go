// Package storage реализует хранилище данных на основе MongoDB
// для пользователей и сообщений формы обратной связи.
//
// Storage создаётся один раз при старте процесса и передаётся во все сервисы.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Имена коллекций.
const (
	UsersCollection    = "users"
	ContactsCollection = "contact_messages"
)

var (
	// ErrUserNotFound пользователь не найден (в том числе при некорректном идентификаторе).
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists пользователь с таким email уже существует.
	ErrUserExists = errors.New("user already exists")
)

// Options параметры подключения.
type Options struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
}

// Storage инкапсулирует пул соединений MongoDB.
type Storage struct {
	Client   *mongo.Client
	DB       *mongo.Database
	users    *mongo.Collection
	contacts *mongo.Collection
}

// New подключается к MongoDB и проверяет соединение.
func New(ctx context.Context, opts Options) (*Storage, error) {
	const op = "storage.New"

	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetConnectTimeout(opts.ConnectTimeout).
		SetServerSelectionTimeout(opts.ConnectTimeout)
	if opts.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(opts.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()
	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewWithClient(client, opts.Database), nil
}

// NewWithClient оборачивает уже подключённого клиента.
func NewWithClient(client *mongo.Client, database string) *Storage {
	db := client.Database(database)
	return &Storage{
		Client:   client,
		DB:       db,
		users:    db.Collection(UsersCollection),
		contacts: db.Collection(ContactsCollection),
	}
}

// Ping проверяет доступность базы данных.
func (s *Storage) Ping(ctx context.Context) error {
	const op = "storage.Ping"
	if err := s.DB.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает пул соединений.
func (s *Storage) Close(ctx context.Context) error {
	const op = "storage.Close"
	if err := s.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
