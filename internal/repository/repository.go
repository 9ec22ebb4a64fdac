package repository

import (
	"context"
	"database/sql"
	"time"

	"meross_emulator/internal/models"
)

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Count(ctx context.Context) (int, error)
}

// DescriptorRepo persists device descriptor snapshots across restarts.
type DescriptorRepo interface {
	Save(ctx context.Context, d models.Descriptor) error
	Load(ctx context.Context, uuid string) (*models.Descriptor, error)
	List(ctx context.Context) ([]models.Descriptor, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.DeviceEvent) error
	List(ctx context.Context, f EventQuery) ([]models.DeviceEvent, error)
}

// EventQuery filters events; zero fields are not applied.
type EventQuery struct {
	DeviceID string
	From     time.Time
	To       time.Time
	Type     string
}

type Repository struct {
	Descriptors DescriptorRepo
	EventRepo   EventRepo
	Auth        Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Descriptors: NewDescriptorSQLite(db),
		EventRepo:   NewEventSQLite(db),
		Auth:        NewUserRepository(db),
	}
}
