package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"meross_emulator/internal/models"
)

type DescriptorSQLite struct {
	db *sql.DB
}

func NewDescriptorSQLite(db *sql.DB) *DescriptorSQLite {
	return &DescriptorSQLite{db: db}
}

var _ DescriptorRepo = (*DescriptorSQLite)(nil)

const (
	upsertDescriptorSQL = `
		INSERT INTO device_descriptors (uuid, type, descriptor, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(uuid) DO UPDATE SET
			type=excluded.type,
			descriptor=excluded.descriptor,
			updated_at=excluded.updated_at
	`

	selectDescriptorSQL = `SELECT descriptor FROM device_descriptors WHERE uuid=?`

	listDescriptorsSQL = `SELECT descriptor FROM device_descriptors ORDER BY uuid ASC`
)

// Save upserts the snapshot of one device. The device key is never stored.
func (r *DescriptorSQLite) Save(ctx context.Context, d models.Descriptor) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal descriptor %s: %w", d.UUID, err)
	}
	_, err = r.db.ExecContext(ctx, upsertDescriptorSQL, d.UUID, d.Type, string(b), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save descriptor %s: %w", d.UUID, err)
	}
	return nil
}

// Load fetches a snapshot by uuid. Returns (nil, nil) if none was saved.
func (r *DescriptorSQLite) Load(ctx context.Context, uuid string) (*models.Descriptor, error) {
	var raw string
	if err := r.db.QueryRowContext(ctx, selectDescriptorSQL, uuid).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load descriptor %s: %w", uuid, err)
	}
	d, err := unmarshalDescriptor(raw)
	if err != nil {
		return nil, fmt.Errorf("decode descriptor %s: %w", uuid, err)
	}
	return d, nil
}

// List returns every saved snapshot ordered by uuid.
func (r *DescriptorSQLite) List(ctx context.Context) ([]models.Descriptor, error) {
	rows, err := r.db.QueryContext(ctx, listDescriptorsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Descriptor
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		d, err := unmarshalDescriptor(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func unmarshalDescriptor(raw string) (*models.Descriptor, error) {
	var d models.Descriptor
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, err
	}
	return &d, nil
}
