package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uxwatch/uxwatch/internal/domain/model"
	"github.com/uxwatch/uxwatch/internal/domain/port/outbound"
)

// DeliveryRepo implements outbound.DeliveryRepository using SQLite.
type DeliveryRepo struct {
	db *sql.DB
}

var _ outbound.DeliveryRepository = (*DeliveryRepo)(nil)

// NewDeliveryRepo creates a new DeliveryRepo backed by the given store.
func NewDeliveryRepo(store *Store) *DeliveryRepo {
	return &DeliveryRepo{db: store.DB}
}

// Create inserts a new delivery row and returns the stored delivery.
func (r *DeliveryRepo) Create(ctx context.Context, d model.Delivery) (model.Delivery, error) {
	const q = `INSERT INTO deliveries
		(id, target_handle, channel_id, text, attachment_sent, outcome, created_at)
		VALUES (?,?,?,?,?,?,?)`

	_, err := r.db.ExecContext(ctx, q,
		d.ID, d.TargetHandle, d.ChannelID, d.Text,
		d.AttachmentSent, string(d.Outcome), d.CreatedAt.UTC(),
	)
	if err != nil {
		return model.Delivery{}, fmt.Errorf("inserting delivery: %w", err)
	}
	return d, nil
}

// ListRecent returns the most recent deliveries, newest first.
func (r *DeliveryRepo) ListRecent(ctx context.Context, limit int) ([]model.Delivery, error) {
	if limit <= 0 {
		limit = 20
	}

	const q = `SELECT id, target_handle, channel_id, text, attachment_sent, outcome, created_at
		FROM deliveries ORDER BY created_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("listing deliveries: %w", err)
	}
	defer rows.Close()

	var items []model.Delivery
	for rows.Next() {
		var d model.Delivery
		var outcome string
		if err := rows.Scan(&d.ID, &d.TargetHandle, &d.ChannelID, &d.Text,
			&d.AttachmentSent, &outcome, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning delivery: %w", err)
		}
		d.Outcome = model.DeliveryOutcome(outcome)
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating deliveries: %w", err)
	}
	return items, nil
}
