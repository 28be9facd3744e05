package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/mrivera-dev/stockroom-backend/pkg/db/models"
	"github.com/mrivera-dev/stockroom-backend/pkg/errors"
	"github.com/mrivera-dev/stockroom-backend/pkg/pagination"
)

// logReader is the slice of the repository the service needs for reads.
type logReader interface {
	ListByOwner(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.InventoryLog, error)
}

// Service exposes the read side of the inventory log.
type Service struct {
	repo logReader
}

// NewService builds the log read service.
func NewService(repo logReader) *Service {
	return &Service{repo: repo}
}

// Page is one page of log entries with the cursor for the next one.
type Page struct {
	Entries    []LogDTO `json:"entries"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

// List returns the caller's log entries, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*Page, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListByOwner(ctx, userID, pagination.Params{
		Limit:  limit,
		Cursor: params.Cursor,
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "list inventory log")
	}

	page := &Page{Entries: make([]LogDTO, 0, len(rows))}
	if len(rows) > limit {
		last := rows[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		rows = rows[:limit]
	}
	for i := range rows {
		page.Entries = append(page.Entries, NewLogDTO(&rows[i]))
	}
	return page, nil
}

// ListByOwner fetches the owner's log rows newest first, with the product
// preloaded for display. The query over-fetches by one row so the caller
// can detect whether a next page exists.
func (r *Repository) ListByOwner(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.InventoryLog, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "invalid cursor")
	}

	q := r.db.WithContext(ctx).
		Model(&models.InventoryLog{}).
		Joins("JOIN products ON products.id = inventory_logs.product_id").
		Where("products.user_id = ?", userID).
		Preload("Product").
		Order("inventory_logs.created_at DESC, inventory_logs.id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))
	if cursor != nil {
		q = q.Where(
			"(inventory_logs.created_at < ?) OR (inventory_logs.created_at = ? AND inventory_logs.id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.InventoryLog
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
