package dashboard

import (
	"context"

	"github.com/google/uuid"

	"github.com/mrivera-dev/stockroom-backend/pkg/db/models"
	"github.com/mrivera-dev/stockroom-backend/pkg/enums"
	pkgerrors "github.com/mrivera-dev/stockroom-backend/pkg/errors"
)

type repository interface {
	TotalStock(ctx context.Context, userID uuid.UUID) (int, error)
	ProductCount(ctx context.Context, userID uuid.UUID) (int64, error)
	LowStock(ctx context.Context, userID uuid.UUID) ([]LowStockItem, error)
	TopProducts(ctx context.Context, userID uuid.UUID) ([]TopProduct, error)
	PendingOrders(ctx context.Context, userID uuid.UUID) (int64, error)
	InventorySummary(ctx context.Context, userID uuid.UUID) ([]models.Product, error)
	StockMovements(ctx context.Context, userID uuid.UUID) ([]models.InventoryLog, error)
}

// Service aggregates owner-scoped read models for the dashboard. It never
// writes; all numbers derive from products, orders, and the log.
type Service struct {
	repo repository
}

// NewService builds the dashboard service.
func NewService(repo repository) *Service {
	return &Service{repo: repo}
}

// Stats assembles the headline numbers for the dashboard landing view.
func (s *Service) Stats(ctx context.Context, userID uuid.UUID) (*StatsDTO, error) {
	totalStock, err := s.repo.TotalStock(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "total stock")
	}
	productCount, err := s.repo.ProductCount(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "product count")
	}
	lowStock, err := s.repo.LowStock(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "low stock")
	}
	topProducts, err := s.repo.TopProducts(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top products")
	}
	pending, err := s.repo.PendingOrders(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "pending orders")
	}

	if lowStock == nil {
		lowStock = []LowStockItem{}
	}
	if topProducts == nil {
		topProducts = []TopProduct{}
	}
	return &StatsDTO{
		TotalStock:       totalStock,
		TotalProducts:    productCount,
		LowStockProducts: lowStock,
		TopProducts:      topProducts,
		PendingOrders:    pending,
	}, nil
}

// InventorySummary lists every product with an out-of-stock marker.
func (s *Service) InventorySummary(ctx context.Context, userID uuid.UUID) ([]SummaryItem, error) {
	products, err := s.repo.InventorySummary(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "inventory summary")
	}

	items := make([]SummaryItem, 0, len(products))
	for _, p := range products {
		item := SummaryItem{
			Name:     p.Name,
			SKU:      p.SKU,
			Quantity: p.Quantity,
		}
		if p.Quantity == 0 {
			item.Status = "Out of Stock"
		}
		items = append(items, item)
	}
	return items, nil
}

// StockChart replays the log oldest first into a running total, one data
// point per movement. Since every quantity change is paired with a log
// row, the final point always equals the current total stock.
func (s *Service) StockChart(ctx context.Context, userID uuid.UUID) (*StockChartDTO, error) {
	logs, err := s.repo.StockMovements(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stock movements")
	}

	chart := &StockChartDTO{
		Dates:       make([]string, 0, len(logs)),
		StockLevels: make([]int, 0, len(logs)),
	}
	running := 0
	for _, log := range logs {
		switch log.ChangeType {
		case enums.ChangeTypeAdded:
			running += log.Quantity
		case enums.ChangeTypeRemoved, enums.ChangeTypeSold:
			running -= log.Quantity
		}
		chart.Dates = append(chart.Dates, log.CreatedAt.Format("2006-01-02"))
		chart.StockLevels = append(chart.StockLevels, running)
	}
	return chart, nil
}
