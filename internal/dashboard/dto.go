package dashboard

// LowStockItem is a product running low.
type LowStockItem struct {
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

// TopProduct is a best seller by number of orders.
type TopProduct struct {
	Name       string `json:"name"`
	OrderCount int64  `json:"order_count"`
}

// StatsDTO is the dashboard landing payload.
type StatsDTO struct {
	TotalStock       int            `json:"total_stock"`
	TotalProducts    int64          `json:"total_products"`
	LowStockProducts []LowStockItem `json:"low_stock_products"`
	TopProducts      []TopProduct   `json:"top_products"`
	PendingOrders    int64          `json:"pending_orders"`
}

// SummaryItem is one row of the inventory summary table.
type SummaryItem struct {
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Status   string `json:"status"`
}

// StockChartDTO holds parallel arrays for the stock-over-time chart.
type StockChartDTO struct {
	Dates       []string `json:"dates"`
	StockLevels []int    `json:"stock_levels"`
}
