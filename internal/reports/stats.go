// Package reports computes dashboard aggregates over the current product
// snapshot. All computations here are pure; loading and caching live in the
// service layer.
package reports

import (
	"sort"

	"github.com/google/uuid"
)

// Item is the slice of product state the aggregations need.
type Item struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	SKU               string    `json:"sku,omitempty"`
	CategoryName      string    `json:"category_name,omitempty"`
	CostPrice         float64   `json:"cost_price"`
	SellingPrice      float64   `json:"selling_price"`
	StockQuantity     int       `json:"stock_quantity"`
	LowStockThreshold int       `json:"low_stock_threshold"`
}

// Stats summarises the whole inventory.
type Stats struct {
	TotalProducts    int     `json:"total_products"`
	TotalValue       float64 `json:"total_value"`
	PotentialRevenue float64 `json:"potential_revenue"`
	PotentialProfit  float64 `json:"potential_profit"`
	LowStockCount    int     `json:"low_stock_count"`
	OutOfStockCount  int     `json:"out_of_stock_count"`
}

// CategoryGroup is one rollup bucket keyed by category name.
type CategoryGroup struct {
	Name     string  `json:"name"`
	Products int     `json:"products"`
	Quantity int     `json:"quantity"`
	Value    float64 `json:"value"`
}

// TopProduct ranks an item by the retail value of its stock on hand.
type TopProduct struct {
	Item
	StockValue float64 `json:"stock_value"`
}

// ComputeStats folds the snapshot into inventory totals. Valuation uses cost
// price, revenue uses selling price, and low stock is strictly below the
// threshold. The profit identity PotentialProfit == PotentialRevenue -
// TotalValue holds exactly.
func ComputeStats(items []Item) Stats {
	var s Stats
	s.TotalProducts = len(items)
	for _, it := range items {
		qty := float64(it.StockQuantity)
		s.TotalValue += it.CostPrice * qty
		s.PotentialRevenue += it.SellingPrice * qty
		if it.StockQuantity < it.LowStockThreshold {
			s.LowStockCount++
		}
		if it.StockQuantity == 0 {
			s.OutOfStockCount++
		}
	}
	s.PotentialProfit = s.PotentialRevenue - s.TotalValue
	return s
}

// CategoryRollup groups the snapshot by resolved category name. Products
// without a category land in "Uncategorized". Groups appear in order of
// first encounter in the snapshot.
func CategoryRollup(items []Item) []CategoryGroup {
	index := make(map[string]int)
	var groups []CategoryGroup
	for _, it := range items {
		name := it.CategoryName
		if name == "" {
			name = "Uncategorized"
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, CategoryGroup{Name: name})
		}
		groups[i].Products++
		groups[i].Quantity += it.StockQuantity
		groups[i].Value += it.CostPrice * float64(it.StockQuantity)
	}
	return groups
}

// TopProducts ranks items by selling price times quantity on hand,
// descending. Ties keep snapshot order. The result is truncated to limit.
func TopProducts(items []Item, limit int) []TopProduct {
	ranked := make([]TopProduct, 0, len(items))
	for _, it := range items {
		ranked = append(ranked, TopProduct{
			Item:       it,
			StockValue: it.SellingPrice * float64(it.StockQuantity),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].StockValue > ranked[j].StockValue
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
