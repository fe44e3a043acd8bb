package reports

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func item(name, category string, cost, sell float64, qty, threshold int) Item {
	return Item{
		ID:                uuid.New(),
		Name:              name,
		CategoryName:      category,
		CostPrice:         cost,
		SellingPrice:      sell,
		StockQuantity:     qty,
		LowStockThreshold: threshold,
	}
}

func TestComputeStatsTotals(t *testing.T) {
	items := []Item{
		item("a", "", 10, 15, 2, 5),
		item("b", "", 20, 30, 3, 1),
	}

	s := ComputeStats(items)
	require.Equal(t, 2, s.TotalProducts)
	require.Equal(t, 80.0, s.TotalValue)
	require.Equal(t, 120.0, s.PotentialRevenue)
	require.Equal(t, 40.0, s.PotentialProfit)
	require.Equal(t, s.PotentialRevenue-s.TotalValue, s.PotentialProfit)
	require.Equal(t, 1, s.LowStockCount)
	require.Equal(t, 0, s.OutOfStockCount)
}

func TestComputeStatsLowStockIsStrict(t *testing.T) {
	// A product exactly at its threshold does not count as low stock.
	s := ComputeStats([]Item{item("edge", "", 1, 2, 5, 5)})
	require.Equal(t, 0, s.LowStockCount)

	s = ComputeStats([]Item{item("below", "", 1, 2, 4, 5)})
	require.Equal(t, 1, s.LowStockCount)
}

func TestComputeStatsDeterministic(t *testing.T) {
	items := []Item{
		item("a", "x", 3.5, 7.25, 11, 2),
		item("b", "y", 0, 1, 0, 1),
	}
	first := ComputeStats(items)
	second := ComputeStats(items)
	require.Equal(t, first, second)
	require.Equal(t, 1, first.OutOfStockCount)
}

func TestCategoryRollupInsertionOrder(t *testing.T) {
	items := []Item{
		item("a", "Tools", 2, 4, 3, 1),
		item("b", "", 5, 8, 1, 1),
		item("c", "Tools", 1, 2, 2, 1),
		item("d", "Paint", 3, 6, 4, 1),
	}

	groups := CategoryRollup(items)
	require.Len(t, groups, 3)
	require.Equal(t, "Tools", groups[0].Name)
	require.Equal(t, "Uncategorized", groups[1].Name)
	require.Equal(t, "Paint", groups[2].Name)

	require.Equal(t, 2, groups[0].Products)
	require.Equal(t, 5, groups[0].Quantity)
	require.Equal(t, 8.0, groups[0].Value)
}

func TestTopProductsRankingAndTies(t *testing.T) {
	items := []Item{
		item("cheap", "", 1, 2, 1, 1),   // value 2
		item("first", "", 1, 10, 3, 1),  // value 30
		item("twin-a", "", 1, 5, 2, 1),  // value 10
		item("twin-b", "", 1, 10, 1, 1), // value 10
	}

	top := TopProducts(items, 3)
	require.Len(t, top, 3)
	require.Equal(t, "first", top[0].Name)
	// Ties keep snapshot order.
	require.Equal(t, "twin-a", top[1].Name)
	require.Equal(t, "twin-b", top[2].Name)
	require.Equal(t, 30.0, top[0].StockValue)
}

func TestTopProductsLimitLargerThanInput(t *testing.T) {
	top := TopProducts([]Item{item("only", "", 1, 2, 3, 1)}, 10)
	require.Len(t, top, 1)
}
