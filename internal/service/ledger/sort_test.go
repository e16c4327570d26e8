package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ymgn/stockkeeper/internal/domain/models"
)

func sampleStocks() []models.Stock {
	return []models.Stock{
		{ID: "a", Group: "food", Detail: "curry", Count: 3, Price: 800},
		{ID: "b", Group: "drink", Detail: "cola", Count: 12, Price: 150},
		{ID: "c", Group: "drink", Detail: "tea", Count: 3, Price: 120},
		{ID: "d", Group: "etc", Detail: "sticker", Count: 7, Price: 0},
	}
}

func TestSortByCountDescending(t *testing.T) {
	stocks := sampleStocks()
	SortByCount(stocks)

	for i := 1; i < len(stocks); i++ {
		assert.GreaterOrEqual(t, stocks[i-1].Count, stocks[i].Count)
	}
	// Tie between a and c keeps incoming order.
	assert.Equal(t, "a", stocks[2].ID)
	assert.Equal(t, "c", stocks[3].ID)
}

func TestSortByPriceDescending(t *testing.T) {
	stocks := sampleStocks()
	SortByPrice(stocks)

	for i := 1; i < len(stocks); i++ {
		assert.GreaterOrEqual(t, stocks[i-1].Price, stocks[i].Price)
	}
	assert.Equal(t, "a", stocks[0].ID)
	assert.Equal(t, "d", stocks[3].ID)
}

func TestSortByGroupAscending(t *testing.T) {
	stocks := sampleStocks()
	SortByGroup(stocks)

	for i := 1; i < len(stocks); i++ {
		assert.LessOrEqual(t, stocks[i-1].Group, stocks[i].Group)
	}
	// Tie between the two drink entries keeps incoming order.
	assert.Equal(t, "b", stocks[0].ID)
	assert.Equal(t, "c", stocks[1].ID)
}

func TestSortIsDeterministic(t *testing.T) {
	first := sampleStocks()
	second := sampleStocks()

	SortByCount(first)
	SortByCount(second)
	assert.Equal(t, first, second)

	SortByGroup(first)
	SortByGroup(second)
	assert.Equal(t, first, second)
}
