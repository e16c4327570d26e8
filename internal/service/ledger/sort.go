package ledger

import (
	"sort"

	"github.com/ymgn/stockkeeper/internal/domain/models"
)

// SortByCount orders stocks highest count first. Stable: ties keep their
// incoming relative order.
func SortByCount(stocks []models.Stock) {
	sort.SliceStable(stocks, func(i, j int) bool { return stocks[i].Count > stocks[j].Count })
}

// SortByPrice orders stocks highest price first.
func SortByPrice(stocks []models.Stock) {
	sort.SliceStable(stocks, func(i, j int) bool { return stocks[i].Price > stocks[j].Price })
}

// SortByGroup orders stocks by group label, lexicographic ascending.
func SortByGroup(stocks []models.Stock) {
	sort.SliceStable(stocks, func(i, j int) bool { return stocks[i].Group < stocks[j].Group })
}
