package models

import "errors"

// MaxCount is the ceiling on a stock count. Increments that would push a
// record past it are rejected outright.
const MaxCount int64 = 9_000_000_000_000_000

// Stock represents one inventory item tracked by the bot.
type Stock struct {
	ID     string
	Group  string
	Detail string
	Count  int64
	Price  int64
}

// Revenue returns the sales amount the current count represents.
func (s Stock) Revenue() int64 {
	return s.Count * s.Price
}

// ForSale reports whether the item carries a price. Unpriced items are
// displayed by detail name only.
func (s Stock) ForSale() bool {
	return s.Price != 0
}

// StockDocument is the persisted shape of a stock record. The derived id is
// the document key, not a field of the value. Rev is the optimistic
// concurrency token bumped on every write.
type StockDocument struct {
	Group  string `bson:"group" json:"group"`
	Detail string `bson:"detail" json:"detail"`
	Count  int64  `bson:"count" json:"count"`
	Price  int64  `bson:"price" json:"price"`
	Rev    int64  `bson:"rev" json:"rev"`
}

// ErrCorruptDocument indicates a stored document decoded without its
// identifying fields.
var ErrCorruptDocument = errors.New("stock document missing group and detail")

// Validate rejects documents that lost their identifying fields, instead of
// letting zero values propagate into the ledger.
func (d StockDocument) Validate() error {
	if d.Group == "" && d.Detail == "" {
		return ErrCorruptDocument
	}
	return nil
}

// Stock attaches the document key and returns the domain record.
func (d StockDocument) Stock(id string) Stock {
	return Stock{
		ID:     id,
		Group:  d.Group,
		Detail: d.Detail,
		Count:  d.Count,
		Price:  d.Price,
	}
}
