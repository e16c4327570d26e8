package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStockRevenue(t *testing.T) {
	assert.Equal(t, int64(1500), Stock{Count: 10, Price: 150}.Revenue())
	assert.Equal(t, int64(0), Stock{Count: 10, Price: 0}.Revenue())
}

func TestStockForSale(t *testing.T) {
	assert.True(t, Stock{Price: 150}.ForSale())
	assert.False(t, Stock{}.ForSale())
}

func TestStockDocumentValidate(t *testing.T) {
	assert.NoError(t, StockDocument{Group: "drink", Detail: "cola"}.Validate())
	assert.NoError(t, StockDocument{Detail: "cola"}.Validate())
	assert.ErrorIs(t, StockDocument{Count: 5, Rev: 2}.Validate(), ErrCorruptDocument)
}

func TestStockDocumentStock(t *testing.T) {
	doc := StockDocument{Group: "drink", Detail: "cola", Count: 7, Price: 150, Rev: 3}
	stock := doc.Stock("id-1")

	assert.Equal(t, Stock{ID: "id-1", Group: "drink", Detail: "cola", Count: 7, Price: 150}, stock)
}
