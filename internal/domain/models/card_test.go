package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStockCardPriced(t *testing.T) {
	card := NewStockCard(Stock{ID: "id-1", Group: "drink", Detail: "cola", Count: 10, Price: 150})

	assert.Equal(t, "drink（cola） - ¥150", card.Title)
	assert.Contains(t, card.Body, "個数: 10個")
	assert.Contains(t, card.Body, "売上: 1500円")
	assert.Equal(t, "id-1", card.FooterID)
	require.Len(t, card.Buttons, 2)
}

func TestNewStockCardUnpriced(t *testing.T) {
	card := NewStockCard(Stock{ID: "id-2", Group: "etc", Detail: "sticker", Count: 3, Price: 0})

	assert.Equal(t, "sticker", card.Title)
	assert.Contains(t, card.Body, "売上: 0円")
}

func TestControlTokenRoundTrip(t *testing.T) {
	for _, action := range []ControlAction{ControlIncrease, ControlDecrease} {
		token := ControlToken(action, "id-1")

		got, id, ok := ParseControlToken(token)
		require.True(t, ok)
		assert.Equal(t, action, got)
		assert.Equal(t, "id-1", id)
	}
}

func TestCardButtonsCarryTheRecordID(t *testing.T) {
	card := NewStockCard(Stock{ID: "id-9", Group: "drink", Detail: "tea", Price: 120})

	for _, button := range card.Buttons {
		_, id, ok := ParseControlToken(button.ID)
		require.True(t, ok)
		assert.Equal(t, card.FooterID, id)
	}
}

func TestParseControlTokenRejectsGarbage(t *testing.T) {
	for _, token := range []string{"", "incr", "incr:", "reset:id-1", "id-1"} {
		_, _, ok := ParseControlToken(token)
		assert.False(t, ok, "token %q should not parse", token)
	}
}
