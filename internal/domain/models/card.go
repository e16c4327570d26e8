package models

import (
	"fmt"
	"strings"
)

// ControlAction identifies which counter button was pressed on a card.
type ControlAction string

const (
	ControlIncrease ControlAction = "incr"
	ControlDecrease ControlAction = "decr"
)

// StockCard is the display payload for one stock record. FooterID carries the
// record id through the rendered message so a later button press can address
// the same record.
type StockCard struct {
	Title    string
	Body     string
	FooterID string
	Buttons  []CardButton
}

// CardButton is one interactive control attached to a card. ID is the opaque
// payload echoed back when the button is pressed.
type CardButton struct {
	ID    string
	Label string
}

// NewStockCard renders the display payload for a record. Unpriced items show
// only the detail name; priced items show group, detail and unit price.
func NewStockCard(s Stock) StockCard {
	title := s.Detail
	if s.ForSale() {
		title = fmt.Sprintf("%s（%s） - ¥%d", s.Group, s.Detail, s.Price)
	}

	return StockCard{
		Title:    title,
		Body:     fmt.Sprintf("個数: %d個\n売上: %d円", s.Count, s.Revenue()),
		FooterID: s.ID,
		Buttons: []CardButton{
			{ID: ControlToken(ControlIncrease, s.ID), Label: "➕ 増やす"},
			{ID: ControlToken(ControlDecrease, s.ID), Label: "➖ 減らす"},
		},
	}
}

// ControlToken builds a button id carrying the stock id.
func ControlToken(action ControlAction, id string) string {
	return string(action) + ":" + id
}

// ParseControlToken recovers the action and stock id from a button id.
// Returns false for payloads that are not counter controls.
func ParseControlToken(token string) (ControlAction, string, bool) {
	head, id, found := strings.Cut(token, ":")
	if !found || id == "" {
		return "", "", false
	}

	switch ControlAction(head) {
	case ControlIncrease, ControlDecrease:
		return ControlAction(head), id, true
	default:
		return "", "", false
	}
}
