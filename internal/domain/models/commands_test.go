package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		wantType CommandType
		wantArgs []string
	}{
		{name: "slash prefix", message: "/add_stock drink cola 150", wantType: CommandAddStock, wantArgs: []string{"drink", "cola", "150"}},
		{name: "no slash", message: "get_all_stocks", wantType: CommandGetAllStocks},
		{name: "uppercase head", message: "/PING", wantType: CommandPing},
		{name: "args keep casing", message: "/search_stock Cola", wantType: CommandSearchStock, wantArgs: []string{"Cola"}},
		{name: "sort by count", message: "/sort_by_count", wantType: CommandSortByCount},
		{name: "sort by price", message: "/sort_by_price", wantType: CommandSortByPrice},
		{name: "sort by group", message: "/sort_by_group", wantType: CommandSortByGroup},
		{name: "total sales", message: "/calc_total_sales", wantType: CommandCalcTotal},
		{name: "remove", message: "/remove_stock abc-123", wantType: CommandRemoveStock, wantArgs: []string{"abc-123"}},
		{name: "help", message: "/help", wantType: CommandHelp},
		{name: "surrounding whitespace", message: "  /ping  ", wantType: CommandPing},
		{name: "free text", message: "こんにちは", wantType: CommandUnknown},
		{name: "empty", message: "", wantType: CommandUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := ParseCommand(tt.message)
			assert.Equal(t, tt.wantType, cmd.Type)
			assert.Equal(t, tt.wantArgs, cmd.Args)
			assert.Equal(t, tt.message, cmd.Raw)
		})
	}
}
