package models

import "strings"

// CommandType enumerates the slash commands users can issue in chat.
type CommandType string

const (
	CommandPing         CommandType = "ping"
	CommandAddStock     CommandType = "add_stock"
	CommandRemoveStock  CommandType = "remove_stock"
	CommandGetAllStocks CommandType = "get_all_stocks"
	CommandSearchStock  CommandType = "search_stock"
	CommandSortByGroup  CommandType = "sort_by_group"
	CommandSortByCount  CommandType = "sort_by_count"
	CommandSortByPrice  CommandType = "sort_by_price"
	CommandCalcTotal    CommandType = "calc_total_sales"
	CommandHelp         CommandType = "help"
	CommandUnknown      CommandType = "unknown"
)

var commandNames = map[string]CommandType{
	string(CommandPing):         CommandPing,
	string(CommandAddStock):     CommandAddStock,
	string(CommandRemoveStock):  CommandRemoveStock,
	string(CommandGetAllStocks): CommandGetAllStocks,
	string(CommandSearchStock):  CommandSearchStock,
	string(CommandSortByGroup):  CommandSortByGroup,
	string(CommandSortByCount):  CommandSortByCount,
	string(CommandSortByPrice):  CommandSortByPrice,
	string(CommandCalcTotal):    CommandCalcTotal,
	string(CommandHelp):         CommandHelp,
}

// Command represents a parsed user instruction extracted from chat text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from free-form message text. The command
// word may carry a leading slash; arguments keep their original casing since
// group and detail labels are user data.
func ParseCommand(message string) Command {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return Command{Type: CommandUnknown, Raw: message}
	}

	tokens := strings.Fields(trimmed)
	cmd := Command{Raw: message}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	if commandType, ok := commandNames[head]; ok {
		cmd.Type = commandType
	} else {
		cmd.Type = CommandUnknown
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
