package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ymgn/stockkeeper/internal/domain/models"
	"github.com/ymgn/stockkeeper/internal/service/ledger"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

const helpText = "使えるコマンド:\n" +
	"/add_stock <グループ> <商品名> <価格>\n" +
	"/remove_stock <ID>\n" +
	"/get_all_stocks\n" +
	"/search_stock <商品名>\n" +
	"/sort_by_group  /sort_by_count  /sort_by_price\n" +
	"/calc_total_sales\n" +
	"/ping"

// Reporter defines the reporting functions required by the dispatcher.
type Reporter interface {
	SalesSummary(ctx context.Context) (string, error)
}

// Dispatcher executes parsed commands and control activations against the
// stock ledger.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (models.CommandReply, error)
	HandleControl(ctx context.Context, action models.ControlAction, id string) (models.StockCard, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	ledger    ledger.Ledger
	reporting Reporter
	logger    *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(ledgerSvc ledger.Ledger, reporting Reporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ledger:    ledgerSvc,
		reporting: reporting,
		logger:    logger,
	}
}

// HandleCommand runs the ledger operation behind a slash command and builds
// the chat reply.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (models.CommandReply, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Any("args", cmd.Args))

	switch cmd.Type {
	case models.CommandPing:
		return models.CommandReply{Text: "Pong!"}, nil

	case models.CommandAddStock:
		group, detail, price, err := parseAddArgs(cmd.Args)
		if err != nil {
			return models.CommandReply{}, err
		}
		stock, err := s.ledger.Add(ctx, group, detail, price)
		if err != nil {
			return models.CommandReply{}, err
		}
		return models.CommandReply{
			Text:  "商品が追加されました",
			Cards: []models.StockCard{models.NewStockCard(stock)},
		}, nil

	case models.CommandRemoveStock:
		if len(cmd.Args) != 1 {
			return models.CommandReply{}, ErrInvalidArguments
		}
		if err := s.ledger.Remove(ctx, cmd.Args[0]); err != nil {
			return models.CommandReply{}, err
		}
		return models.CommandReply{Text: "商品は削除されました"}, nil

	case models.CommandGetAllStocks:
		stocks, err := s.ledger.List(ctx)
		if err != nil {
			return models.CommandReply{}, err
		}
		return models.CommandReply{Text: formatStockList(stocks)}, nil

	case models.CommandSearchStock:
		if len(cmd.Args) == 0 {
			return models.CommandReply{}, ErrInvalidArguments
		}
		return s.searchStock(ctx, strings.Join(cmd.Args, " "))

	case models.CommandSortByGroup:
		return s.sortedBoard(ctx, ledger.SortByGroup, "商品はグループ順に並べ替えられました")

	case models.CommandSortByCount:
		return s.sortedBoard(ctx, ledger.SortByCount, "商品は売上個数順に並べ替えられました")

	case models.CommandSortByPrice:
		return s.sortedBoard(ctx, ledger.SortByPrice, "商品は価格順に並べ替えられました")

	case models.CommandCalcTotal:
		summary, err := s.reporting.SalesSummary(ctx)
		if err != nil {
			return models.CommandReply{}, err
		}
		return models.CommandReply{Text: summary}, nil

	case models.CommandHelp:
		return models.CommandReply{Text: helpText}, nil

	default:
		return models.CommandReply{}, ErrUnsupportedCommand
	}
}

// HandleControl applies one button press: the counter moves by exactly one.
func (s *Service) HandleControl(ctx context.Context, action models.ControlAction, id string) (models.StockCard, error) {
	var (
		stock models.Stock
		err   error
	)

	switch action {
	case models.ControlIncrease:
		stock, err = s.ledger.Increment(ctx, id, 1)
	case models.ControlDecrease:
		stock, err = s.ledger.Decrement(ctx, id, 1)
	default:
		return models.StockCard{}, ErrUnsupportedCommand
	}
	if err != nil {
		return models.StockCard{}, err
	}

	return models.NewStockCard(stock), nil
}

func (s *Service) searchStock(ctx context.Context, query string) (models.CommandReply, error) {
	stocks, err := s.ledger.List(ctx)
	if err != nil {
		return models.CommandReply{}, err
	}

	var cards []models.StockCard
	for _, stock := range stocks {
		if strings.Contains(stock.Detail, query) {
			cards = append(cards, models.NewStockCard(stock))
		}
	}

	if len(cards) == 0 {
		return models.CommandReply{Text: fmt.Sprintf("「%s」は見つかりませんでした", query)}, nil
	}
	return models.CommandReply{
		Text:  fmt.Sprintf("「%s」の検索結果: %d件", query, len(cards)),
		Cards: cards,
	}, nil
}

func (s *Service) sortedBoard(ctx context.Context, order func([]models.Stock), confirmation string) (models.CommandReply, error) {
	stocks, err := s.ledger.List(ctx)
	if err != nil {
		return models.CommandReply{}, err
	}

	order(stocks)

	cards := make([]models.StockCard, 0, len(stocks))
	for _, stock := range stocks {
		cards = append(cards, models.NewStockCard(stock))
	}

	return models.CommandReply{Text: confirmation, Cards: cards}, nil
}

// parseAddArgs splits "group detail... price". The detail may contain spaces;
// the price is always the trailing argument.
func parseAddArgs(args []string) (group, detail string, price int64, err error) {
	if len(args) < 3 {
		return "", "", 0, ErrInvalidArguments
	}

	price, err = strconv.ParseInt(args[len(args)-1], 10, 64)
	if err != nil {
		return "", "", 0, ErrInvalidArguments
	}

	group = args[0]
	detail = strings.Join(args[1:len(args)-1], " ")
	return group, detail, price, nil
}

func formatStockList(stocks []models.Stock) string {
	if len(stocks) == 0 {
		return "商品がまだ登録されていません。"
	}

	lines := make([]string, 0, len(stocks))
	for _, stock := range stocks {
		lines = append(lines, fmt.Sprintf("%s(%d) - 売上: %d個", stock.Detail, stock.Price, stock.Count))
	}
	return strings.Join(lines, "\n")
}
