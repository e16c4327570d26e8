package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ymgn/stockkeeper/internal/repository/sheets"
	"github.com/ymgn/stockkeeper/internal/service/ledger"
)

const (
	snapshotRange = "Snapshots!A:F"
	dateFormat    = "2006-01-02"
)

// Service aggregates ledger contents into sales summaries and snapshot
// exports.
type Service struct {
	ledger   ledger.Ledger
	exporter sheets.Exporter
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new reporting service instance. exporter may be nil, in
// which case snapshot export becomes a no-op.
func NewService(ledgerSvc ledger.Ledger, exporter sheets.Exporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ledger:   ledgerSvc,
		exporter: exporter,
		logger:   logger,
		now:      time.Now,
	}
}

// SalesSummary returns the per-item revenue breakdown and grand total,
// formatted for chat. Items are listed in group order.
func (s *Service) SalesSummary(ctx context.Context) (string, error) {
	stocks, err := s.ledger.List(ctx)
	if err != nil {
		return "", fmt.Errorf("load stocks for summary: %w", err)
	}

	if len(stocks) == 0 {
		return "商品がまだ登録されていません。", nil
	}

	ledger.SortByGroup(stocks)

	var b strings.Builder
	b.WriteString("売上一覧\n")

	var total int64
	for _, stock := range stocks {
		revenue := stock.Revenue()
		total += revenue
		fmt.Fprintf(&b, "- %s（%s）: %d円\n", stock.Group, stock.Detail, revenue)
	}

	fmt.Fprintf(&b, "\n総売上: %d円", total)
	return b.String(), nil
}

// ExportSnapshot appends one dated row per stock to the configured
// spreadsheet: date, group, detail, count, price, revenue.
func (s *Service) ExportSnapshot(ctx context.Context) error {
	if s.exporter == nil {
		return nil
	}

	stocks, err := s.ledger.List(ctx)
	if err != nil {
		return fmt.Errorf("load stocks for snapshot: %w", err)
	}

	ledger.SortByGroup(stocks)
	date := s.now().Format(dateFormat)

	rows := make([][]interface{}, 0, len(stocks))
	for _, stock := range stocks {
		rows = append(rows, []interface{}{date, stock.Group, stock.Detail, stock.Count, stock.Price, stock.Revenue()})
	}

	if err := s.exporter.AppendRows(ctx, snapshotRange, rows); err != nil {
		return err
	}

	s.logger.Info("ledger snapshot exported", zap.String("date", date), zap.Int("stocks", len(rows)))
	return nil
}
