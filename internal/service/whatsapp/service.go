package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ymgn/stockkeeper/internal/config"
	"github.com/ymgn/stockkeeper/internal/domain/models"
	"github.com/ymgn/stockkeeper/internal/service/commands"
	"github.com/ymgn/stockkeeper/internal/service/ledger"
	"github.com/ymgn/stockkeeper/pkg/clients/anthropic"
	client "github.com/ymgn/stockkeeper/pkg/clients/whatsapp"
)

// MessagingService describes the operations the HTTP layer and the scheduler
// can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
	PublishBoard(ctx context.Context) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	ai         anthropic.Client
	dispatcher commands.Dispatcher
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance. ai may be nil; free
// text then only goes through the slash-command parser.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, ai anthropic.Client, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:        cfg,
		client:     client,
		ai:         ai,
		dispatcher: dispatcher,
		logger:     logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

const unknownCommandReply = "コマンドを認識できませんでした。/help で使い方を確認できます。"

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook processes inbound webhook payloads.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	if len(payload.Entry) == 0 {
		return nil
	}

	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if len(change.Value.Messages) == 0 {
				continue
			}

			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	if msg.Interactive != nil {
		if token := interactiveReplyID(msg); token != "" {
			return s.handleControl(ctx, msg.From, token)
		}
	}

	text := ""
	if msg.Text != nil {
		text = msg.Text.Body
	}
	if text == "" {
		return errors.New("empty message body")
	}

	cmd := models.ParseCommand(text)
	if cmd.Type == models.CommandUnknown && s.ai != nil {
		cmd = s.translate(ctx, text)
	}

	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Any("args", cmd.Args))

	if cmd.Type == models.CommandUnknown {
		return s.sendText(ctx, msg.From, unknownCommandReply)
	}

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	if err != nil {
		s.logger.Warn("command failed", zap.String("command", string(cmd.Type)), zap.Error(err))
		return s.sendText(ctx, msg.From, userFacingError(err))
	}

	if reply.Text != "" {
		if err := s.sendText(ctx, msg.From, reply.Text); err != nil {
			return err
		}
	}
	return s.sendCards(ctx, msg.From, reply.Cards)
}

// handleControl applies a +/- button press. The button id carries the stock
// id embedded when the card was rendered; the press comes back with it and
// the updated card is sent in response.
func (s *MetaWhatsAppService) handleControl(ctx context.Context, from, token string) error {
	action, id, ok := models.ParseControlToken(token)
	if !ok {
		s.logger.Warn("unrecognized button payload", zap.String("token", token))
		return s.sendText(ctx, from, unknownCommandReply)
	}

	card, err := s.dispatcher.HandleControl(ctx, action, id)
	if err != nil {
		s.logger.Warn("control activation failed", zap.String("id", id), zap.Error(err))
		return s.sendText(ctx, from, userFacingError(err))
	}

	return s.sendCards(ctx, from, []models.StockCard{card})
}

// translate runs the free-text fallback. Translation failures degrade to the
// unknown command, never to a user-visible error.
func (s *MetaWhatsAppService) translate(ctx context.Context, text string) models.Command {
	translated, err := s.ai.TranslateToCommand(ctx, text)
	if err != nil {
		s.logger.Debug("ai translation failed", zap.Error(err))
		return models.Command{Type: models.CommandUnknown, Raw: text}
	}
	return models.ParseCommand(translated)
}

// SendOutbound lets internal operators push quick notifications via HTTP.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         req.To,
		Body:       req.Message,
		PreviewURL: req.PreviewURL,
	})
	return err
}

// PublishBoard sends the full stock board, one card per record in group
// order, to the configured board chat.
func (s *MetaWhatsAppService) PublishBoard(ctx context.Context) error {
	reply, err := s.dispatcher.HandleCommand(ctx, models.Command{Type: models.CommandSortByGroup}, "board")
	if err != nil {
		return fmt.Errorf("build stock board: %w", err)
	}
	return s.sendCards(ctx, s.cfg.BoardID, reply.Cards)
}

func (s *MetaWhatsAppService) sendText(ctx context.Context, to, body string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:   to,
		Body: body,
	})
	return err
}

func (s *MetaWhatsAppService) sendCards(ctx context.Context, to string, cards []models.StockCard) error {
	for _, card := range cards {
		buttons := make([]client.ReplyButton, 0, len(card.Buttons))
		for _, b := range card.Buttons {
			buttons = append(buttons, client.ReplyButton{ID: b.ID, Label: b.Label})
		}

		ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
		_, err := s.client.SendInteractiveMessage(ctxWithTimeout, client.SendInteractiveMessageRequest{
			To:      to,
			Header:  card.Title,
			Body:    card.Body,
			Footer:  card.FooterID,
			Buttons: buttons,
		})
		cancel()
		if err != nil {
			return err
		}
	}
	return nil
}

// userFacingError maps dispatcher failures to chat replies. Anything not in
// the taxonomy reads as a transient backend problem.
func userFacingError(err error) string {
	switch {
	case errors.Is(err, ledger.ErrStockNotFound):
		return "商品が見つかりませんでした"
	case errors.Is(err, ledger.ErrCountOverflow):
		return "在庫数が上限に達しています"
	case errors.Is(err, ledger.ErrUpdateConflict):
		return "更新が混み合っています。もう一度お試しください"
	case errors.Is(err, commands.ErrInvalidArguments):
		return "コマンドの引数が正しくありません"
	case errors.Is(err, commands.ErrUnsupportedCommand):
		return unknownCommandReply
	default:
		return "エラーが発生しました。しばらくしてからもう一度お試しください"
	}
}

func interactiveReplyID(msg models.InboundMessage) string {
	if msg.Interactive == nil {
		return ""
	}
	if msg.Interactive.ButtonReply != nil {
		return msg.Interactive.ButtonReply.ID
	}
	if msg.Interactive.ListReply != nil {
		return msg.Interactive.ListReply.ID
	}
	return ""
}
