package whatsapp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ymgn/stockkeeper/internal/config"
	"github.com/ymgn/stockkeeper/internal/domain/models"
	"github.com/ymgn/stockkeeper/internal/service/ledger"
	client "github.com/ymgn/stockkeeper/pkg/clients/whatsapp"
)

type fakeClient struct {
	texts        []client.SendTextMessageRequest
	interactives []client.SendInteractiveMessageRequest
}

func (f *fakeClient) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendMessageResponse, error) {
	f.texts = append(f.texts, req)
	return &client.SendMessageResponse{}, nil
}

func (f *fakeClient) SendInteractiveMessage(_ context.Context, req client.SendInteractiveMessageRequest) (*client.SendMessageResponse, error) {
	f.interactives = append(f.interactives, req)
	return &client.SendMessageResponse{}, nil
}

type fakeDispatcher struct {
	lastCmd    models.Command
	lastSender string
	reply      models.CommandReply
	cmdErr     error

	lastAction models.ControlAction
	lastID     string
	card       models.StockCard
	ctlErr     error
}

func (f *fakeDispatcher) HandleCommand(_ context.Context, cmd models.Command, sender string) (models.CommandReply, error) {
	f.lastCmd = cmd
	f.lastSender = sender
	return f.reply, f.cmdErr
}

func (f *fakeDispatcher) HandleControl(_ context.Context, action models.ControlAction, id string) (models.StockCard, error) {
	f.lastAction = action
	f.lastID = id
	return f.card, f.ctlErr
}

func newTestService(dispatcher *fakeDispatcher) (*MetaWhatsAppService, *fakeClient) {
	chat := &fakeClient{}
	cfg := config.WhatsAppConfig{VerifyToken: "secret", BoardID: "board-chat"}
	return NewMetaWhatsAppService(cfg, chat, nil, dispatcher, nil), chat
}

func textPayload(from, body string) models.WebhookPayload {
	return models.WebhookPayload{Entry: []models.WebhookEntry{{
		Changes: []models.WebhookChange{{Value: models.WebhookValue{
			Messages: []models.InboundMessage{{
				From: from,
				ID:   "wamid.1",
				Type: "text",
				Text: &models.TextContent{Body: body},
			}},
		}}},
	}}}
}

func buttonPayload(from, buttonID string) models.WebhookPayload {
	return models.WebhookPayload{Entry: []models.WebhookEntry{{
		Changes: []models.WebhookChange{{Value: models.WebhookValue{
			Messages: []models.InboundMessage{{
				From: from,
				ID:   "wamid.2",
				Type: "interactive",
				Interactive: &models.InteractiveContent{
					Type:        "button_reply",
					ButtonReply: &models.ButtonReply{ID: buttonID},
				},
			}},
		}}},
	}}}
}

func TestVerifyWebhookToken(t *testing.T) {
	svc, _ := newTestService(&fakeDispatcher{})

	challenge, err := svc.VerifyWebhookToken("subscribe", "secret", "12345")
	require.NoError(t, err)
	assert.Equal(t, "12345", challenge)

	_, err = svc.VerifyWebhookToken("subscribe", "wrong", "12345")
	assert.Error(t, err)

	_, err = svc.VerifyWebhookToken("unsubscribe", "secret", "12345")
	assert.Error(t, err)

	_, err = svc.VerifyWebhookToken("", "", "12345")
	assert.Error(t, err)
}

func TestHandleWebhookTextCommand(t *testing.T) {
	dispatcher := &fakeDispatcher{reply: models.CommandReply{
		Text:  "商品が追加されました",
		Cards: []models.StockCard{{Title: "cola", Body: "個数: 0個", FooterID: "id-1"}},
	}}
	svc, chat := newTestService(dispatcher)

	err := svc.HandleWebhook(context.Background(), textPayload("user-1", "/add_stock drink cola 150"))
	require.NoError(t, err)

	assert.Equal(t, models.CommandAddStock, dispatcher.lastCmd.Type)
	assert.Equal(t, []string{"drink", "cola", "150"}, dispatcher.lastCmd.Args)
	assert.Equal(t, "user-1", dispatcher.lastSender)

	require.Len(t, chat.texts, 1)
	assert.Equal(t, "商品が追加されました", chat.texts[0].Body)
	require.Len(t, chat.interactives, 1)
	assert.Equal(t, "id-1", chat.interactives[0].Footer)
}

func TestHandleWebhookButtonReply(t *testing.T) {
	dispatcher := &fakeDispatcher{card: models.StockCard{Title: "cola", Body: "個数: 1個", FooterID: "id-1"}}
	svc, chat := newTestService(dispatcher)

	token := models.ControlToken(models.ControlIncrease, "id-1")
	err := svc.HandleWebhook(context.Background(), buttonPayload("user-1", token))
	require.NoError(t, err)

	assert.Equal(t, models.ControlIncrease, dispatcher.lastAction)
	assert.Equal(t, "id-1", dispatcher.lastID)

	require.Len(t, chat.interactives, 1)
	assert.Equal(t, "id-1", chat.interactives[0].Footer)
	assert.Equal(t, "user-1", chat.interactives[0].To)
}

func TestHandleWebhookControlFailureMapsToUserMessage(t *testing.T) {
	dispatcher := &fakeDispatcher{ctlErr: ledger.ErrStockNotFound}
	svc, chat := newTestService(dispatcher)

	token := models.ControlToken(models.ControlDecrease, "gone")
	err := svc.HandleWebhook(context.Background(), buttonPayload("user-1", token))
	require.NoError(t, err)

	require.Len(t, chat.texts, 1)
	assert.Equal(t, "商品が見つかりませんでした", chat.texts[0].Body)
	assert.Empty(t, chat.interactives)
}

func TestHandleWebhookOverflowMapsToUserMessage(t *testing.T) {
	dispatcher := &fakeDispatcher{ctlErr: ledger.ErrCountOverflow}
	svc, chat := newTestService(dispatcher)

	token := models.ControlToken(models.ControlIncrease, "full")
	require.NoError(t, svc.HandleWebhook(context.Background(), buttonPayload("user-1", token)))

	require.Len(t, chat.texts, 1)
	assert.Equal(t, "在庫数が上限に達しています", chat.texts[0].Body)
}

func TestHandleWebhookUnknownText(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	svc, chat := newTestService(dispatcher)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("user-1", "good morning")))

	// Without the AI fallback the dispatcher is never consulted.
	assert.Empty(t, dispatcher.lastCmd.Type)
	require.Len(t, chat.texts, 1)
	assert.Equal(t, unknownCommandReply, chat.texts[0].Body)
}

func TestHandleWebhookMalformedButtonToken(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	svc, chat := newTestService(dispatcher)

	require.NoError(t, svc.HandleWebhook(context.Background(), buttonPayload("user-1", "bogus")))

	assert.Empty(t, dispatcher.lastID)
	require.Len(t, chat.texts, 1)
	assert.Equal(t, unknownCommandReply, chat.texts[0].Body)
}

func TestPublishBoard(t *testing.T) {
	dispatcher := &fakeDispatcher{reply: models.CommandReply{
		Text: "商品はグループ順に並べ替えられました",
		Cards: []models.StockCard{
			{Title: "cola", FooterID: "id-1"},
			{Title: "curry", FooterID: "id-2"},
		},
	}}
	svc, chat := newTestService(dispatcher)

	require.NoError(t, svc.PublishBoard(context.Background()))

	assert.Equal(t, models.CommandSortByGroup, dispatcher.lastCmd.Type)
	require.Len(t, chat.interactives, 2)
	assert.Equal(t, "board-chat", chat.interactives[0].To)
	// The confirmation text is for command replies, not the board publish.
	assert.Empty(t, chat.texts)
}
