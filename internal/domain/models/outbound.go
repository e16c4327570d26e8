package models

// OutboundMessageRequest represents requests to send a message manually via the API.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}

// CommandReply is what the dispatcher hands back to the messaging layer: a
// confirmation text plus zero or more cards to publish.
type CommandReply struct {
	Text  string
	Cards []StockCard
}
