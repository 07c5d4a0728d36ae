package models

// WebhookPayload is the subset of Meta's WhatsApp Cloud API webhook body the bot reads.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry represents one entry payload within the webhook body.
type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

// WebhookChange captures the actual notification contents.
type WebhookChange struct {
	Value WebhookValue `json:"value"`
	Field string       `json:"field"`
}

// WebhookValue holds the inbound messages; delivery statuses are ignored.
type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Contacts         []Contact        `json:"contacts"`
	Messages         []InboundMessage `json:"messages"`
}

// Contact represents the WhatsApp user initiating the conversation.
type Contact struct {
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
	WaID string `json:"wa_id"`
}

// InboundMessage is a text or interactive reply sent to the bot.
type InboundMessage struct {
	From        string              `json:"from"`
	ID          string              `json:"id"`
	Timestamp   string              `json:"timestamp"`
	Type        string              `json:"type"`
	Text        *TextContent        `json:"text,omitempty"`
	Interactive *InteractiveContent `json:"interactive,omitempty"`
}

// TextContent contains text messages body.
type TextContent struct {
	Body string `json:"body"`
}

// InteractiveContent represents button/list replies. Reply ids carry bot commands.
type InteractiveContent struct {
	Type        string      `json:"type"`
	ButtonReply *ReplyEntry `json:"button_reply,omitempty"`
	ListReply   *ReplyEntry `json:"list_reply,omitempty"`
}

// ReplyEntry is a pressed button or a selected list row.
type ReplyEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// CommandText returns the command text carried by the message, or "" for unsupported types.
func (m InboundMessage) CommandText() string {
	if m.Text != nil {
		return m.Text.Body
	}
	if m.Interactive != nil {
		if m.Interactive.ButtonReply != nil {
			return m.Interactive.ButtonReply.ID
		}
		if m.Interactive.ListReply != nil {
			return m.Interactive.ListReply.ID
		}
	}
	return ""
}
