package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fleetops/repair-intake/internal/flow"
)

// DefaultAPIBase is the production Bot API endpoint.
const DefaultAPIBase = "https://api.telegram.org"

// Client calls the Telegram Bot API. It implements the intake service's
// Channel interface and is safe for concurrent use.
type Client struct {
	base       string
	token      string
	httpClient *http.Client
}

// NewClient builds a client for the given bot token. base overrides the
// API host for tests and self-hosted Bot API servers; empty means the
// public endpoint.
func NewClient(token, base string) *Client {
	if base == "" {
		base = DefaultAPIBase
	}
	return &Client{
		base:  base,
		token: token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiResponse is the Bot API envelope common to every method.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// call POSTs one Bot API method with a JSON payload and decodes the
// envelope. Non-ok envelopes become errors carrying the API description.
func (c *Client) call(ctx context.Context, method string, payload any) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.base, c.token, method)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: marshal %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: %s: %w", method, err)
	}
	defer resp.Body.Close()

	var env apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err != nil {
		return fmt.Errorf("telegram: decode %s response (http %d): %w", method, resp.StatusCode, err)
	}
	if !env.OK {
		log.Warn().
			Str("method", method).
			Int("error_code", env.ErrorCode).
			Str("description", env.Description).
			Msg("telegram api rejected call")
		return fmt.Errorf("telegram: %s failed: %d %s", method, env.ErrorCode, env.Description)
	}
	return nil
}

type sendMessageRequest struct {
	ChatID      int64  `json:"chat_id"`
	Text        string `json:"text"`
	ReplyMarkup any    `json:"reply_markup,omitempty"`
}

// SendPrompt delivers a prompt as a sendMessage call, translating the
// flow-level keyboard description into Bot API markup.
func (c *Client) SendPrompt(ctx context.Context, chatID int64, p flow.Prompt) error {
	req := sendMessageRequest{ChatID: chatID, Text: p.Text}
	switch {
	case len(p.Inline) > 0:
		req.ReplyMarkup = inlineMarkup(p.Inline)
	case len(p.Keyboard) > 0:
		req.ReplyMarkup = replyMarkup(p.Keyboard)
	case p.RemoveKeyboard:
		req.ReplyMarkup = ReplyKeyboardRemove{RemoveKeyboard: true}
	}
	return c.call(ctx, "sendMessage", req)
}

type editMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
}

// EditMessage rewrites an earlier message's text, dropping its inline
// buttons.
func (c *Client) EditMessage(ctx context.Context, chatID, messageID int64, text string) error {
	return c.call(ctx, "editMessageText", editMessageRequest{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	})
}

type answerCallbackRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
}

// AnswerCallback stops the client-side button spinner.
func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	return c.call(ctx, "answerCallbackQuery", answerCallbackRequest{CallbackQueryID: callbackID})
}

func replyMarkup(rows [][]string) ReplyKeyboardMarkup {
	kb := ReplyKeyboardMarkup{ResizeKeyboard: true}
	for _, row := range rows {
		var btns []KeyboardButton
		for _, label := range row {
			btns = append(btns, KeyboardButton{Text: label})
		}
		kb.Keyboard = append(kb.Keyboard, btns)
	}
	return kb
}

func inlineMarkup(buttons []flow.Button) InlineKeyboardMarkup {
	var row []InlineKeyboardButton
	for _, b := range buttons {
		row = append(row, InlineKeyboardButton{Text: b.Label, CallbackData: b.Data})
	}
	return InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{row}}
}
