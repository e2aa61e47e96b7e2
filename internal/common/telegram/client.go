// Package telegram posts order announcements to the admin chat through the
// Bot API sendMessage method.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	commonhttp "qris-workers/internal/common/http"
)

var ErrNotConfigured = errors.New("telegram: bot token or chat id missing")

type Client struct {
	baseURL string
	token   string
	chatID  string
	http    *commonhttp.Client
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

func NewClient(baseURL, token, chatID string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		chatID:  chatID,
		http:    commonhttp.NewClient(timeout),
	}
}

// SendHTML delivers text with HTML parse mode and returns the message id.
func (c *Client) SendHTML(ctx context.Context, text string) (int64, error) {
	if c.token == "" || c.chatID == "" {
		return 0, ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	var resp sendMessageResponse
	err := c.http.PostJSON(ctx, endpoint, sendMessageRequest{
		ChatID:    c.chatID,
		Text:      text,
		ParseMode: "HTML",
	}, &resp)
	if err != nil {
		return 0, fmt.Errorf("telegram sendMessage: %w", c.redact(err))
	}
	if !resp.OK {
		return 0, fmt.Errorf("telegram sendMessage: %s", resp.Description)
	}
	return resp.Result.MessageID, nil
}

// redact drops the request URL from transport errors. The bot token is part
// of the path and must not reach logs or job variables.
func (c *Client) redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	if c.token != "" && strings.Contains(err.Error(), c.token) {
		return errors.New(strings.ReplaceAll(err.Error(), c.token, "<redacted>"))
	}
	return err
}
