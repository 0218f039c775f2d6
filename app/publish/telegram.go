package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const telegramAPIBase = "https://api.telegram.org"

// Sink delivers a finished post to the outside world.
type Sink interface {
	SendText(ctx context.Context, chat, html string, disablePreview bool) error
	SendPhoto(ctx context.Context, chat, photoURL, captionHTML string) error
}

// Telegram posts messages through the Bot API with HTML parse mode.
type Telegram struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

func NewTelegram(token string, httpClient *http.Client) *Telegram {
	return &Telegram{
		token:      token,
		baseURL:    telegramAPIBase,
		httpClient: httpClient,
	}
}

func (t *Telegram) SendText(ctx context.Context, chat, html string, disablePreview bool) error {
	form := url.Values{}
	form.Set("chat_id", chat)
	form.Set("text", html)
	form.Set("parse_mode", "HTML")
	form.Set("disable_web_page_preview", strconv.FormatBool(disablePreview))

	return t.call(ctx, "sendMessage", form)
}

func (t *Telegram) SendPhoto(ctx context.Context, chat, photoURL, captionHTML string) error {
	form := url.Values{}
	form.Set("chat_id", chat)
	form.Set("photo", photoURL)
	form.Set("caption", captionHTML)
	form.Set("parse_mode", "HTML")

	return t.call(ctx, "sendPhoto", form)
}

func (t *Telegram) call(ctx context.Context, method string, form url.Values) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", t.baseURL, t.token, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var parsed struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return fmt.Errorf("%s: HTTP %d, undecodable response", method, resp.StatusCode)
	}

	if !parsed.OK {
		return fmt.Errorf("%s: %s", method, parsed.Description)
	}

	return nil
}
