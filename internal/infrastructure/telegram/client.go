package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.telegram.org"

// Client is a minimal Bot API client over plain HTTP: long-polling reads
// and form-encoded sends. Outbound calls go through a rate limiter so a
// burst of replies cannot trip the API's flood limits.
type Client struct {
	token      string
	baseURL    string
	sendClient *http.Client
	pollClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.SugaredLogger
}

func NewClient(token, baseURL string, sendRate float64, sendBurst int, logger *zap.SugaredLogger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if sendRate <= 0 {
		sendRate = 25
	}
	if sendBurst <= 0 {
		sendBurst = 5
	}
	return &Client{
		token:      token,
		baseURL:    baseURL,
		sendClient: &http.Client{Timeout: 15 * time.Second},
		// Long polls hold the connection open for the poll timeout; the
		// client timeout only guards against a hung connection beyond it.
		pollClient: &http.Client{Timeout: 90 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(sendRate), sendBurst),
		logger:     logger,
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
}

func (c *Client) call(ctx context.Context, httpClient *http.Client, method string, params url.Values, out interface{}) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.URL.RawQuery = params.Encode()

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", method, err)
	}
	defer resp.Body.Close()

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !apiResp.OK {
		return fmt.Errorf("%s failed: %s (code %d)", method, apiResp.Description, apiResp.ErrorCode)
	}
	if out != nil {
		if err := json.Unmarshal(apiResp.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

// send runs an outbound call through the rate limiter.
func (c *Client) send(ctx context.Context, method string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return c.call(ctx, c.sendClient, method, params, out)
}

// GetMe identifies the bot; its username anchors every deep link.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var me User
	if err := c.call(ctx, c.sendClient, "getMe", url.Values{}, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// GetUpdates long-polls for updates past offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	params.Set("timeout", strconv.Itoa(int(timeout.Seconds())))

	var updates []Update
	if err := c.call(ctx, c.pollClient, "getUpdates", params, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessageParams carries the optional knobs of sendMessage.
type SendMessageParams struct {
	ChatID      int64
	Text        string
	ParseMode   string
	ReplyMarkup *InlineKeyboardMarkup
}

func (c *Client) SendMessage(ctx context.Context, p SendMessageParams) error {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(p.ChatID, 10))
	params.Set("text", p.Text)
	if p.ParseMode != "" {
		params.Set("parse_mode", p.ParseMode)
	}
	if err := encodeMarkup(params, p.ReplyMarkup); err != nil {
		return err
	}
	return c.send(ctx, "sendMessage", params, nil)
}

func (c *Client) SendVideo(ctx context.Context, chatID int64, fileID, caption string) error {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("video", fileID)
	if caption != "" {
		params.Set("caption", caption)
	}
	return c.send(ctx, "sendVideo", params, nil)
}

// EditMessageText rewrites a previously sent message in place, the way the
// callback flows update their prompt instead of stacking new messages.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text, parseMode string, markup *InlineKeyboardMarkup) error {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("message_id", strconv.FormatInt(messageID, 10))
	params.Set("text", text)
	if parseMode != "" {
		params.Set("parse_mode", parseMode)
	}
	if err := encodeMarkup(params, markup); err != nil {
		return err
	}
	return c.send(ctx, "editMessageText", params, nil)
}

// AnswerCallbackQuery acknowledges a button press so the client stops
// showing its spinner.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	params := url.Values{}
	params.Set("callback_query_id", callbackID)
	return c.send(ctx, "answerCallbackQuery", params, nil)
}

func encodeMarkup(params url.Values, markup *InlineKeyboardMarkup) error {
	if markup == nil {
		return nil
	}
	encoded, err := json.Marshal(markup)
	if err != nil {
		return fmt.Errorf("encode reply markup: %w", err)
	}
	params.Set("reply_markup", string(encoded))
	return nil
}
