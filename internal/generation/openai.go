package generation

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"stickerprint/internal/infra"
)

// Options controls how the OpenAI-style client is configured.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
	MaxRetries uint64
}

// Client speaks the OpenAI-compatible images and chat endpoints. Rate
// limit and transient failures are retried with exponential backoff up to
// MaxRetries; everything else surfaces immediately as a classified Error.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
	maxRetries uint64
}

const (
	defaultTimeout    = 120 * time.Second
	defaultMaxRetries = 2

	DefaultImageModel  = "gpt-image-1"
	DefaultTextModel   = "o3-mini"
	DefaultVisionModel = "gpt-4o"
	DefaultImageSize   = "1024x1024"
)

func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	retries := opts.MaxRetries
	if retries == 0 {
		retries = defaultMaxRetries
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: client,
		logger:     logger,
		maxRetries: retries,
	}
}

type imagesRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Size    string `json:"size,omitempty"`
	Quality string `json:"quality,omitempty"`
}

type imagesResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Generate runs one text-to-image call and decodes the base64 payload.
func (c *Client) Generate(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return nil, &Error{Kind: KindAuth, Message: "api key is required"}
	}
	model := req.Model
	if model == "" {
		model = DefaultImageModel
	}
	size := req.Size
	if size == "" {
		size = DefaultImageSize
	}
	payload := imagesRequest{
		Model:   model,
		Prompt:  req.Prompt,
		Size:    size,
		Quality: req.Quality,
	}

	var out imagesResponse
	if err := c.postWithRetry(ctx, "/images/generations", req.APIKey, payload, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 || out.Data[0].B64JSON == "" {
		return nil, &Error{Kind: KindUnknown, Message: "empty image response"}
	}
	data, err := base64.StdEncoding.DecodeString(out.Data[0].B64JSON)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Message: fmt.Sprintf("decode image payload: %v", err)}
	}
	width, height := parseSize(size)
	return &ImageResult{Data: data, Width: width, Height: height, MIME: "image/png"}, nil
}

// Complete runs one chat completion and returns the message text.
func (c *Client) Complete(ctx context.Context, req TextRequest) (string, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return "", &Error{Kind: KindAuth, Message: "api key is required"}
	}
	model := req.Model
	if model == "" {
		model = DefaultTextModel
	}
	payload := chatRequest{
		Model:     model,
		Messages:  []chatMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens: req.MaxTokens,
	}
	var out chatResponse
	if err := c.postWithRetry(ctx, "/chat/completions", req.APIKey, payload, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", &Error{Kind: KindUnknown, Message: "empty completion response"}
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// DescribeImage sends the image inline as a data URL together with the
// instruction text.
func (c *Client) DescribeImage(ctx context.Context, req VisionRequest) (string, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return "", &Error{Kind: KindAuth, Message: "api key is required"}
	}
	model := req.Model
	if model == "" {
		model = DefaultVisionModel
	}
	mime := req.MIME
	if mime == "" {
		mime = "image/png"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(req.ImageData))
	payload := chatRequest{
		Model: model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []chatContentPart{
				{Type: "text", Text: req.Instructions},
				{Type: "image_url", ImageURL: &chatImageURL{URL: dataURL}},
			},
		}},
		MaxTokens: req.MaxTokens,
	}
	var out chatResponse
	if err := c.postWithRetry(ctx, "/chat/completions", req.APIKey, payload, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", &Error{Kind: KindUnknown, Message: "empty vision response"}
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func (c *Client) postWithRetry(ctx context.Context, path, apiKey string, payload, out any) error {
	operation := func() error {
		err := c.post(ctx, path, apiKey, payload, out)
		if err == nil {
			return nil
		}
		if retryable(KindOf(err)) {
			c.logger.Warn().Err(err).Str("path", path).Msg("generation: retryable failure")
			return err
		}
		return backoff.Permanent(err)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	return backoff.Retry(operation, policy)
}

func (c *Client) post(ctx context.Context, path, apiKey string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &Error{Kind: KindUnknown, Message: fmt.Sprintf("marshal request: %v", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &Error{Kind: KindUnknown, Message: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return &Error{Kind: KindTransient, Message: ctx.Err().Error()}
		}
		return &Error{Kind: KindTransient, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return classifyHTTPError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindUnknown, Status: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}

func classifyHTTPError(resp *http.Response) *Error {
	var apiErr apiErrorResponse
	message := ""
	code := ""
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil {
		message = apiErr.Error.Message
		code = strings.ToLower(apiErr.Error.Code + " " + apiErr.Error.Type)
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	kind := KindUnknown
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		kind = KindAuth
	case resp.StatusCode == http.StatusTooManyRequests:
		kind = KindRateLimit
	case strings.Contains(code, "content_policy") || strings.Contains(code, "moderation") ||
		strings.Contains(strings.ToLower(message), "content policy") ||
		strings.Contains(strings.ToLower(message), "safety system"):
		kind = KindContentPolicy
	case resp.StatusCode >= http.StatusInternalServerError:
		kind = KindTransient
	}
	return &Error{Kind: kind, Status: resp.StatusCode, Message: message}
}

func parseSize(size string) (int, int) {
	parts := strings.SplitN(size, "x", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	w, errW := strconv.Atoi(parts[0])
	h, errH := strconv.Atoi(parts[1])
	if errW != nil || errH != nil {
		return 0, 0
	}
	return w, h
}

var (
	_ ImageGenerator = (*Client)(nil)
	_ TextGenerator  = (*Client)(nil)
)
