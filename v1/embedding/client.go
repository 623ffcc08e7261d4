package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/seekdb/v1/observability"
	"github.com/Aleph-Alpha/seekdb/v1/seekdb"
)

// Client computes embeddings through an OpenAI-compatible endpoint and
// implements seekdb.EmbeddingFunction.
type Client struct {
	cfg        Config
	api        *openai.Client
	httpClient *http.Client
	logger     *zap.Logger
	observer   observability.Observer
}

var _ seekdb.EmbeddingFunction = (*Client)(nil)

// NewClient constructs a Client from Config. logger and observer may be nil.
func NewClient(cfg *Config, logger *zap.Logger, observer observability.Observer) (*Client, error) {
	if cfg == nil {
		return nil, seekdb.NewError(seekdb.CategoryConfig, nil, "embedding: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := &http.Client{Timeout: cfg.httpTimeout()}
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = strings.TrimRight(cfg.Endpoint, "/")
	apiCfg.HTTPClient = httpClient

	return &Client{
		cfg:        *cfg,
		api:        openai.NewClientWithConfig(apiCfg),
		httpClient: httpClient,
		logger:     logger.With(zap.String("component", "embedding"), zap.String("model", cfg.Model)),
		observer:   observer,
	}, nil
}

// Dimension reports the configured vector length.
func (c *Client) Dimension() uint32 { return c.cfg.Dimension }

// Embed returns one vector per document, in input order. Documents are sent
// in batches of at most BatchSize. Every returned vector is checked against
// Dimension.
func (c *Client) Embed(ctx context.Context, documents []string) (out []seekdb.Embedding, err error) {
	start := time.Now()
	var promptTokens, totalTokens int
	defer func() {
		c.observe(start, len(documents), promptTokens, totalTokens, err)
	}()

	out = make([]seekdb.Embedding, 0, len(documents))
	if len(documents) == 0 {
		return out, nil
	}

	batch := c.cfg.BatchSize
	if batch <= 0 {
		batch = len(documents)
	}
	for lo := 0; lo < len(documents); lo += batch {
		hi := min(lo+batch, len(documents))
		resp, err := c.api.CreateEmbeddings(ctx, c.request(documents[lo:hi]))
		if err != nil {
			return nil, parseAPIError(err)
		}
		vectors, err := c.collect(resp, hi-lo)
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
		promptTokens += resp.Usage.PromptTokens
		totalTokens += resp.Usage.TotalTokens
	}
	return out, nil
}

// Close releases idle HTTP connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) request(input []string) openai.EmbeddingRequest {
	req := openai.EmbeddingRequest{
		Input:          input,
		Model:          openai.EmbeddingModel(c.cfg.Model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if !c.cfg.OmitDimensions {
		req.Dimensions = int(c.cfg.Dimension)
	}
	return req
}

// collect orders the response by index and validates count, indices and
// length. Every input position must be answered exactly once.
func (c *Client) collect(resp openai.EmbeddingResponse, want int) ([]seekdb.Embedding, error) {
	if len(resp.Data) != want {
		return nil, seekdb.NewError(seekdb.CategoryEmbedding, nil,
			"embedding: expected %d vectors, got %d", want, len(resp.Data))
	}
	data := resp.Data
	sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	vectors := make([]seekdb.Embedding, len(data))
	for i, d := range data {
		if d.Index != i {
			return nil, seekdb.NewError(seekdb.CategoryEmbedding, nil,
				"embedding: response indices are not 0..%d (position %d has index %d)", len(data)-1, i, d.Index)
		}
		if uint32(len(d.Embedding)) != c.cfg.Dimension {
			return nil, seekdb.NewError(seekdb.CategoryEmbedding, nil,
				"embedding: vector %d has dimension %d, expected %d", i, len(d.Embedding), c.cfg.Dimension)
		}
		vectors[i] = seekdb.Embedding(d.Embedding)
	}
	return vectors, nil
}

func (c *Client) observe(start time.Time, n, promptTokens, totalTokens int, err error) {
	duration := time.Since(start)
	if err != nil {
		c.logger.Warn("embedding request failed", zap.Int("documents", n), zap.Error(err))
	} else if ce := c.logger.Check(zap.DebugLevel, "embedding request completed"); ce != nil {
		ce.Write(zap.Int("documents", n), zap.Duration("duration", duration), zap.Int("total_tokens", totalTokens))
	}

	if c.observer == nil {
		return
	}
	c.observer.ObserveOperation(observability.OperationContext{
		Component: "embedding",
		Operation: "embed",
		Resource:  c.cfg.Model,
		Duration:  duration,
		Error:     err,
		Size:      int64(n),
		Metadata: map[string]interface{}{
			"prompt_tokens": promptTokens,
			"total_tokens":  totalTokens,
		},
	})
}

// parseAPIError turns a go-openai failure into an embedding error carrying
// the most readable detail available.
func parseAPIError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return seekdb.NewError(seekdb.CategoryEmbedding, err, "embedding: request aborted")
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = strings.TrimSpace(string(reqErr.Body))
		}
		return seekdb.NewError(seekdb.CategoryEmbedding, err, "embedding: API error %d: %s", reqErr.HTTPStatusCode, detail)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return seekdb.NewError(seekdb.CategoryEmbedding, err, "embedding: API error %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}

	return seekdb.NewError(seekdb.CategoryEmbedding, err, "embedding: request failed")
}

// extractDetail reads a {"detail": "..."} error body as returned by some
// OpenAI-compatible servers.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
