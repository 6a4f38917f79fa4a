// Package gemini generates combined technical and news analysis through the
// Gemini generateContent API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"CryptoView/internal/domain/models"
	"CryptoView/internal/domain/service"
	xhttp "CryptoView/pkg/http"
	applogger "CryptoView/pkg/logger"
)

var (
	// ErrMissingAPIKey means no credential is configured; no request is attempted.
	ErrMissingAPIKey = fmt.Errorf("gemini: api key missing: %w", service.ErrMissingCredential)
	// ErrInvalidSchema means the model answered with a document that does not match the schema.
	ErrInvalidSchema = errors.New("gemini: response does not match schema")
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.5-flash"
)

// Client implements service.AnalysisGenerator.
type Client struct {
	apiKey    string
	baseURL   string
	model     string
	webSearch bool
	http      *xhttp.Client
	validate  *validator.Validate
	logger    *applogger.Logger
}

type Option func(*Client)

func WithAPIKey(key string) Option { return func(c *Client) { c.apiKey = strings.TrimSpace(key) } }

func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") } }

func WithModel(m string) Option { return func(c *Client) { c.model = m } }

// WithWebSearch enables the google_search tool for fresher news.
func WithWebSearch(on bool) Option { return func(c *Client) { c.webSearch = on } }

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = xhttp.NewClient(xhttp.WithTimeout(d)) }
}

func WithHTTPClient(hc *xhttp.Client) Option { return func(c *Client) { c.http = hc } }

func New(opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		model:    DefaultModel,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   applogger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = xhttp.NewClient(xhttp.WithTimeout(60 * time.Second))
	}
	return c
}

// SetLogger allows DI to inject a logger after construction.
func (c *Client) SetLogger(l *applogger.Logger) {
	if l != nil {
		c.logger = l
	}
}

// HasCredential reports whether an API key is configured.
func (c *Client) HasCredential() bool { return c.apiKey != "" }

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	Tools            []map[string]any `json:"tools,omitempty"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

func (c *Client) buildRequest(a models.Asset) generateRequest {
	req := generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: Prompt(a)}}}},
		GenerationConfig: generationConfig{ResponseMimeType: "application/json"},
	}
	if c.webSearch {
		// the search tool cannot be combined with a response schema
		req.Tools = []map[string]any{{"google_search": map[string]any{}}}
		req.GenerationConfig.ResponseMimeType = ""
	} else {
		req.GenerationConfig.ResponseSchema = CombinedSchema()
	}
	return req
}

// Generate requests a combined analysis for a. The returned document has
// passed schema validation.
func (c *Client) Generate(ctx context.Context, a models.Asset) (*models.CombinedAnalysis, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	var resp generateResponse
	start := time.Now()
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    endpoint,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: c.buildRequest(a),
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	c.logger.Debug("analysis generated",
		applogger.String("asset", a.ID),
		applogger.Duration("took", time.Since(start)),
	)

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates", ErrInvalidSchema)
	}
	var text strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return c.Decode(text.String())
}

// Decode parses and validates a model answer. Markdown code fences around
// the JSON document are tolerated.
func (c *Client) Decode(text string) (*models.CombinedAnalysis, error) {
	body := stripFences(text)
	if body == "" {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidSchema)
	}
	var out models.CombinedAnalysis
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	if err := c.validate.Struct(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	if out.TechnicalAnalysis.Confluences == nil {
		out.TechnicalAnalysis.Confluences = []string{}
	}
	if out.NewsAnalysis.NewsItems == nil {
		out.NewsAnalysis.NewsItems = []models.NewsItem{}
	}
	return &out, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		if i, j := strings.Index(s, "{"), strings.LastIndex(s, "}"); i > 0 && j > i {
			// grounded answers sometimes wrap the document in prose
			return s[i : j+1]
		}
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
