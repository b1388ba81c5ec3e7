package genai

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/SmartEdu-Labs/network-service/internal/config"
)

// AIResponse is the text result of a generation call plus any web-grounding
// sources the model cited.
type AIResponse struct {
	Text           string          `json:"text"`
	GroundingLinks []GroundingLink `json:"groundingLinks"`
}

type GroundingLink struct {
	Title  string `json:"title"`
	URI    string `json:"uri"`
	Domain string `json:"domain,omitempty"`
}

// Client talks to the generative-AI platform. The rest of the service treats
// it as an opaque request/response boundary; transient-overload errors are
// retried here with exponential backoff.
type Client struct {
	http   *resty.Client
	cfg    config.GenAIConfig
	logger *slog.Logger
}

func NewClient(cfg config.GenAIConfig, logger *slog.Logger) *Client {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(60 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:   http,
		cfg:    cfg,
		logger: logger,
	}
}

// ===== WIRE TYPES =====

type generateRequest struct {
	Contents          []content `json:"contents"`
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Tools             []tool    `json:"tools,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type tool struct {
	GoogleSearch *struct{} `json:"googleSearch,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ===== CORE CALLS =====

// withRetry retries fn on transient-overload errors with exponential backoff
// starting at the configured base delay.
func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	delay := c.cfg.RetryBase
	var err error

	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !isOverloaded(err) || attempt >= c.cfg.MaxRetries {
			return err
		}

		c.logger.Warn("AI model overloaded, retrying",
			"delay", delay.String(),
			"attempts_left", c.cfg.MaxRetries-attempt)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

func isOverloaded(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "503") || strings.Contains(msg, "overloaded")
}

func (c *Client) generate(ctx context.Context, model string, req generateRequest) (*generateResponse, error) {
	var result generateResponse

	err := c.withRetry(ctx, func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("key", c.cfg.APIKey).
			SetBody(req).
			SetResult(&result).
			SetError(&result).
			Post(fmt.Sprintf("/v1beta/models/%s:generateContent", model))
		if err != nil {
			return fmt.Errorf("generation request failed: %w", err)
		}
		if resp.IsError() {
			message := resp.Status()
			if result.Error != nil {
				message = result.Error.Message
			}
			return fmt.Errorf("generation failed (%d): %s", resp.StatusCode(), message)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// GenerateText runs a text completion. When grounded is true the web-search
// tool is attached and cited sources are returned alongside the text.
func (c *Client) GenerateText(ctx context.Context, system, prompt string, grounded bool) (*AIResponse, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	if system != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}
	if grounded {
		req.Tools = []tool{{GoogleSearch: &struct{}{}}}
	}

	resp, err := c.generate(ctx, c.cfg.TextModel, req)
	if err != nil {
		return nil, err
	}

	return &AIResponse{
		Text:           firstText(resp),
		GroundingLinks: extractLinks(resp),
	}, nil
}

// GenerateImage produces an image for the prompt and returns it as a
// base64 data URI, or empty when the model returned no image part.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}

	resp, err := c.generate(ctx, c.cfg.ImageModel, req)
	if err != nil {
		return "", err
	}

	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil {
				return fmt.Sprintf("data:%s;base64,%s", p.InlineData.MimeType, p.InlineData.Data), nil
			}
		}
	}
	return "", nil
}

func firstText(resp *generateResponse) string {
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

// extractLinks collects unique web-grounding sources from the response.
func extractLinks(resp *generateResponse) []GroundingLink {
	seen := make(map[string]bool)
	var links []GroundingLink

	for _, cand := range resp.Candidates {
		if cand.GroundingMetadata == nil {
			continue
		}
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk.Web == nil || seen[chunk.Web.URI] {
				continue
			}
			seen[chunk.Web.URI] = true

			link := GroundingLink{
				Title: chunk.Web.Title,
				URI:   chunk.Web.URI,
			}
			if link.Title == "" {
				link.Title = "Official Source"
			}
			if parsed, err := url.Parse(chunk.Web.URI); err == nil {
				link.Domain = strings.TrimPrefix(parsed.Hostname(), "www.")
			}
			links = append(links, link)
		}
	}
	return links
}
