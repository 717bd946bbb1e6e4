package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bz888/digest/internal/logger"
	"github.com/ollama/ollama/api"
)

// Chunk is one line of a streamed generate response.
type Chunk struct {
	Text string
	Done bool
}

// Model is a locally available model as reported by the tags endpoint.
type Model struct {
	Name          string
	ModifiedAt    time.Time
	Size          int64
	Family        string
	ParameterSize string
}

// OllamaClient talks to an Ollama server's generate and tags endpoints.
type OllamaClient struct {
	base   *url.URL
	client *api.Client
	log    *logger.Logger
}

// NewOllamaClient builds a client for host, which must be scheme://host.
func NewOllamaClient(host string) (*OllamaClient, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid host %q: %w", host, err)
	}
	return &OllamaClient{
		base:   u,
		client: api.NewClient(u, &http.Client{}),
		log:    logger.NewLogger("ollama"),
	}, nil
}

func (c *OllamaClient) Host() string {
	return c.base.String()
}

// Ping checks that the server answers at all.
func (c *OllamaClient) Ping(ctx context.Context) error {
	if err := c.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("ollama server not available at %s: %w", c.Host(), err)
	}
	return nil
}

// Generate issues one non-streaming request and returns the full response.
func (c *OllamaClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: &stream,
	}

	var sb strings.Builder
	err := c.client.Generate(ctx, req, func(res api.GenerateResponse) error {
		sb.WriteString(res.Response)
		return nil
	})
	if err != nil {
		c.log.Error("generate failed: ", err)
		return "", fmt.Errorf("error sending request: %w", err)
	}

	c.log.Info("generated ", sb.Len(), " bytes with ", model)
	return sb.String(), nil
}

// Stream issues a streaming request and calls fn for every chunk in arrival
// order. An error returned by fn aborts the stream and is returned as is.
func (c *OllamaClient) Stream(ctx context.Context, model, prompt string, fn func(Chunk) error) error {
	stream := true
	req := &api.GenerateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: &stream,
	}

	var fnErr error
	err := c.client.Generate(ctx, req, func(res api.GenerateResponse) error {
		if !res.Done {
			c.log.Info("Received response: ", res.Response)
		} else {
			c.log.Info("Completed response")
		}
		if err := fn(Chunk{Text: res.Response, Done: res.Done}); err != nil {
			fnErr = err
			return err
		}
		return nil
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		c.log.Error("stream failed: ", err)
		return fmt.Errorf("error sending request: %w", err)
	}
	return nil
}

// ListModels returns the models installed on the server.
func (c *OllamaClient) ListModels(ctx context.Context) ([]Model, error) {
	resp, err := c.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch models: %w", err)
	}

	models := make([]Model, len(resp.Models))
	for i, m := range resp.Models {
		models[i] = Model{
			Name:          m.Name,
			ModifiedAt:    m.ModifiedAt,
			Size:          m.Size,
			Family:        m.Details.Family,
			ParameterSize: m.Details.ParameterSize,
		}
	}
	return models, nil
}
