package discord

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/bz888/digest/internal/logger"
)

var ErrInvalidWebhook = errors.New("invalid discord webhook url")

type executor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Webhook posts summaries to a channel through an incoming webhook.
type Webhook struct {
	exec     executor
	id       string
	token    string
	username string
	log      *logger.Logger
}

// ParseWebhookURL extracts the webhook ID and token from
// https://discord.com/api[/vN]/webhooks/<id>/<token>.
func ParseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidWebhook, raw)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		if seg == "webhooks" && i+2 < len(segments) {
			id, token = segments[i+1], segments[i+2]
			break
		}
	}
	if id == "" || token == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidWebhook, raw)
	}
	return id, token, nil
}

func NewWebhook(rawURL, username string) (*Webhook, error) {
	id, token, err := ParseWebhookURL(rawURL)
	if err != nil {
		return nil, err
	}

	// webhooks authenticate with their token, no bot token needed
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	return &Webhook{
		exec:     session,
		id:       id,
		token:    token,
		username: username,
		log:      logger.NewLogger("discord"),
	}, nil
}

// Deliver posts text, split into as many messages as needed, in order.
func (w *Webhook) Deliver(ctx context.Context, text string) error {
	parts := Split(text, MaxMessageLength)
	if len(parts) == 0 {
		parts = []string{"⚠️ No output received from summarizer"}
	}

	for i, part := range parts {
		params := &discordgo.WebhookParams{
			Content:  part,
			Username: w.username,
		}
		if _, err := w.exec.WebhookExecute(w.id, w.token, true, params, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("failed to post part %d/%d: %w", i+1, len(parts), err)
		}
		w.log.Info("posted part ", i+1, "/", len(parts))
	}
	return nil
}
