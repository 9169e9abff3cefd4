package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/SpooderfyBot/room/pkg/opcode"
	"github.com/SpooderfyBot/room/pkg/wire"
)

const webhookTimeout = 10 * time.Second

// Directory is the slice of the relay REST surface the composer needs:
// who the local user is and where the room's webhook lives.
type Directory interface {
	WhoAmI(ctx context.Context) (wire.Identity, error)
	Webhook(ctx context.Context, roomID string) (wire.Webhook, error)
}

// Publisher sends an envelope to the room. Satisfied by emit.Emitter.
type Publisher interface {
	Publish(ctx context.Context, roomID string, env wire.Envelope)
}

// webhookPayload mirrors a chat message into the room's out-of-band webhook.
type webhookPayload struct {
	Content   string `json:"content"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// Composer turns user input into published MESSAGE events. It is inert until
// Bootstrap has resolved the local identity: submits before that point are
// dropped rather than sent anonymously.
type Composer struct {
	roomID    string
	directory Directory
	publisher Publisher
	client    *http.Client

	mu       sync.Mutex
	identity *wire.Identity
	webhook  string
}

// NewComposer wires a composer for roomID. A nil httpClient gets a default
// with a timeout; it is only used for the webhook mirror POST.
func NewComposer(roomID string, directory Directory, publisher Publisher, httpClient *http.Client) *Composer {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: webhookTimeout}
	}
	return &Composer{
		roomID:    roomID,
		directory: directory,
		publisher: publisher,
		client:    httpClient,
	}
}

// Bootstrap fetches the local identity and the room webhook. Failures are
// logged and leave the composer in its inert state; calling Bootstrap again
// retries whatever is still missing.
func (c *Composer) Bootstrap(ctx context.Context) {
	c.mu.Lock()
	haveIdentity := c.identity != nil
	haveWebhook := c.webhook != ""
	c.mu.Unlock()

	if !haveIdentity {
		id, err := c.directory.WhoAmI(ctx)
		if err != nil {
			slog.Warn("chat: identity lookup failed", "err", err)
		} else {
			c.mu.Lock()
			c.identity = &id
			c.mu.Unlock()
			slog.Info("chat: identity resolved", "username", id.Username)
		}
	}

	if !haveWebhook {
		wh, err := c.directory.Webhook(ctx, c.roomID)
		if err != nil {
			slog.Warn("chat: webhook lookup failed", "room", c.roomID, "err", err)
		} else {
			c.mu.Lock()
			c.webhook = wh.URL
			c.mu.Unlock()
		}
	}
}

// Ready reports whether the composer has an identity and can send.
func (c *Composer) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity != nil
}

// Submit sends content as the local user. It reports whether the message was
// actually sent: empty input or a composer without an identity is a no-op,
// not an error.
func (c *Composer) Submit(ctx context.Context, content string) bool {
	if content == "" {
		return false
	}

	c.mu.Lock()
	id := c.identity
	webhook := c.webhook
	c.mu.Unlock()

	if id == nil {
		slog.Debug("chat: submit before identity resolved, dropping")
		return false
	}

	msg := wire.ChatMessage{
		Username: id.Username,
		Avatar:   id.Avatar,
		Content:  content,
	}

	if webhook != "" {
		if err := c.postWebhook(ctx, webhook, msg); err != nil {
			slog.Warn("chat: webhook mirror failed", "room", c.roomID, "err", err)
		}
	}

	env, err := wire.NewEnvelope(opcode.Message, msg)
	if err != nil {
		slog.Error("chat: encode message", "err", err)
		return false
	}
	c.publisher.Publish(ctx, c.roomID, env)
	return true
}

func (c *Composer) postWebhook(ctx context.Context, url string, msg wire.ChatMessage) error {
	body, err := json.Marshal(webhookPayload{
		Content:   msg.Content,
		Username:  msg.Username,
		AvatarURL: msg.Avatar,
	})
	if err != nil {
		return fmt.Errorf("chat: marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("chat: build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("chat: webhook post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("chat: webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}
