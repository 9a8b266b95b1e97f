package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/torn-watcher/internal/domain"
)

type expoMessage struct {
	To       string `json:"to"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Sound    string `json:"sound"`
	Priority string `json:"priority"`
}

// ExpoGateway posts the whole batch as one JSON array to an Expo-style push endpoint.
type ExpoGateway struct {
	httpClient  *http.Client
	url         string
	accessToken string
}

func NewExpoGateway(url, accessToken string, timeout time.Duration) *ExpoGateway {
	return &ExpoGateway{
		httpClient:  &http.Client{Timeout: timeout},
		url:         url,
		accessToken: accessToken,
	}
}

func (g *ExpoGateway) Send(ctx context.Context, msgs []domain.NotificationMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	batch := make([]expoMessage, 0, len(msgs))
	for _, m := range msgs {
		batch = append(batch, expoMessage{
			To:       m.PushToken,
			Title:    m.Title,
			Body:     m.Body,
			Sound:    "default",
			Priority: "high",
		})
	}
	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal push batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if g.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+g.accessToken)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send push batch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push gateway status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
