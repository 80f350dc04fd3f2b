package notifications

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	config "github.com/anjiri1684/driving_school/configs"
	"github.com/anjiri1684/driving_school/scheduling"
	"github.com/bytedance/sonic"
)

const SignatureHeader = "X-Webhook-Signature"

// WebhookService posts lesson events to the school's automation endpoint.
type WebhookService struct {
	URL    string
	Secret string
	Client *http.Client
}

// InitWebhookService returns nil when no endpoint is configured, which turns
// lesson_created notifications off.
func InitWebhookService() *WebhookService {
	url := config.Config("LESSON_WEBHOOK_URL")
	if url == "" {
		log.Println("⚠️ Lesson webhook not configured. Missing LESSON_WEBHOOK_URL.")
		return nil
	}
	log.Println("✅ Lesson webhook service initialized successfully.")
	return NewWebhookService(url, config.Config("LESSON_WEBHOOK_SECRET"))
}

func NewWebhookService(url, secret string) *WebhookService {
	return &WebhookService{
		URL:    url,
		Secret: secret,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *WebhookService) LessonCreated(ctx context.Context, event scheduling.LessonEvent) error {
	return s.send(ctx, event)
}

func (s *WebhookService) send(ctx context.Context, event scheduling.LessonEvent) error {
	body, err := sonic.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("X-Webhook-Event", string(event.EventType))
	if s.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(s.Secret, body))
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	log.Printf("✅ %s delivered for lesson %s", event.EventType, event.Lesson.ID)
	return nil
}

// Sign is the hex HMAC-SHA256 of body, prefixed like GitHub-style signatures.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
