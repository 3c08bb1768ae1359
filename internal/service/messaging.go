package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/config"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/repository"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/richtext"
)

var ErrWhatsAppNotConfigured = errors.New("whatsapp gateway is not configured")

// WhatsAppClient sends messages through a Green-API compatible gateway.
type WhatsAppClient struct {
	baseURL    string
	instanceID string
	token      string
	httpClient *http.Client
}

func NewWhatsAppClient(cfg *config.Config) *WhatsAppClient {
	return &WhatsAppClient{
		baseURL:    strings.TrimRight(cfg.WhatsAppAPIURL, "/"),
		instanceID: cfg.WhatsAppInstanceID,
		token:      cfg.WhatsAppAPIToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *WhatsAppClient) SendMessage(ctx context.Context, phone, text string) error {
	if c.instanceID == "" || c.token == "" {
		return ErrWhatsAppNotConfigured
	}

	payload, err := json.Marshal(map[string]string{
		"chatId":  whatsAppChatID(phone),
		"message": richtext.ToPlain(text),
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/waInstance%s/sendMessage/%s", c.baseURL, c.instanceID, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// whatsAppChatID keeps only the digits of phone and appends the personal chat suffix.
func whatsAppChatID(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	return digits + "@c.us"
}

// WebhookClient posts automation payloads to external URLs. There is no retry and
// no request signing.
type WebhookClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewWebhookClient(timeout time.Duration) *WebhookClient {
	return &WebhookClient{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(config.WebhookRatePerSecond), config.WebhookRatePerSecond),
	}
}

func (c *WebhookClient) Post(ctx context.Context, url string, headers map[string]string, body any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for webhook slot: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s returned %d", url, resp.StatusCode)
	}
	return nil
}

// NotificationStore persists in-app notifications.
type NotificationStore interface {
	CreateNotification(ctx context.Context, arg repository.CreateNotificationParams) (domain.Notification, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (domain.User, error)
}

// Pusher delivers a notification to a chat outside the app.
type Pusher interface {
	Push(ctx context.Context, chatID int64, title, message string) error
}

type NotificationService struct {
	store  NotificationStore
	pusher Pusher
}

// NewNotificationService builds the notifier; pusher may be nil when no chat channel is configured.
func NewNotificationService(store NotificationStore, pusher Pusher) *NotificationService {
	return &NotificationService{store: store, pusher: pusher}
}

// Notify stores the notification and pushes it to the user's Telegram chat when linked.
// Failures are logged and never returned. The caller's cancellation does not abort delivery.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, title, message, notifType string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.NotificationPushTimeout)
	defer cancel()

	if _, err := s.store.CreateNotification(ctx, repository.CreateNotificationParams{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    notifType,
	}); err != nil {
		slog.Error("failed to save notification", "error", err, "user_id", userID)
	}

	if s.pusher == nil {
		return
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		slog.Warn("notification push skipped, user lookup failed", "error", err, "user_id", userID)
		return
	}
	if user.TelegramID == nil {
		return
	}
	if err := s.pusher.Push(ctx, *user.TelegramID, title, message); err != nil {
		slog.Warn("failed to push notification", "error", err, "user_id", userID)
	}
}
