package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bloodbank-api/internal/core/domain"
	"bloodbank-api/internal/core/stock"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Notifier pushes operational alerts to staff. Implementations log failures and never return them.
type Notifier interface {
	NotifyNewRequest(ctx context.Context, req *domain.HospitalRequest)
	NotifyRequestStatus(ctx context.Context, req *domain.HospitalRequest)
	NotifyStockAlert(ctx context.Context, stats *stock.Stats)
}

// NotificationService handles LINE notifications
type NotificationService struct {
	client  *resty.Client
	token   string
	enabled bool
	log     *zap.Logger
}

// NewNotificationService creates a new notification service. An empty token disables it.
func NewNotificationService(baseURL, token string, log *zap.Logger) *NotificationService {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(5 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)

	return &NotificationService{
		client:  client,
		token:   token,
		enabled: token != "",
		log:     log,
	}
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

// sendLineNotify posts a message to LINE Notify
func (s *NotificationService) sendLineNotify(ctx context.Context, message string) error {
	if !s.enabled {
		return nil
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.token).
		SetFormData(map[string]string{"message": message}).
		Post("/api/notify")
	if err != nil {
		return fmt.Errorf("line notify request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("line notify returned %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return nil
}

func (s *NotificationService) send(ctx context.Context, kind, message string) {
	if err := s.sendLineNotify(ctx, message); err != nil {
		s.log.Warn("⚠️ Notification failed", zap.String("kind", kind), zap.Error(err))
		return
	}
	if s.enabled {
		s.log.Debug("📨 Notification sent", zap.String("kind", kind))
	}
}

// NotifyNewRequest announces a new hospital request
func (s *NotificationService) NotifyNewRequest(ctx context.Context, req *domain.HospitalRequest) {
	icon := "🆕"
	if req.Urgency == domain.UrgencyCritical {
		icon = "🚨"
	}
	message := fmt.Sprintf(`
%s New blood request

🏥 Hospital: %s
🩸 Blood type: %s
📦 Units: %d
⏱ Urgency: %s
👤 Contact: %s (%s)`,
		icon,
		req.HospitalName,
		req.BloodType,
		req.UnitsRequested,
		req.Urgency,
		req.ContactPerson,
		req.ContactPhone,
	)

	s.send(ctx, "new_request", message)
}

// NotifyRequestStatus announces a request status change
func (s *NotificationService) NotifyRequestStatus(ctx context.Context, req *domain.HospitalRequest) {
	icons := map[domain.RequestStatus]string{
		domain.RequestApproved:  "✅",
		domain.RequestRejected:  "❌",
		domain.RequestCompleted: "🎉",
	}
	message := fmt.Sprintf(`
%s Request %s

🏥 Hospital: %s
🩸 %d units of %s`,
		icons[req.Status],
		req.Status,
		req.HospitalName,
		req.UnitsRequested,
		req.BloodType,
	)

	s.send(ctx, "request_status", message)
}

// NotifyStockAlert reports critical blood types and expiring units
func (s *NotificationService) NotifyStockAlert(ctx context.Context, stats *stock.Stats) {
	critical := "none"
	if len(stats.CriticalTypes) > 0 {
		critical = joinTypes(stats.CriticalTypes)
	}
	message := fmt.Sprintf(`
⚠️ Blood stock alert

🔴 Critical types (< %d units): %s
⏳ Units expiring within %d days: %d
📦 Total available: %d units`,
		stock.CriticalStockThreshold,
		critical,
		stock.NearExpiryDays,
		stats.ExpiringUnits,
		stats.TotalUnits,
	)

	s.send(ctx, "stock_alert", message)
}
