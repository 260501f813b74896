package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"bloodbank-api/internal/core/domain"
	"bloodbank-api/internal/core/stock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotificationService_PostsToLineNotify(t *testing.T) {
	var (
		mu       sync.Mutex
		auth     []string
		messages []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		mu.Lock()
		auth = append(auth, r.Header.Get("Authorization"))
		messages = append(messages, r.PostForm.Get("message"))
		mu.Unlock()
		assert.Equal(t, "/api/notify", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := NewNotificationService(srv.URL, "line-token", zap.NewNop())
	require.True(t, svc.IsEnabled())

	ctx := context.Background()
	req := &domain.HospitalRequest{
		HospitalName:   "St. Mary",
		BloodType:      domain.ONegative,
		UnitsRequested: 3,
		Urgency:        domain.UrgencyCritical,
		Status:         domain.RequestApproved,
	}
	svc.NotifyNewRequest(ctx, req)
	svc.NotifyRequestStatus(ctx, req)
	svc.NotifyStockAlert(ctx, &stock.Stats{TotalUnits: 9, CriticalTypes: []domain.BloodType{domain.ONegative}})

	require.Len(t, messages, 3)
	for _, a := range auth {
		assert.Equal(t, "Bearer line-token", a)
	}
	assert.Contains(t, messages[0], "St. Mary")
	assert.Contains(t, messages[0], "🚨")
	assert.Contains(t, messages[1], "approved")
	assert.Contains(t, messages[2], "O-")
}

func TestNotificationService_DisabledWithoutToken(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	svc := NewNotificationService(srv.URL, "", zap.NewNop())
	assert.False(t, svc.IsEnabled())

	svc.NotifyStockAlert(context.Background(), &stock.Stats{})
	assert.False(t, called)
}

func TestNotificationService_FailuresAreSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	svc := NewNotificationService(srv.URL, "bad-token", zap.NewNop())
	err := svc.sendLineNotify(context.Background(), "hello")
	assert.ErrorContains(t, err, "401")

	assert.NotPanics(t, func() {
		svc.NotifyNewRequest(context.Background(), &domain.HospitalRequest{})
	})
}
