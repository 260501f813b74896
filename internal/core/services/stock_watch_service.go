package services

import (
	"context"
	"time"

	"bloodbank-api/internal/adapters/persistence/repositories"
	"bloodbank-api/internal/core/stock"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultStockWatchSchedule runs the check at 08:30 every day
const DefaultStockWatchSchedule = "30 8 * * *"

// StockWatchService checks available stock on a schedule and alerts staff.
// It only reads; expired lots stay in inventory.
type StockWatchService struct {
	lots     repositories.LotRepository
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
	cron     *cron.Cron
	schedule string
}

// NewStockWatchService creates a new stock watch. An empty schedule uses DefaultStockWatchSchedule.
func NewStockWatchService(lots repositories.LotRepository, notifier Notifier, schedule string, log *zap.Logger) *StockWatchService {
	if schedule == "" {
		schedule = DefaultStockWatchSchedule
	}
	return &StockWatchService{
		lots:     lots,
		notifier: notifier,
		log:      log,
		now:      time.Now,
		cron:     cron.New(),
		schedule: schedule,
	}
}

// Start registers the job and starts the scheduler
func (s *StockWatchService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.Check(ctx); err != nil {
			s.log.Error("❌ Stock watch failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("🚀 Stock watch started", zap.String("schedule", s.schedule))
	return nil
}

// Stop stops the scheduler and waits for a running check
func (s *StockWatchService) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("🛑 Stock watch stopped")
}

// Check computes stats over available lots and alerts when any type is critical or units are expiring
func (s *StockWatchService) Check(ctx context.Context) (*stock.Stats, error) {
	lots, err := s.lots.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	stats := stock.ComputeStats(lots, s.now())

	if len(stats.CriticalTypes) == 0 && stats.ExpiringUnits == 0 {
		s.log.Info("✅ Stock watch: levels normal", zap.Int("total_units", stats.TotalUnits))
		return &stats, nil
	}

	types := make([]string, len(stats.CriticalTypes))
	for i, t := range stats.CriticalTypes {
		types[i] = string(t)
	}
	s.log.Warn("⚠️ Stock watch: attention needed",
		zap.Strings("critical_types", types),
		zap.Int("expiring_units", stats.ExpiringUnits),
		zap.Int("total_units", stats.TotalUnits),
	)
	s.notifier.NotifyStockAlert(ctx, &stats)

	return &stats, nil
}
