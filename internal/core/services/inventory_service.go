package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"bloodbank-api/internal/adapters/cache"
	"bloodbank-api/internal/adapters/persistence/repositories"
	"bloodbank-api/internal/core/domain"
	"bloodbank-api/internal/core/stock"

	"go.uber.org/zap"
)

const statsCacheKey = "bloodbank:inventory:stats"

// InventoryService handles blood lots and their transaction log
type InventoryService struct {
	lots     repositories.LotRepository
	txs      repositories.TransactionRepository
	kv       cache.KV
	statsTTL time.Duration
	log      *zap.Logger
	now      func() time.Time

	// mu serialises read-modify-write on the lot collection
	mu sync.Mutex
}

// NewInventoryService creates a new inventory service. kv may be nil to disable the stats cache.
func NewInventoryService(
	lots repositories.LotRepository,
	txs repositories.TransactionRepository,
	kv cache.KV,
	statsTTL time.Duration,
	log *zap.Logger,
) *InventoryService {
	return &InventoryService{
		lots:     lots,
		txs:      txs,
		kv:       kv,
		statsTTL: statsTTL,
		log:      log,
		now:      time.Now,
	}
}

// IntakeInput represents a new lot received into storage
type IntakeInput struct {
	BloodType    string `json:"blood_type"`
	Component    string `json:"component"`
	Units        int    `json:"units"`
	Location     string `json:"location"`
	DonationDate string `json:"donation_date"`
	ExpiryDate   string `json:"expiry_date"` // Optional, defaults to donation date + 42 days
	Source       string `json:"source"`
}

// AllocateInput represents units dispatched out of storage
type AllocateInput struct {
	BloodType   string `json:"blood_type"`
	Units       int    `json:"units"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Component   string `json:"component"` // Recorded on the transaction only
}

// TransactionInput is the combined record-transaction form
type TransactionInput struct {
	Type         string `json:"type"`
	BloodType    string `json:"blood_type"`
	Component    string `json:"component"`
	Units        int    `json:"units"`
	Source       string `json:"source"`
	Destination  string `json:"destination"`
	DonationDate string `json:"donation_date"`
}

// UpdateLotInput holds the editable lot fields
type UpdateLotInput struct {
	Status   *string `json:"status"`
	Location *string `json:"location"`
}

// IntakeResult is the lot and its incoming transaction
type IntakeResult struct {
	Lot         domain.BloodLot    `json:"lot"`
	Transaction domain.Transaction `json:"transaction"`
}

// AllocationResult is the outcome of a dispatch
type AllocationResult struct {
	Transaction domain.Transaction `json:"transaction"`
	Updated     []domain.BloodLot  `json:"updated_lots"`
	Depleted    []domain.BloodLot  `json:"depleted_lots"`
	Remaining   int                `json:"remaining_units"`
}

// TransactionResult is returned by RecordTransaction; exactly one side is set
type TransactionResult struct {
	Intake     *IntakeResult     `json:"intake,omitempty"`
	Allocation *AllocationResult `json:"allocation,omitempty"`
}

// ListLotsInput filters lot listings
type ListLotsInput struct {
	BloodType string
	Status    string
	Location  string
	Offset    int
	Limit     int
}

// ListTransactionsInput filters the transaction log
type ListTransactionsInput struct {
	Type      string
	BloodType string
	Offset    int
	Limit     int
}

// Intake validates and stores a new lot plus one incoming transaction
func (s *InventoryService) Intake(ctx context.Context, input *IntakeInput) (*IntakeResult, error) {
	bloodType, err := domain.ParseBloodType(input.BloodType)
	if err != nil {
		return nil, err
	}
	component, err := domain.ParseComponent(input.Component)
	if err != nil {
		return nil, err
	}
	if input.Units <= 0 {
		return nil, domain.NewValidationError("units", "must be a positive integer")
	}
	location := strings.TrimSpace(input.Location)
	if location == "" {
		return nil, domain.NewValidationError("location", "is required")
	}
	if strings.TrimSpace(input.DonationDate) == "" {
		return nil, domain.NewValidationError("donation_date", "is required")
	}
	donated, err := domain.ParseDate("donation_date", input.DonationDate)
	if err != nil {
		return nil, err
	}
	expiry := stock.ExpiryFromDonation(donated)
	if strings.TrimSpace(input.ExpiryDate) != "" {
		if expiry, err = domain.ParseDate("expiry_date", input.ExpiryDate); err != nil {
			return nil, err
		}
		if expiry.Before(donated) {
			return nil, domain.NewValidationError("expiry_date", "must not be before donation_date")
		}
	}

	source := strings.TrimSpace(input.Source)
	if source == "" {
		source = "Unknown Source"
	}

	lot := &domain.BloodLot{
		BloodType:    bloodType,
		Component:    component,
		Units:        input.Units,
		Location:     location,
		DonationDate: donated,
		ExpiryDate:   expiry,
		Status:       domain.LotAvailable,
		Source:       source,
	}
	tx := &domain.Transaction{
		Type:        domain.TxIncoming,
		BloodType:   bloodType,
		Component:   component,
		Units:       input.Units,
		Source:      source,
		Destination: location,
		CreatedAt:   s.now(),
	}

	s.mu.Lock()
	err = s.lots.CommitIntake(ctx, lot, tx)
	if err == nil {
		s.invalidateStats(ctx)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.log.Info("✅ Lot received",
		zap.String("lot_id", lot.ID),
		zap.String("blood_type", string(lot.BloodType)),
		zap.Int("units", lot.Units),
		zap.String("location", lot.Location),
	)

	return &IntakeResult{Lot: *lot, Transaction: *tx}, nil
}

// Allocate dispatches units of one blood type from available lots in list order.
// Either every lot change and the outgoing transaction are stored, or nothing is.
func (s *InventoryService) Allocate(ctx context.Context, input *AllocateInput) (*AllocationResult, error) {
	bloodType, err := domain.ParseBloodType(input.BloodType)
	if err != nil {
		return nil, err
	}
	if input.Units <= 0 {
		return nil, domain.NewValidationError("units", "must be a positive integer")
	}
	source := strings.TrimSpace(input.Source)
	if source == "" {
		return nil, domain.NewValidationError("source", "is required")
	}
	destination := strings.TrimSpace(input.Destination)
	if destination == "" {
		return nil, domain.NewValidationError("destination", "is required")
	}
	var component domain.Component
	if strings.TrimSpace(input.Component) != "" {
		if component, err = domain.ParseComponent(input.Component); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lots, err := s.lots.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}

	alloc, err := stock.Allocate(lots, bloodType, input.Units)
	if err != nil {
		var short *domain.InsufficientStockError
		if errors.As(err, &short) {
			s.log.Warn("⚠️ Allocation rejected",
				zap.String("blood_type", string(bloodType)),
				zap.Int("requested", short.Requested),
				zap.Int("available", short.Available),
			)
		}
		return nil, err
	}

	tx := &domain.Transaction{
		Type:        domain.TxOutgoing,
		BloodType:   bloodType,
		Component:   component,
		Units:       alloc.Allocated,
		Source:      source,
		Destination: destination,
		CreatedAt:   s.now(),
	}
	if err := s.lots.CommitAllocation(ctx, alloc.Updated, alloc.Depleted, tx); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx)

	s.log.Info("✅ Units dispatched",
		zap.String("blood_type", string(bloodType)),
		zap.Int("units", alloc.Allocated),
		zap.Int("lots_depleted", len(alloc.Depleted)),
		zap.String("destination", destination),
	)

	return &AllocationResult{
		Transaction: *tx,
		Updated:     nonNilLots(alloc.Updated),
		Depleted:    nonNilLots(alloc.Depleted),
		Remaining:   alloc.AvailableBefore - alloc.Allocated,
	}, nil
}

// RecordTransaction routes incoming movements to Intake and outgoing ones to Allocate.
// An incoming movement creates a lot at its destination, donated today unless a date is given.
func (s *InventoryService) RecordTransaction(ctx context.Context, input *TransactionInput) (*TransactionResult, error) {
	txType, err := domain.ParseTransactionType(input.Type)
	if err != nil {
		return nil, err
	}

	if txType == domain.TxOutgoing {
		res, err := s.Allocate(ctx, &AllocateInput{
			BloodType:   input.BloodType,
			Units:       input.Units,
			Source:      input.Source,
			Destination: input.Destination,
			Component:   input.Component,
		})
		if err != nil {
			return nil, err
		}
		return &TransactionResult{Allocation: res}, nil
	}

	component := input.Component
	if strings.TrimSpace(component) == "" {
		component = string(domain.WholeBlood)
	}
	donated := input.DonationDate
	if strings.TrimSpace(donated) == "" {
		donated = domain.DateOnly(s.now()).Format("2006-01-02")
	}
	if strings.TrimSpace(input.Source) == "" {
		return nil, domain.NewValidationError("source", "is required")
	}
	res, err := s.Intake(ctx, &IntakeInput{
		BloodType:    input.BloodType,
		Component:    component,
		Units:        input.Units,
		Location:     input.Destination,
		DonationDate: donated,
		Source:       input.Source,
	})
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) && verr.Field == "location" {
			return nil, domain.NewValidationError("destination", "is required")
		}
		return nil, err
	}
	return &TransactionResult{Intake: res}, nil
}

// List lists lots, most recent first, annotated with expiry and unit warnings
func (s *InventoryService) List(ctx context.Context, input *ListLotsInput) ([]stock.LotView, int64, error) {
	filter, err := lotFilter(input)
	if err != nil {
		return nil, 0, err
	}

	lots, total, err := s.lots.List(ctx, filter, input.Offset, input.Limit)
	if err != nil {
		return nil, 0, err
	}
	return s.classify(lots), total, nil
}

// ListByBloodType lists non-depleted lots of one type, soonest expiry first
func (s *InventoryService) ListByBloodType(ctx context.Context, bloodType string) ([]stock.LotView, error) {
	bt, err := domain.ParseBloodType(bloodType)
	if err != nil {
		return nil, err
	}
	lots, err := s.lots.ListByBloodType(ctx, bt)
	if err != nil {
		return nil, err
	}
	return s.classify(lots), nil
}

// Get gets one lot
func (s *InventoryService) Get(ctx context.Context, id string) (*stock.LotView, error) {
	lot, err := s.lots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := stock.Classify(*lot, s.now())
	return &view, nil
}

// Update edits status or location. Depleted lots are final, and depletion only happens through Allocate.
func (s *InventoryService) Update(ctx context.Context, id string, input *UpdateLotInput) (*stock.LotView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lot, err := s.lots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot.Status == domain.LotDepleted {
		return nil, domain.ErrLotDepleted
	}

	if input.Status != nil {
		status, err := domain.ParseLotStatus(*input.Status)
		if err != nil {
			return nil, err
		}
		if status == domain.LotDepleted {
			return nil, domain.NewValidationError("status", "lots are depleted by allocation only")
		}
		lot.Status = status
	}
	if input.Location != nil {
		location := strings.TrimSpace(*input.Location)
		if location == "" {
			return nil, domain.NewValidationError("location", "is required")
		}
		lot.Location = location
	}

	if err := s.lots.Update(ctx, lot); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx)

	s.log.Info("✅ Lot updated",
		zap.String("lot_id", lot.ID),
		zap.String("status", string(lot.Status)),
		zap.String("location", lot.Location),
	)

	view := stock.Classify(*lot, s.now())
	return &view, nil
}

// Stats aggregates the available lots. Results are cached in Redis when configured.
// A miss is recomputed under mu so a snapshot taken before a write is never stored after it.
func (s *InventoryService) Stats(ctx context.Context) (*stock.Stats, error) {
	if cached, ok := s.cachedStats(ctx); ok {
		return cached, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lots, err := s.lots.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	stats := stock.ComputeStats(lots, s.now())
	s.storeStats(ctx, &stats)
	return &stats, nil
}

// Transactions lists the transaction log, most recent first
func (s *InventoryService) Transactions(ctx context.Context, input *ListTransactionsInput) ([]domain.Transaction, int64, error) {
	var filter repositories.TransactionFilter
	if input.Type != "" {
		t, err := domain.ParseTransactionType(input.Type)
		if err != nil {
			return nil, 0, err
		}
		filter.Type = t
	}
	if input.BloodType != "" {
		bt, err := domain.ParseBloodType(input.BloodType)
		if err != nil {
			return nil, 0, err
		}
		filter.BloodType = bt
	}

	txs, total, err := s.txs.List(ctx, filter, input.Offset, input.Limit)
	if err != nil {
		return nil, 0, err
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	return txs, total, nil
}

// Export renders the active lots and the transaction log as an xlsx workbook
func (s *InventoryService) Export(ctx context.Context) ([]byte, error) {
	lots, _, err := s.lots.List(ctx, repositories.LotFilter{}, 0, 0)
	if err != nil {
		return nil, err
	}
	txs, _, err := s.txs.List(ctx, repositories.TransactionFilter{}, 0, 0)
	if err != nil {
		return nil, err
	}
	available, err := s.lots.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return buildInventoryWorkbook(s.classify(lots), txs, stock.ComputeStats(available, now), now)
}

func (s *InventoryService) classify(lots []domain.BloodLot) []stock.LotView {
	now := s.now()
	views := make([]stock.LotView, len(lots))
	for i, lot := range lots {
		views[i] = stock.Classify(lot, now)
	}
	return views
}

func lotFilter(input *ListLotsInput) (repositories.LotFilter, error) {
	var filter repositories.LotFilter
	if input.BloodType != "" {
		bt, err := domain.ParseBloodType(input.BloodType)
		if err != nil {
			return filter, err
		}
		filter.BloodType = bt
	}
	if input.Status != "" {
		st, err := domain.ParseLotStatus(input.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = st
	}
	filter.Location = strings.TrimSpace(input.Location)
	return filter, nil
}

func (s *InventoryService) cachedStats(ctx context.Context) (*stock.Stats, bool) {
	if s.kv == nil || s.statsTTL <= 0 {
		return nil, false
	}
	raw, err := s.kv.Get(ctx, statsCacheKey)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn("⚠️ Stats cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var stats stock.Stats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		s.log.Warn("⚠️ Stats cache entry unreadable", zap.Error(err))
		return nil, false
	}
	return &stats, true
}

func (s *InventoryService) storeStats(ctx context.Context, stats *stock.Stats) {
	if s.kv == nil || s.statsTTL <= 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.kv.Set(ctx, statsCacheKey, string(raw), s.statsTTL); err != nil {
		s.log.Warn("⚠️ Stats cache write failed", zap.Error(err))
	}
}

func (s *InventoryService) invalidateStats(ctx context.Context) {
	if s.kv == nil {
		return
	}
	if err := s.kv.Delete(ctx, statsCacheKey); err != nil {
		s.log.Warn("⚠️ Stats cache invalidation failed", zap.Error(err))
	}
}

func nonNilLots(lots []domain.BloodLot) []domain.BloodLot {
	if lots == nil {
		return []domain.BloodLot{}
	}
	return lots
}
