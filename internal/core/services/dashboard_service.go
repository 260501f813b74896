package services

import (
	"context"
	"errors"
	"time"

	"bloodbank-api/internal/adapters/persistence/repositories"
	"bloodbank-api/internal/core/domain"
	"bloodbank-api/internal/core/stock"
)

const recentTransactionLimit = 5

// DashboardService assembles the role-specific dashboard views
type DashboardService struct {
	inventory   *InventoryService
	donorRepo   repositories.DonorRepository
	requestRepo repositories.HospitalRequestRepository
	txRepo      repositories.TransactionRepository
	now         func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	inventory *InventoryService,
	donorRepo repositories.DonorRepository,
	requestRepo repositories.HospitalRequestRepository,
	txRepo repositories.TransactionRepository,
) *DashboardService {
	return &DashboardService{
		inventory:   inventory,
		donorRepo:   donorRepo,
		requestRepo: requestRepo,
		txRepo:      txRepo,
		now:         time.Now,
	}
}

// DonorCounts summarises donor eligibility
type DonorCounts struct {
	Total      int64 `json:"total"`
	Eligible   int64 `json:"eligible"`
	Ineligible int64 `json:"ineligible"`
}

// RequestCounts summarises hospital requests per status
type RequestCounts struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Approved  int64 `json:"approved"`
	Rejected  int64 `json:"rejected"`
	Completed int64 `json:"completed"`
}

// StaffDashboard is the admin and hospital overview
type StaffDashboard struct {
	Stats              stock.Stats          `json:"stats"`
	Donors             DonorCounts          `json:"donors"`
	Requests           RequestCounts        `json:"requests"`
	RecentTransactions []domain.Transaction `json:"recent_transactions"`
	GeneratedAt        time.Time            `json:"generated_at"`
}

// DonorDashboard is what a donor sees: their own record plus stock levels
type DonorDashboard struct {
	Donor        *domain.Donor     `json:"donor"`
	Eligible     bool              `json:"eligible"`
	LastDonation *time.Time        `json:"last_donation"`
	Distribution []stock.TypeCount `json:"distribution"`
	GeneratedAt  time.Time         `json:"generated_at"`
}

// Dashboard is either a staff or a donor view
type Dashboard struct {
	Role  domain.Role     `json:"role"`
	Staff *StaffDashboard `json:"staff,omitempty"`
	Donor *DonorDashboard `json:"donor,omitempty"`
}

// ForUser returns the dashboard matching the caller's role
func (s *DashboardService) ForUser(ctx context.Context, role domain.Role, email string) (*Dashboard, error) {
	if role == domain.RoleDonor {
		d, err := s.DonorView(ctx, email)
		if err != nil {
			return nil, err
		}
		return &Dashboard{Role: role, Donor: d}, nil
	}

	st, err := s.StaffView(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Role: role, Staff: st}, nil
}

// StaffView gathers stats, donor and request counts and the latest transactions
func (s *DashboardService) StaffView(ctx context.Context) (*StaffDashboard, error) {
	stats, err := s.inventory.Stats(ctx)
	if err != nil {
		return nil, err
	}

	donorCounts, err := s.donorRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	requestCounts, err := s.requestRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	recent, _, err := s.txRepo.List(ctx, repositories.TransactionFilter{}, 0, recentTransactionLimit)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []domain.Transaction{}
	}

	donors := DonorCounts{
		Eligible:   donorCounts[domain.DonorEligible],
		Ineligible: donorCounts[domain.DonorIneligible],
	}
	donors.Total = donors.Eligible + donors.Ineligible

	requests := RequestCounts{
		Pending:   requestCounts[domain.RequestPending],
		Approved:  requestCounts[domain.RequestApproved],
		Rejected:  requestCounts[domain.RequestRejected],
		Completed: requestCounts[domain.RequestCompleted],
	}
	requests.Total = requests.Pending + requests.Approved + requests.Rejected + requests.Completed

	return &StaffDashboard{
		Stats:              *stats,
		Donors:             donors,
		Requests:           requests,
		RecentTransactions: recent,
		GeneratedAt:        s.now(),
	}, nil
}

// DonorView finds the donor record registered under the user's email.
// A user without a donor record still gets the stock distribution.
func (s *DashboardService) DonorView(ctx context.Context, email string) (*DonorDashboard, error) {
	stats, err := s.inventory.Stats(ctx)
	if err != nil {
		return nil, err
	}

	view := &DonorDashboard{
		Distribution: stats.Distribution,
		GeneratedAt:  s.now(),
	}

	donor, err := s.donorRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		view.Donor = donor
		view.Eligible = donor.Status == domain.DonorEligible
		view.LastDonation = donor.LastDonation
	case errors.Is(err, domain.ErrNotFound):
	default:
		return nil, err
	}

	return view, nil
}
