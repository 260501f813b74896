package repositories

import (
	"context"

	"bloodbank-api/internal/core/domain"

	"gorm.io/gorm"
)

// LotFilter narrows inventory listings. Empty fields match everything;
// depleted lots are only listed when Status asks for them.
type LotFilter struct {
	BloodType domain.BloodType
	Status    domain.LotStatus
	Location  string
}

// TransactionFilter narrows the transaction log
type TransactionFilter struct {
	Type      domain.TransactionType
	BloodType domain.BloodType
}

// DonorFilter narrows donor listings. Search matches name or email.
type DonorFilter struct {
	Search    string
	BloodType domain.BloodType
	Status    domain.DonorStatus
}

// RequestFilter narrows hospital request listings. Search matches hospital name or blood type.
type RequestFilter struct {
	Search string
	Status domain.RequestStatus
}

// LotRepository owns blood lots and the atomic inventory commits.
// A limit <= 0 means no limit.
type LotRepository interface {
	Create(ctx context.Context, lot *domain.BloodLot) error
	Update(ctx context.Context, lot *domain.BloodLot) error
	GetByID(ctx context.Context, id string) (*domain.BloodLot, error)
	List(ctx context.Context, filter LotFilter, offset, limit int) ([]domain.BloodLot, int64, error)
	// ListAvailable returns available lots in insertion order
	ListAvailable(ctx context.Context) ([]domain.BloodLot, error)
	// ListByBloodType returns non-depleted lots of one type, soonest expiry first
	ListByBloodType(ctx context.Context, bloodType domain.BloodType) ([]domain.BloodLot, error)
	// CommitIntake stores a new lot and its incoming transaction together
	CommitIntake(ctx context.Context, lot *domain.BloodLot, tx *domain.Transaction) error
	// CommitAllocation stores updated and depleted lots plus the outgoing transaction together
	CommitAllocation(ctx context.Context, updated, depleted []domain.BloodLot, tx *domain.Transaction) error
	Ping(ctx context.Context) error
}

// TransactionRepository is the append-only transaction log
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	// List returns most recent first
	List(ctx context.Context, filter TransactionFilter, offset, limit int) ([]domain.Transaction, int64, error)
}

// DonorRepository defines donor repository interface
type DonorRepository interface {
	Create(ctx context.Context, donor *domain.Donor) error
	Update(ctx context.Context, donor *domain.Donor) error
	GetByID(ctx context.Context, id string) (*domain.Donor, error)
	GetByEmail(ctx context.Context, email string) (*domain.Donor, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// List orders by name ascending
	List(ctx context.Context, filter DonorFilter, offset, limit int) ([]domain.Donor, int64, error)
	CountByStatus(ctx context.Context) (map[domain.DonorStatus]int64, error)
}

// HospitalRequestRepository defines hospital request repository interface
type HospitalRequestRepository interface {
	Create(ctx context.Context, req *domain.HospitalRequest) error
	Update(ctx context.Context, req *domain.HospitalRequest) error
	GetByID(ctx context.Context, id string) (*domain.HospitalRequest, error)
	// List returns most recent first
	List(ctx context.Context, filter RequestFilter, offset, limit int) ([]domain.HospitalRequest, int64, error)
	CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error)
}

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
	List(ctx context.Context, offset, limit int) ([]domain.User, int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, id string) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID string) error
}

// Store bundles every repository the services need
type Store struct {
	Lots          LotRepository
	Transactions  TransactionRepository
	Donors        DonorRepository
	Requests      HospitalRequestRepository
	Users         UserRepository
	RefreshTokens RefreshTokenRepository
}

// NewStore builds the GORM-backed store
func NewStore(db *gorm.DB) *Store {
	return &Store{
		Lots:          NewLotRepository(db),
		Transactions:  NewTransactionRepository(db),
		Donors:        NewDonorRepository(db),
		Requests:      NewHospitalRequestRepository(db),
		Users:         NewUserRepository(db),
		RefreshTokens: NewRefreshTokenRepository(db),
	}
}
