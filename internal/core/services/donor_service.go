package services

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"bloodbank-api/internal/adapters/persistence/repositories"
	"bloodbank-api/internal/core/domain"

	"go.uber.org/zap"
)

// DonorService handles donor records and eligibility
type DonorService struct {
	donorRepo repositories.DonorRepository
	log       *zap.Logger
	now       func() time.Time
}

// NewDonorService creates a new donor service
func NewDonorService(donorRepo repositories.DonorRepository, log *zap.Logger) *DonorService {
	return &DonorService{
		donorRepo: donorRepo,
		log:       log,
		now:       time.Now,
	}
}

// CreateDonorInput represents a new donor
type CreateDonorInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	BloodType string `json:"blood_type"`
}

// UpdateDonorInput is a partial donor update
type UpdateDonorInput struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	BloodType *string `json:"blood_type"`
}

// ListDonorsInput filters donor listings
type ListDonorsInput struct {
	Search    string
	BloodType string
	Status    string
	Offset    int
	Limit     int
}

// Create registers a donor as eligible with no donation on record
func (s *DonorService) Create(ctx context.Context, input *CreateDonorInput) (*domain.Donor, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	email, err := normaliseEmail(input.Email)
	if err != nil {
		return nil, err
	}
	phone := strings.TrimSpace(input.Phone)
	if phone == "" {
		return nil, domain.NewValidationError("phone", "is required")
	}
	bloodType, err := domain.ParseBloodType(input.BloodType)
	if err != nil {
		return nil, err
	}

	exists, err := s.donorRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateEntry
	}

	donor := &domain.Donor{
		Name:      name,
		Email:     email,
		Phone:     phone,
		BloodType: bloodType,
		Status:    domain.DonorEligible,
	}
	if err := s.donorRepo.Create(ctx, donor); err != nil {
		return nil, err
	}

	s.log.Info("✅ Donor registered", zap.String("donor_id", donor.ID), zap.String("blood_type", string(bloodType)))
	return donor, nil
}

// Update applies the non-nil fields
func (s *DonorService) Update(ctx context.Context, id string, input *UpdateDonorInput) (*domain.Donor, error) {
	donor, err := s.donorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.NewValidationError("name", "is required")
		}
		donor.Name = name
	}
	if input.Email != nil {
		email, err := normaliseEmail(*input.Email)
		if err != nil {
			return nil, err
		}
		if !strings.EqualFold(email, donor.Email) {
			exists, err := s.donorRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, domain.ErrDuplicateEntry
			}
		}
		donor.Email = email
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone == "" {
			return nil, domain.NewValidationError("phone", "is required")
		}
		donor.Phone = phone
	}
	if input.BloodType != nil {
		bt, err := domain.ParseBloodType(*input.BloodType)
		if err != nil {
			return nil, err
		}
		donor.BloodType = bt
	}

	if err := s.donorRepo.Update(ctx, donor); err != nil {
		return nil, err
	}
	return donor, nil
}

// Get gets a donor by ID
func (s *DonorService) Get(ctx context.Context, id string) (*domain.Donor, error) {
	return s.donorRepo.GetByID(ctx, id)
}

// GetByEmail gets the donor registered under an email
func (s *DonorService) GetByEmail(ctx context.Context, email string) (*domain.Donor, error) {
	return s.donorRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// List lists donors ordered by name
func (s *DonorService) List(ctx context.Context, input *ListDonorsInput) ([]domain.Donor, int64, error) {
	filter := repositories.DonorFilter{Search: strings.TrimSpace(input.Search)}
	if input.BloodType != "" {
		bt, err := domain.ParseBloodType(input.BloodType)
		if err != nil {
			return nil, 0, err
		}
		filter.BloodType = bt
	}
	if input.Status != "" {
		st, err := domain.ParseDonorStatus(input.Status)
		if err != nil {
			return nil, 0, err
		}
		filter.Status = st
	}

	donors, total, err := s.donorRepo.List(ctx, filter, input.Offset, input.Limit)
	if err != nil {
		return nil, 0, err
	}
	if donors == nil {
		donors = []domain.Donor{}
	}
	return donors, total, nil
}

// ListByBloodType lists donors of one blood type
func (s *DonorService) ListByBloodType(ctx context.Context, bloodType string) ([]domain.Donor, error) {
	donors, _, err := s.List(ctx, &ListDonorsInput{BloodType: bloodType})
	return donors, err
}

// RecordDonation stamps today's date and makes the donor ineligible, whatever the prior status.
// Nothing ever makes the donor eligible again automatically.
func (s *DonorService) RecordDonation(ctx context.Context, id string) (*domain.Donor, error) {
	donor, err := s.donorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	today := domain.DateOnly(s.now())
	donor.LastDonation = &today
	donor.Status = domain.DonorIneligible

	if err := s.donorRepo.Update(ctx, donor); err != nil {
		return nil, err
	}

	s.log.Info("✅ Donation recorded", zap.String("donor_id", donor.ID), zap.Time("date", today))
	return donor, nil
}

func normaliseEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", domain.NewValidationError("email", "is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", domain.NewValidationError("email", "is not a valid address")
	}
	return email, nil
}
