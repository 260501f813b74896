package config

import (
	"context"
	"errors"
	"time"

	"bloodbank-api/internal/adapters/persistence/repositories"
	"bloodbank-api/internal/core/domain"
	"bloodbank-api/internal/core/stock"
	"bloodbank-api/internal/pkg/password"

	"go.uber.org/zap"
)

// Seeder handles store seeding
type Seeder struct {
	store *repositories.Store
	cfg   *Config
	log   *zap.Logger
	now   func() time.Time
}

// NewSeeder creates a new seeder instance
func NewSeeder(store *repositories.Store, cfg *Config, log *zap.Logger) *Seeder {
	return &Seeder{store: store, cfg: cfg, log: log, now: time.Now}
}

// Run seeds the bootstrap admin, plus demo records for the in-memory store in dev
func (s *Seeder) Run(ctx context.Context) error {
	s.log.Info("🌱 Running seeders...")

	if err := s.seedAdminUser(ctx); err != nil {
		s.log.Warn("⚠️ Admin seeder skipped", zap.Error(err))
	}

	if s.cfg.IsDev() && s.cfg.UsesMemory() {
		if err := s.seedDemoData(ctx); err != nil {
			return err
		}
	}

	s.log.Info("✅ Seeding completed")
	return nil
}

// seedAdminUser creates the configured admin when no admin exists yet
func (s *Seeder) seedAdminUser(ctx context.Context) error {
	count, err := s.store.Users.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Admin already exists
	}

	if !password.ValidatePassword(s.cfg.Admin.Password) {
		return errors.New("ADMIN_PASSWORD must be at least 8 characters")
	}
	hashed, err := password.Hash(s.cfg.Admin.Password)
	if err != nil {
		return err
	}

	admin := &domain.User{
		Email:    s.cfg.Admin.Email,
		Name:     s.cfg.Admin.Name,
		Password: hashed,
		Role:     domain.RoleAdmin,
		IsActive: true,
	}
	if err := s.store.Users.Create(ctx, admin); err != nil {
		return err
	}

	s.log.Info("✅ Admin user created", zap.String("email", admin.Email))
	return nil
}

type demoLot struct {
	bloodType domain.BloodType
	units     int
	location  string
	status    domain.LotStatus
	daysAgo   int
}

// seedDemoData loads the demo inventory, donors and requests, dated relative to today
func (s *Seeder) seedDemoData(ctx context.Context) error {
	today := domain.DateOnly(s.now())

	lots := []demoLot{
		{domain.APositive, 45, domain.LocationMainStorage, domain.LotAvailable, 10},
		{domain.BPositive, 38, domain.LocationMainStorage, domain.LotAvailable, 14},
		{domain.ABPositive, 12, domain.LocationColdStorage2, domain.LotAvailable, 8},
		{domain.OPositive, 52, domain.LocationMainStorage, domain.LotAvailable, 6},
		{domain.ANegative, 18, domain.LocationColdStorage1, domain.LotReserved, 12},
		{domain.BNegative, 15, domain.LocationColdStorage1, domain.LotAvailable, 9},
		{domain.ABNegative, 8, domain.LocationColdStorage2, domain.LotAvailable, 37},
		{domain.ONegative, 25, domain.LocationMainStorage, domain.LotAvailable, 4},
	}
	for _, l := range lots {
		donated := today.AddDate(0, 0, -l.daysAgo)
		lot := &domain.BloodLot{
			BloodType:    l.bloodType,
			Component:    domain.WholeBlood,
			Units:        l.units,
			Location:     l.location,
			DonationDate: donated,
			ExpiryDate:   stock.ExpiryFromDonation(donated),
			Status:       l.status,
		}
		if err := s.store.Lots.Create(ctx, lot); err != nil {
			return err
		}
	}

	txs := []domain.Transaction{
		{Type: domain.TxIncoming, BloodType: domain.OPositive, Units: 7, Source: "Donation Drive", Destination: domain.LocationMainStorage},
		{Type: domain.TxOutgoing, BloodType: domain.ABPositive, Units: 3, Source: domain.LocationColdStorage2, Destination: "Memorial Hospital"},
		{Type: domain.TxIncoming, BloodType: domain.BNegative, Units: 8, Source: "Red Cross", Destination: domain.LocationColdStorage1},
		{Type: domain.TxOutgoing, BloodType: domain.OPositive, Units: 5, Source: domain.LocationMainStorage, Destination: "City Hospital"},
		{Type: domain.TxIncoming, BloodType: domain.APositive, Units: 10, Source: "Community Drive", Destination: domain.LocationMainStorage},
	}
	for i := range txs {
		txs[i].Component = domain.WholeBlood
		txs[i].CreatedAt = today.AddDate(0, 0, -(len(txs) - i))
		if err := s.store.Transactions.Create(ctx, &txs[i]); err != nil {
			return err
		}
	}

	donors := []struct {
		name, email, phone string
		bloodType          domain.BloodType
		daysAgo            int
		status             domain.DonorStatus
	}{
		{"John Doe", "john.doe@example.com", "555-123-4567", domain.APositive, 150, domain.DonorEligible},
		{"Jane Smith", "jane.smith@example.com", "555-987-6543", domain.ONegative, 134, domain.DonorEligible},
		{"Robert Johnson", "robert.j@example.com", "555-456-7890", domain.BPositive, 30, domain.DonorIneligible},
		{"Emily Davis", "emily.d@example.com", "555-789-0123", domain.ABPositive, 178, domain.DonorEligible},
		{"Michael Brown", "michael.b@example.com", "555-234-5678", domain.ANegative, 45, domain.DonorIneligible},
	}
	for _, d := range donors {
		last := today.AddDate(0, 0, -d.daysAgo)
		donor := &domain.Donor{
			Name:         d.name,
			Email:        d.email,
			Phone:        d.phone,
			BloodType:    d.bloodType,
			LastDonation: &last,
			Status:       d.status,
		}
		if err := s.store.Donors.Create(ctx, donor); err != nil {
			return err
		}
	}

	requests := []domain.HospitalRequest{
		{HospitalName: "St. Mary's Hospital", ContactPerson: "Dr. Garcia", ContactPhone: "555-567-8901", BloodType: domain.ONegative, UnitsRequested: 2, Urgency: domain.UrgencyNormal, Status: domain.RequestApproved, Notes: "Scheduled transfusion"},
		{HospitalName: "Community Medical Center", ContactPerson: "Nurse Williams", ContactPhone: "555-345-6789", BloodType: domain.APositive, UnitsRequested: 3, Urgency: domain.UrgencyNormal, Status: domain.RequestCompleted},
		{HospitalName: "City General Hospital", ContactPerson: "Dr. Smith", ContactPhone: "555-123-4567", BloodType: domain.OPositive, UnitsRequested: 5, Urgency: domain.UrgencyNormal, Status: domain.RequestApproved, Notes: "Scheduled surgery"},
		{HospitalName: "Memorial Hospital", ContactPerson: "Dr. Johnson", ContactPhone: "555-234-5678", BloodType: domain.ABNegative, UnitsRequested: 2, Urgency: domain.UrgencyUrgent, Status: domain.RequestPending, Notes: "Emergency case"},
		{HospitalName: "University Hospital", ContactPerson: "Dr. Lee", ContactPhone: "555-456-7890", BloodType: domain.BPositive, UnitsRequested: 4, Urgency: domain.UrgencyCritical, Status: domain.RequestPending, Notes: "Multiple trauma patients"},
	}
	for i := range requests {
		requests[i].Component = domain.WholeBlood
		if err := s.store.Requests.Create(ctx, &requests[i]); err != nil {
			return err
		}
	}

	s.log.Info("✅ Demo data seeded",
		zap.Int("lots", len(lots)),
		zap.Int("transactions", len(txs)),
		zap.Int("donors", len(donors)),
		zap.Int("requests", len(requests)),
	)
	return nil
}
