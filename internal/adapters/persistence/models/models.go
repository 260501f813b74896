package models

import (
	"time"

	"bloodbank-api/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Inventory Tables
// ============================================================

// BloodLot represents blood_inventory table
// Seq keeps insertion order, which is the allocation order.
type BloodLot struct {
	Seq          uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	ID           string    `gorm:"size:36;uniqueIndex;not null" json:"id"`
	BloodType    string    `gorm:"size:3;index;not null" json:"blood_type"`
	Component    string    `gorm:"size:30;not null" json:"component"`
	Units        int       `gorm:"not null" json:"units"`
	Location     string    `gorm:"size:100;not null" json:"location"`
	DonationDate time.Time `gorm:"type:date;not null" json:"donation_date"`
	ExpiryDate   time.Time `gorm:"type:date;index;not null" json:"expiry_date"`
	Status       string    `gorm:"size:20;index;not null;default:'available'" json:"status"`
	Source       string    `gorm:"size:200" json:"source"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BloodLot) TableName() string {
	return "blood_inventory"
}

// ToDomain converts to the domain lot
func (m *BloodLot) ToDomain() domain.BloodLot {
	return domain.BloodLot{
		ID:           m.ID,
		BloodType:    domain.BloodType(m.BloodType),
		Component:    domain.Component(m.Component),
		Units:        m.Units,
		Location:     m.Location,
		DonationDate: domain.DateOnly(m.DonationDate),
		ExpiryDate:   domain.DateOnly(m.ExpiryDate),
		Status:       domain.LotStatus(m.Status),
		Source:       m.Source,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// BloodLotFromDomain converts a domain lot to its row
func BloodLotFromDomain(l *domain.BloodLot) *BloodLot {
	return &BloodLot{
		ID:           l.ID,
		BloodType:    string(l.BloodType),
		Component:    string(l.Component),
		Units:        l.Units,
		Location:     l.Location,
		DonationDate: l.DonationDate,
		ExpiryDate:   l.ExpiryDate,
		Status:       string(l.Status),
		Source:       l.Source,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// Transaction represents inventory_transactions table (append-only)
type Transaction struct {
	Seq         uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	ID          string    `gorm:"size:36;uniqueIndex;not null" json:"id"`
	Type        string    `gorm:"size:10;index;not null" json:"type"`
	BloodType   string    `gorm:"size:3;index;not null" json:"blood_type"`
	Component   string    `gorm:"size:30" json:"component"`
	Units       int       `gorm:"not null" json:"units"`
	Source      string    `gorm:"size:200" json:"source"`
	Destination string    `gorm:"size:200" json:"destination"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Transaction) TableName() string {
	return "inventory_transactions"
}

// ToDomain converts to the domain transaction
func (m *Transaction) ToDomain() domain.Transaction {
	return domain.Transaction{
		ID:          m.ID,
		Type:        domain.TransactionType(m.Type),
		BloodType:   domain.BloodType(m.BloodType),
		Component:   domain.Component(m.Component),
		Units:       m.Units,
		Source:      m.Source,
		Destination: m.Destination,
		CreatedAt:   m.CreatedAt,
	}
}

// TransactionFromDomain converts a domain transaction to its row
func TransactionFromDomain(t *domain.Transaction) *Transaction {
	return &Transaction{
		ID:          t.ID,
		Type:        string(t.Type),
		BloodType:   string(t.BloodType),
		Component:   string(t.Component),
		Units:       t.Units,
		Source:      t.Source,
		Destination: t.Destination,
		CreatedAt:   t.CreatedAt,
	}
}

// ============================================================
// Donor & Request Tables
// ============================================================

// Donor represents donors table
type Donor struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Name         string     `gorm:"size:100;index;not null" json:"name"`
	Email        string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone        string     `gorm:"size:30;not null" json:"phone"`
	BloodType    string     `gorm:"size:3;index;not null" json:"blood_type"`
	LastDonation *time.Time `gorm:"type:date" json:"last_donation"`
	Status       string     `gorm:"size:20;index;not null;default:'eligible'" json:"status"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Donor) TableName() string {
	return "donors"
}

// ToDomain converts to the domain donor
func (m *Donor) ToDomain() domain.Donor {
	d := domain.Donor{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		BloodType: domain.BloodType(m.BloodType),
		Status:    domain.DonorStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.LastDonation != nil {
		last := domain.DateOnly(*m.LastDonation)
		d.LastDonation = &last
	}
	return d
}

// DonorFromDomain converts a domain donor to its row
func DonorFromDomain(d *domain.Donor) *Donor {
	return &Donor{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		Phone:        d.Phone,
		BloodType:    string(d.BloodType),
		LastDonation: d.LastDonation,
		Status:       string(d.Status),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// HospitalRequest represents hospital_requests table
type HospitalRequest struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	HospitalName   string    `gorm:"size:200;index;not null" json:"hospital_name"`
	ContactPerson  string    `gorm:"size:100;not null" json:"contact_person"`
	ContactEmail   string    `gorm:"size:100" json:"contact_email"`
	ContactPhone   string    `gorm:"size:30;not null" json:"contact_phone"`
	BloodType      string    `gorm:"size:3;index;not null" json:"blood_type"`
	Component      string    `gorm:"size:30" json:"component"`
	UnitsRequested int       `gorm:"not null" json:"units_requested"`
	Urgency        string    `gorm:"size:10;not null;default:'normal'" json:"urgency"`
	Status         string    `gorm:"size:20;index;not null;default:'pending'" json:"status"`
	Notes          string    `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (HospitalRequest) TableName() string {
	return "hospital_requests"
}

// ToDomain converts to the domain request
func (m *HospitalRequest) ToDomain() domain.HospitalRequest {
	return domain.HospitalRequest{
		ID:             m.ID,
		HospitalName:   m.HospitalName,
		ContactPerson:  m.ContactPerson,
		ContactEmail:   m.ContactEmail,
		ContactPhone:   m.ContactPhone,
		BloodType:      domain.BloodType(m.BloodType),
		Component:      domain.Component(m.Component),
		UnitsRequested: m.UnitsRequested,
		Urgency:        domain.Urgency(m.Urgency),
		Status:         domain.RequestStatus(m.Status),
		Notes:          m.Notes,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// HospitalRequestFromDomain converts a domain request to its row
func HospitalRequestFromDomain(r *domain.HospitalRequest) *HospitalRequest {
	return &HospitalRequest{
		ID:             r.ID,
		HospitalName:   r.HospitalName,
		ContactPerson:  r.ContactPerson,
		ContactEmail:   r.ContactEmail,
		ContactPhone:   r.ContactPhone,
		BloodType:      string(r.BloodType),
		Component:      string(r.Component),
		UnitsRequested: r.UnitsRequested,
		Urgency:        string(r.Urgency),
		Status:         string(r.Status),
		Notes:          r.Notes,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// ============================================================
// Auth Tables
// ============================================================

// User represents users table
type User struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Name      string         `gorm:"size:100" json:"name"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'donor'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// ToDomain converts to the domain user
func (m *User) ToDomain() domain.User {
	return domain.User{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		Password:  m.Password,
		Role:      domain.Role(m.Role),
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// UserFromDomain converts a domain user to its row
func UserFromDomain(u *domain.User) *User {
	return &User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Password:  u.Password,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	UserID    string     `gorm:"size:36;index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// ToDomain converts to the domain token
func (m *RefreshToken) ToDomain() domain.RefreshToken {
	return domain.RefreshToken{
		ID:        m.ID,
		UserID:    m.UserID,
		TokenHash: m.TokenHash,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
		RevokedAt: m.RevokedAt,
	}
}

// RefreshTokenFromDomain converts a domain token to its row
func RefreshTokenFromDomain(t *domain.RefreshToken) *RefreshToken {
	return &RefreshToken{
		ID:        t.ID,
		UserID:    t.UserID,
		TokenHash: t.TokenHash,
		ExpiresAt: t.ExpiresAt,
		CreatedAt: t.CreatedAt,
		RevokedAt: t.RevokedAt,
	}
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&BloodLot{},
		&Transaction{},
		&Donor{},
		&HospitalRequest{},
	)
}
