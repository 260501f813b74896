package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role represents user role in the system
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHospital Role = "hospital"
	RoleDonor    Role = "donor"
)

// ParseRole validates a role string
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleHospital, RoleDonor:
		return r, nil
	}
	return "", NewValidationError("role", fmt.Sprintf("invalid role %q", s))
}

// BloodType is one of the eight ABO/Rh groups
type BloodType string

const (
	APositive  BloodType = "A+"
	ANegative  BloodType = "A-"
	BPositive  BloodType = "B+"
	BNegative  BloodType = "B-"
	ABPositive BloodType = "AB+"
	ABNegative BloodType = "AB-"
	OPositive  BloodType = "O+"
	ONegative  BloodType = "O-"
)

// BloodTypes lists every supported blood type
var BloodTypes = []BloodType{APositive, ANegative, BPositive, BNegative, ABPositive, ABNegative, OPositive, ONegative}

// ParseBloodType validates a blood type string
func ParseBloodType(s string) (BloodType, error) {
	bt := BloodType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range BloodTypes {
		if bt == known {
			return bt, nil
		}
	}
	return "", NewValidationError("blood_type", fmt.Sprintf("invalid blood type %q", s))
}

// Component is the processed blood product
type Component string

const (
	WholeBlood    Component = "Whole Blood"
	RedBloodCells Component = "Red Blood Cells"
	Plasma        Component = "Plasma"
	Platelets     Component = "Platelets"
)

// Components lists every supported component
var Components = []Component{WholeBlood, RedBloodCells, Plasma, Platelets}

// ParseComponent validates a component string (case-insensitive)
func ParseComponent(s string) (Component, error) {
	for _, known := range Components {
		if strings.EqualFold(strings.TrimSpace(s), string(known)) {
			return known, nil
		}
	}
	return "", NewValidationError("component", fmt.Sprintf("invalid component %q", s))
}

// Storage locations used by the blood bank. Any non-empty tag is accepted.
const (
	LocationMainStorage  = "Main Storage"
	LocationColdStorage1 = "Cold Storage 1"
	LocationColdStorage2 = "Cold Storage 2"
	LocationMobileUnit   = "Mobile Unit"
)

// LotStatus is the lifecycle state of a blood lot
type LotStatus string

const (
	LotAvailable LotStatus = "available"
	LotReserved  LotStatus = "reserved"
	LotDepleted  LotStatus = "depleted"
)

// ParseLotStatus validates a lot status; "used" is accepted as depleted
func ParseLotStatus(s string) (LotStatus, error) {
	switch st := LotStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case LotAvailable, LotReserved, LotDepleted:
		return st, nil
	case "used":
		return LotDepleted, nil
	}
	return "", NewValidationError("status", fmt.Sprintf("invalid lot status %q", s))
}

// BloodLot is a quantity of one component of one blood type at one location
type BloodLot struct {
	ID           string    `json:"id"`
	BloodType    BloodType `json:"blood_type"`
	Component    Component `json:"component"`
	Units        int       `json:"units"`
	Location     string    `json:"location"`
	DonationDate time.Time `json:"donation_date"`
	ExpiryDate   time.Time `json:"expiry_date"`
	Status       LotStatus `json:"status"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TransactionType is the direction of a unit movement
type TransactionType string

const (
	TxIncoming TransactionType = "incoming"
	TxOutgoing TransactionType = "outgoing"
)

// ParseTransactionType validates a transaction type
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(strings.ToLower(strings.TrimSpace(s))); t {
	case TxIncoming, TxOutgoing:
		return t, nil
	}
	return "", NewValidationError("type", fmt.Sprintf("invalid transaction type %q", s))
}

// Transaction is an immutable audit record of a unit movement
type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	BloodType   BloodType       `json:"blood_type"`
	Component   Component       `json:"component"`
	Units       int             `json:"units"`
	Source      string          `json:"source"`
	Destination string          `json:"destination"`
	CreatedAt   time.Time       `json:"created_at"`
}

// DonorStatus is donor eligibility
type DonorStatus string

const (
	DonorEligible   DonorStatus = "eligible"
	DonorIneligible DonorStatus = "ineligible"
)

// ParseDonorStatus validates a donor status
func ParseDonorStatus(s string) (DonorStatus, error) {
	switch st := DonorStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case DonorEligible, DonorIneligible:
		return st, nil
	}
	return "", NewValidationError("status", fmt.Sprintf("invalid donor status %q", s))
}

// Donor is an identity and eligibility record
type Donor struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	BloodType    BloodType   `json:"blood_type"`
	LastDonation *time.Time  `json:"last_donation"`
	Status       DonorStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// RequestStatus is the hospital request state
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestCompleted RequestStatus = "completed"
)

// ParseRequestStatus validates a request status; "fulfilled" is accepted as completed
func ParseRequestStatus(s string) (RequestStatus, error) {
	switch st := RequestStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case RequestPending, RequestApproved, RequestRejected, RequestCompleted:
		return st, nil
	case "fulfilled":
		return RequestCompleted, nil
	}
	return "", NewValidationError("status", fmt.Sprintf("invalid request status %q", s))
}

// Urgency of a hospital request
type Urgency string

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyCritical Urgency = "critical"
)

// ParseUrgency validates urgency; empty means normal
func ParseUrgency(s string) (Urgency, error) {
	switch u := Urgency(strings.ToLower(strings.TrimSpace(s))); u {
	case "":
		return UrgencyNormal, nil
	case UrgencyNormal, UrgencyUrgent, UrgencyCritical:
		return u, nil
	}
	return "", NewValidationError("urgency", fmt.Sprintf("invalid urgency %q", s))
}

// HospitalRequest is a demand record for blood units
type HospitalRequest struct {
	ID             string        `json:"id"`
	HospitalName   string        `json:"hospital_name"`
	ContactPerson  string        `json:"contact_person"`
	ContactEmail   string        `json:"contact_email"`
	ContactPhone   string        `json:"contact_phone"`
	BloodType      BloodType     `json:"blood_type"`
	Component      Component     `json:"component"`
	UnitsRequested int           `json:"units_requested"`
	Urgency        Urgency       `json:"urgency"`
	Status         RequestStatus `json:"status"`
	Notes          string        `json:"notes"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// User is an account that can sign in
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Password  string    `json:"-"` // Hashed
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RefreshToken represents a stored refresh token
type RefreshToken struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	TokenHash string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at"`
}

// IsRevoked reports whether the token was revoked
func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

// IsExpired reports whether the token is past its expiry
func (rt *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(rt.ExpiresAt)
}

// DateOnly truncates t to midnight UTC of its calendar date
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(field, s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, NewValidationError(field, fmt.Sprintf("invalid date %q (want YYYY-MM-DD)", s))
	}
	return t, nil
}
