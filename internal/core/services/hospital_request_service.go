package services

import (
	"context"
	"strings"

	"bloodbank-api/internal/adapters/persistence/repositories"
	"bloodbank-api/internal/core/domain"

	"go.uber.org/zap"
)

// HospitalRequestService handles hospital blood requests and their status machine.
// No transition touches inventory; dispatch is recorded separately through the inventory service.
type HospitalRequestService struct {
	requestRepo repositories.HospitalRequestRepository
	notifier    Notifier
	log         *zap.Logger
}

// NewHospitalRequestService creates a new hospital request service
func NewHospitalRequestService(
	requestRepo repositories.HospitalRequestRepository,
	notifier Notifier,
	log *zap.Logger,
) *HospitalRequestService {
	return &HospitalRequestService{
		requestRepo: requestRepo,
		notifier:    notifier,
		log:         log,
	}
}

// CreateRequestInput represents a new hospital request
type CreateRequestInput struct {
	HospitalName   string `json:"hospital_name"`
	ContactPerson  string `json:"contact_person"`
	ContactEmail   string `json:"contact_email"`
	ContactPhone   string `json:"contact_phone"`
	BloodType      string `json:"blood_type"`
	Component      string `json:"component"`
	UnitsRequested int    `json:"units_requested"`
	Urgency        string `json:"urgency"`
	Notes          string `json:"notes"`
}

// ListRequestsInput filters request listings
type ListRequestsInput struct {
	Search string
	Status string
	Offset int
	Limit  int
}

// transitions maps each action to its allowed source and resulting status
var transitions = map[string]struct {
	from domain.RequestStatus
	to   domain.RequestStatus
}{
	"approve":  {domain.RequestPending, domain.RequestApproved},
	"reject":   {domain.RequestPending, domain.RequestRejected},
	"complete": {domain.RequestApproved, domain.RequestCompleted},
}

// Create validates and stores a pending request
func (s *HospitalRequestService) Create(ctx context.Context, input *CreateRequestInput) (*domain.HospitalRequest, error) {
	hospital := strings.TrimSpace(input.HospitalName)
	if hospital == "" {
		return nil, domain.NewValidationError("hospital_name", "is required")
	}
	contact := strings.TrimSpace(input.ContactPerson)
	if contact == "" {
		return nil, domain.NewValidationError("contact_person", "is required")
	}
	phone := strings.TrimSpace(input.ContactPhone)
	if phone == "" {
		return nil, domain.NewValidationError("contact_phone", "is required")
	}
	bloodType, err := domain.ParseBloodType(input.BloodType)
	if err != nil {
		return nil, err
	}
	if input.UnitsRequested <= 0 {
		return nil, domain.NewValidationError("units_requested", "must be a positive integer")
	}
	urgency, err := domain.ParseUrgency(input.Urgency)
	if err != nil {
		return nil, err
	}
	component := domain.WholeBlood
	if strings.TrimSpace(input.Component) != "" {
		if component, err = domain.ParseComponent(input.Component); err != nil {
			return nil, err
		}
	}

	req := &domain.HospitalRequest{
		HospitalName:   hospital,
		ContactPerson:  contact,
		ContactEmail:   strings.TrimSpace(input.ContactEmail),
		ContactPhone:   phone,
		BloodType:      bloodType,
		Component:      component,
		UnitsRequested: input.UnitsRequested,
		Urgency:        urgency,
		Status:         domain.RequestPending,
		Notes:          strings.TrimSpace(input.Notes),
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.log.Info("✅ Hospital request created",
		zap.String("request_id", req.ID),
		zap.String("hospital", req.HospitalName),
		zap.String("blood_type", string(req.BloodType)),
		zap.Int("units", req.UnitsRequested),
		zap.String("urgency", string(req.Urgency)),
	)
	s.notifier.NotifyNewRequest(ctx, req)

	return req, nil
}

// Get gets a request by ID
func (s *HospitalRequestService) Get(ctx context.Context, id string) (*domain.HospitalRequest, error) {
	return s.requestRepo.GetByID(ctx, id)
}

// List lists requests, most recent first
func (s *HospitalRequestService) List(ctx context.Context, input *ListRequestsInput) ([]domain.HospitalRequest, int64, error) {
	filter := repositories.RequestFilter{Search: strings.TrimSpace(input.Search)}
	if input.Status != "" {
		st, err := domain.ParseRequestStatus(input.Status)
		if err != nil {
			return nil, 0, err
		}
		filter.Status = st
	}

	reqs, total, err := s.requestRepo.List(ctx, filter, input.Offset, input.Limit)
	if err != nil {
		return nil, 0, err
	}
	if reqs == nil {
		reqs = []domain.HospitalRequest{}
	}
	return reqs, total, nil
}

// Approve moves a pending request to approved
func (s *HospitalRequestService) Approve(ctx context.Context, id string) (*domain.HospitalRequest, error) {
	return s.transition(ctx, id, "approve")
}

// Reject moves a pending request to rejected
func (s *HospitalRequestService) Reject(ctx context.Context, id string) (*domain.HospitalRequest, error) {
	return s.transition(ctx, id, "reject")
}

// Complete moves an approved request to completed
func (s *HospitalRequestService) Complete(ctx context.Context, id string) (*domain.HospitalRequest, error) {
	return s.transition(ctx, id, "complete")
}

// SetStatus applies the transition leading to target, for clients that send a status instead of an action
func (s *HospitalRequestService) SetStatus(ctx context.Context, id, target string) (*domain.HospitalRequest, error) {
	status, err := domain.ParseRequestStatus(target)
	if err != nil {
		return nil, err
	}
	for action, t := range transitions {
		if t.to == status {
			return s.transition(ctx, id, action)
		}
	}

	// pending is never a target
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, &domain.TransitionError{From: req.Status, To: status}
}

func (s *HospitalRequestService) transition(ctx context.Context, id, action string) (*domain.HospitalRequest, error) {
	t := transitions[action]

	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != t.from {
		return nil, &domain.TransitionError{From: req.Status, To: t.to}
	}

	from := req.Status
	req.Status = t.to
	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}

	s.log.Info("✅ Hospital request status changed",
		zap.String("request_id", req.ID),
		zap.String("from", string(from)),
		zap.String("to", string(req.Status)),
	)
	s.notifier.NotifyRequestStatus(ctx, req)

	return req, nil
}
