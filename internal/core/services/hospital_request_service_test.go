package services

import (
	"context"
	"errors"
	"testing"

	"bloodbank-api/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRequestService() (*HospitalRequestService, *recordingNotifier) {
	n := &recordingNotifier{}
	return NewHospitalRequestService(newTestStore().Requests, n, zap.NewNop()), n
}

func validRequest() *CreateRequestInput {
	return &CreateRequestInput{
		HospitalName:   "St. Mary",
		ContactPerson:  "Dr. Lee",
		ContactPhone:   "555-0199",
		BloodType:      "O-",
		UnitsRequested: 4,
		Urgency:        "critical",
	}
}

func TestHospitalRequestService_CreateIsPending(t *testing.T) {
	svc, n := newTestRequestService()

	req, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.RequestPending, req.Status)
	assert.Equal(t, domain.WholeBlood, req.Component)
	assert.Equal(t, domain.UrgencyCritical, req.Urgency)
	require.Len(t, n.newRequests, 1)
	assert.Equal(t, req.ID, n.newRequests[0].ID)
}

func TestHospitalRequestService_CreateValidation(t *testing.T) {
	svc, _ := newTestRequestService()

	mods := []func(*CreateRequestInput){
		func(in *CreateRequestInput) { in.HospitalName = "" },
		func(in *CreateRequestInput) { in.ContactPerson = "" },
		func(in *CreateRequestInput) { in.ContactPhone = "" },
		func(in *CreateRequestInput) { in.BloodType = "Q" },
		func(in *CreateRequestInput) { in.UnitsRequested = 0 },
		func(in *CreateRequestInput) { in.Urgency = "whenever" },
	}
	for _, mod := range mods {
		in := validRequest()
		mod(in)
		_, err := svc.Create(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestHospitalRequestService_Transitions(t *testing.T) {
	ctx := context.Background()
	svc, n := newTestRequestService()

	req, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	// complete before approve is refused
	_, err = svc.Complete(ctx, req.ID)
	var terr *domain.TransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, domain.RequestPending, terr.From)
	assert.Equal(t, domain.RequestCompleted, terr.To)

	approved, err := svc.Approve(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestApproved, approved.Status)

	_, err = svc.Reject(ctx, req.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	done, err := svc.SetStatus(ctx, req.ID, "fulfilled")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestCompleted, done.Status)

	_, err = svc.Approve(ctx, req.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	assert.Equal(t, []domain.RequestStatus{domain.RequestApproved, domain.RequestCompleted}, n.statuses)
}

func TestHospitalRequestService_RejectIsFinal(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestRequestService()

	req, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestRejected, rejected.Status)

	_, err = svc.SetStatus(ctx, req.ID, "pending")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.Approve(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHospitalRequestService_ListFilters(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestRequestService()

	first, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)
	second := validRequest()
	second.HospitalName = "County General"
	second.BloodType = "A+"
	created, err := svc.Create(ctx, second)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, first.ID)
	require.NoError(t, err)

	all, total, err := svc.List(ctx, &ListRequestsInput{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, created.ID, all[0].ID)

	pending, _, err := svc.List(ctx, &ListRequestsInput{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "County General", pending[0].HospitalName)

	search, _, err := svc.List(ctx, &ListRequestsInput{Search: "mary"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, first.ID, search[0].ID)
}
