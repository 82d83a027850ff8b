package application_test

import (
	"context"
	"sync"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kilat-Pet-Delivery/service-adoption/internal/application"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/adoption"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/customer"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/domain/pet"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/domain"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/metrics"
)

func workflowCount(t *testing.T, f *fixture, op, outcome string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, f.metrics.WorkflowOps.WithLabelValues(op, outcome).Write(&m))
	return m.GetCounter().GetValue()
}

func TestRequestAdoption_CreatesPendingRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.adoptions.RequestAdoption(ctx, "CUST001", "D_001")
	require.NoError(t, err)
	assert.Equal(t, "Pending", req.Status)
	assert.Equal(t, "CUST001", req.CustomerID)
	assert.NotEmpty(t, req.ID)

	assert.False(t, f.pet(t, "D_001").Adopted())
	require.Len(t, f.storedRequests(t), 1)
	assert.Equal(t, []string{application.AdoptionRequested}, f.events.drain())
	assert.Equal(t, 1.0, workflowCount(t, f, "request", metrics.OutcomeSuccess))
}

func TestRequestAdoption_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		customerID string
		petID      string
		setup      func(t *testing.T, f *fixture)
		wantErr    error
		wantCode   domain.ErrorCode
	}{
		{name: "blank pet id", customerID: "CUST001", petID: "  ", wantErr: adoption.ErrInvalidRequest, wantCode: domain.CodeValidation},
		{name: "unknown pet", customerID: "CUST001", petID: "X_404", wantErr: pet.ErrNotFound, wantCode: domain.CodeNotFound},
		{name: "unknown customer", customerID: "CUST404", petID: "D_001", wantErr: customer.ErrNotFound, wantCode: domain.CodeNotFound},
		{name: "customer too young", customerID: "CUST003", petID: "D_001", wantErr: customer.ErrNotEligible, wantCode: domain.CodeInvalidState},
		{
			name: "pet already adopted", customerID: "CUST002", petID: "D_001",
			setup: func(t *testing.T, f *fixture) {
				_, err := f.adoptions.RequestAdoption(context.Background(), "CUST001", "D_001")
				require.NoError(t, err)
				_, err = f.adoptions.ApproveAdoption(context.Background(), "CUST001", "D_001")
				require.NoError(t, err)
			},
			wantErr: adoption.ErrPetUnavailable, wantCode: domain.CodeInvalidState,
		},
		{
			name: "duplicate request", customerID: "CUST001", petID: "D_001",
			setup: func(t *testing.T, f *fixture) {
				_, err := f.adoptions.RequestAdoption(context.Background(), "CUST001", "D_001")
				require.NoError(t, err)
			},
			wantErr: adoption.ErrDuplicateRequest, wantCode: domain.CodeConflict,
		},
		{
			name: "pet unknown is reported before customer", customerID: "CUST404", petID: "X_404",
			wantErr: pet.ErrNotFound, wantCode: domain.CodeNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(t, f)
			}
			before := len(f.session.Ledger().All())

			_, err := f.adoptions.RequestAdoption(context.Background(), tt.customerID, tt.petID)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCode, domain.CodeOf(err))
			assert.Len(t, f.session.Ledger().All(), before)
		})
	}
}

func TestApproveAdoption_MarksPetAdoptedAndPersistsBoth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.adoptions.RequestAdoption(ctx, "CUST001", "D_001")
	require.NoError(t, err)

	req, err := f.adoptions.ApproveAdoption(ctx, "CUST001", "D_001")
	require.NoError(t, err)
	assert.Equal(t, "Approved", req.Status)

	assert.True(t, f.pet(t, "D_001").Adopted())
	assert.True(t, f.storedPet(t, "D_001").Adopted())
	stored := f.storedRequests(t)
	require.Len(t, stored, 1)
	assert.Equal(t, adoption.StatusApproved, stored[0].Status())

	profile, err := f.customers.GetProfile(ctx, "CUST001")
	require.NoError(t, err)
	assert.Equal(t, []string{"D_001"}, profile.AdoptedPets)
}

func TestApproveAdoption_SecondApprovalForSamePetFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.adoptions.RequestAdoption(ctx, "CUST001", "D_001")
	require.NoError(t, err)
	_, err = f.adoptions.RequestAdoption(ctx, "CUST002", "D_001")
	require.NoError(t, err)

	_, err = f.adoptions.ApproveAdoption(ctx, "CUST001", "D_001")
	require.NoError(t, err)
	_, err = f.adoptions.ApproveAdoption(ctx, "CUST002", "D_001")
	require.ErrorIs(t, err, adoption.ErrPetUnavailable)

	r, err := f.session.Ledger().Find("CUST002", "D_001")
	require.NoError(t, err)
	assert.Equal(t, adoption.StatusPending, r.Status())
	assert.Equal(t, 1.0, workflowCount(t, f, "approve", metrics.OutcomeRejected))
}

func TestApproveAdoption_ApprovedRecordKeepsPetUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		release func(t *testing.T, f *fixture)
	}{
		{
			name: "adopted flag edited away",
			release: func(t *testing.T, f *fixture) {
				available := false
				_, err := f.pets.UpdatePet(context.Background(), "D_001", application.UpdatePetRequest{
					Name: "Rex", Breed: "Labrador", Age: 4, Gender: "Male", Adopted: &available,
				})
				require.NoError(t, err)
			},
		},
		{
			name: "pet removed and added again",
			release: func(t *testing.T, f *fixture) {
				ctx := context.Background()
				require.NoError(t, f.pets.RemovePet(ctx, "D_001"))
				_, err := f.pets.AddPet(ctx, application.CreatePetRequest{
					ID: "D_001", Name: "Rex", Breed: "Labrador", Age: 4, Gender: "Male",
				})
				require.NoError(t, err)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			_, err := f.adoptions.RequestAdoption(ctx, "CUST001", "D_001")
			require.NoError(t, err)
			_, err = f.adoptions.RequestAdoption(ctx, "CUST002", "D_001")
			require.NoError(t, err)
			_, err = f.adoptions.ApproveAdoption(ctx, "CUST001", "D_001")
			require.NoError(t, err)

			tt.release(t, f)
			require.False(t, f.pet(t, "D_001").Adopted())

			_, err = f.adoptions.ApproveAdoption(ctx, "CUST002", "D_001")
			require.ErrorIs(t, err, adoption.ErrPetUnavailable)

			approved := 0
			for _, r := range f.session.Ledger().ListByPet("D_001") {
				if r.IsApproved() {
					approved++
				}
			}
			assert.Equal(t, 1, approved)
		})
	}
}

func TestApproveAdoption_ConcurrentApprovalsSerialize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.adoptions.RequestAdoption(ctx, "CUST001", "C_002")
	require.NoError(t, err)
	_, err = f.adoptions.RequestAdoption(ctx, "CUST002", "C_002")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{"CUST001", "CUST002"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.adoptions.ApproveAdoption(ctx, id, "C_002")
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, adoption.ErrPetUnavailable)
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, f.session.Ledger().ListByStatus(adoption.StatusApproved), 1)
}

func TestApproveAdoption_RequiresPendingRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.adoptions.ApproveAdoption(ctx, "CUST001", "D_001")
	require.ErrorIs(t, err, adoption.ErrRequestNotFound)

	_, err = f.adoptions.RequestAdoption(ctx, "CUST001", "D_001")
	require.NoError(t, err)
	_, err = f.adoptions.DenyAdoption(ctx, "CUST001", "D_001")
	require.NoError(t, err)

	_, err = f.adoptions.ApproveAdoption(ctx, "CUST001", "D_001")
	require.ErrorIs(t, err, adoption.ErrInvalidTransition)
	assert.False(t, f.pet(t, "D_001").Adopted())
}

func TestApproveAdoption_RollsBackWhenSaveFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.adoptions.RequestAdoption(ctx, "CUST001", "D_001")
	require.NoError(t, err)

	f.store.failing.Store(true)
	_, err = f.adoptions.ApproveAdoption(ctx, "CUST001", "D_001")
	require.ErrorIs(t, err, errDiskFull)
	assert.Empty(t, domain.CodeOf(err))

	assert.False(t, f.pet(t, "D_001").Adopted())
	r, err := f.session.Ledger().Find("CUST001", "D_001")
	require.NoError(t, err)
	assert.Equal(t, adoption.StatusPending, r.Status())
	assert.Equal(t, 1.0, workflowCount(t, f, "approve", metrics.OutcomeError))

	f.store.failing.Store(false)
	_, err = f.adoptions.ApproveAdoption(ctx, "CUST001", "D_001")
	require.NoError(t, err)
}

func TestRequestAdoption_RollsBackWhenSaveFails(t *testing.T) {
	f := newFixture(t)
	f.store.failing.Store(true)

	_, err := f.adoptions.RequestAdoption(context.Background(), "CUST001", "D_001")
	require.ErrorIs(t, err, errDiskFull)
	assert.Empty(t, f.session.Ledger().All())
	assert.Empty(t, f.events.drain())
}

func TestDenyAdoption_ReleasesPet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.adoptions.RequestAdoption(ctx, "CUST001", "D_001")
	require.NoError(t, err)
	_, err = f.adoptions.ApproveAdoption(ctx, "CUST001", "D_001")
	require.NoError(t, err)

	req, err := f.adoptions.DenyAdoption(ctx, "CUST001", "D_001")
	require.NoError(t, err)
	assert.Equal(t, "Denied", req.Status)
	assert.False(t, f.pet(t, "D_001").Adopted())
	assert.False(t, f.storedPet(t, "D_001").Adopted())

	_, err = f.adoptions.DenyAdoption(ctx, "CUST001", "D_001")
	require.NoError(t, err)
}

func TestDenyAdoption_KeepsPetAdoptedByAnotherCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.adoptions.RequestAdoption(ctx, "CUST001", "D_001")
	require.NoError(t, err)
	_, err = f.adoptions.RequestAdoption(ctx, "CUST002", "D_001")
	require.NoError(t, err)
	_, err = f.adoptions.ApproveAdoption(ctx, "CUST001", "D_001")
	require.NoError(t, err)

	_, err = f.adoptions.DenyAdoption(ctx, "CUST002", "D_001")
	require.NoError(t, err)
	assert.True(t, f.pet(t, "D_001").Adopted())
}

func TestDenyAdoption_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.adoptions.DenyAdoption(ctx, "CUST001", "X_404")
	require.ErrorIs(t, err, pet.ErrNotFound)

	_, err = f.adoptions.DenyAdoption(ctx, "CUST001", "D_001")
	require.ErrorIs(t, err, adoption.ErrRequestNotFound)
}

func TestCancelAdoptionRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.adoptions.RequestAdoption(ctx, "CUST001", "D_001")
	require.NoError(t, err)
	_, err = f.adoptions.RequestAdoption(ctx, "CUST001", "C_002")
	require.NoError(t, err)
	_, err = f.adoptions.ApproveAdoption(ctx, "CUST001", "C_002")
	require.NoError(t, err)

	require.NoError(t, f.adoptions.CancelAdoptionRequest(ctx, "CUST001", "D_001"))
	assert.Len(t, f.adoptions.ListMyRequests(ctx, "CUST001"), 1)
	assert.False(t, f.pet(t, "D_001").Adopted())

	err = f.adoptions.CancelAdoptionRequest(ctx, "CUST001", "D_001")
	require.ErrorIs(t, err, adoption.ErrRequestNotFound)

	err = f.adoptions.CancelAdoptionRequest(ctx, "CUST001", "C_002")
	require.ErrorIs(t, err, adoption.ErrAlreadyApproved)
	assert.True(t, f.pet(t, "C_002").Adopted())
}

func TestCancelledRequestCanBeFiledAgain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.adoptions.RequestAdoption(ctx, "CUST001", "D_001")
	require.NoError(t, err)
	_, err = f.adoptions.DenyAdoption(ctx, "CUST001", "D_001")
	require.NoError(t, err)

	_, err = f.adoptions.RequestAdoption(ctx, "CUST001", "D_001")
	require.ErrorIs(t, err, adoption.ErrDuplicateRequest)

	require.NoError(t, f.adoptions.CancelAdoptionRequest(ctx, "CUST001", "D_001"))
	_, err = f.adoptions.RequestAdoption(ctx, "CUST001", "D_001")
	require.NoError(t, err)
}

func TestRemoveRequestRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.adoptions.RequestAdoption(ctx, "CUST001", "D_001")
	require.NoError(t, err)

	err = f.adoptions.RemoveRequestRecord(ctx, "CUST001", "D_001")
	require.ErrorIs(t, err, adoption.ErrRequestStillPending)
	assert.Len(t, f.session.Ledger().All(), 1)

	_, err = f.adoptions.ApproveAdoption(ctx, "CUST001", "D_001")
	require.NoError(t, err)
	require.NoError(t, f.adoptions.RemoveRequestRecord(ctx, "CUST001", "D_001"))
	assert.Empty(t, f.storedRequests(t))
	assert.True(t, f.pet(t, "D_001").Adopted())

	err = f.adoptions.RemoveRequestRecord(ctx, "CUST001", "D_001")
	require.ErrorIs(t, err, adoption.ErrRequestNotFound)
}

func TestRequestDetailsAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.adoptions.RequestAdoption(ctx, "CUST001", "D_001")
	require.NoError(t, err)
	_, err = f.adoptions.RequestAdoption(ctx, "CUST002", "C_002")
	require.NoError(t, err)
	_, err = f.adoptions.ApproveAdoption(ctx, "CUST002", "C_002")
	require.NoError(t, err)

	details, err := f.adoptions.GetRequestDetails(ctx, "CUST001", "D_001")
	require.NoError(t, err)
	require.NotNil(t, details.Customer)
	require.NotNil(t, details.Pet)
	assert.Equal(t, "Alice", details.Customer.Name)
	assert.Equal(t, "Rex", details.Pet.Name)
	assert.Equal(t, "Dog", details.Pet.Species)

	stats := f.adoptions.Stats(ctx)
	assert.Equal(t, application.AdoptionStatsDTO{
		TotalRequests: 2,
		Pending:       1,
		Approved:      1,
		Denied:        0,
		TotalPets:     3,
		AvailablePets: 2,
	}, stats)

	pending, err := f.adoptions.ListRequests(ctx, "Pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = f.adoptions.ListRequests(ctx, "Lost")
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}
