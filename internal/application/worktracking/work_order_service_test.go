package worktracking

import (
	"context"
	"testing"
	"time"

	"github.com/powergrid/backend/internal/domain/notification"
	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/powergrid/backend/internal/domain/worktracking"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type workOrderFixture struct {
	workOrderRepo *MockWorkOrderRepository
	complaintRepo *MockComplaintRepository
	customerRepo  *MockCustomerRepository
	sink          *MockSink
	service       *WorkOrderService
}

func newWorkOrderFixture(t *testing.T) *workOrderFixture {
	t.Helper()
	f := &workOrderFixture{
		workOrderRepo: new(MockWorkOrderRepository),
		complaintRepo: new(MockComplaintRepository),
		customerRepo:  new(MockCustomerRepository),
		sink:          new(MockSink),
	}
	f.service = NewWorkOrderService(f.workOrderRepo, f.complaintRepo, f.customerRepo, f.sink, zap.NewNop())
	f.service.SetClock(func() time.Time { return testNow })
	return f
}

// =============================================================================
// Create
// =============================================================================

func TestCreateWorkOrder_Standalone(t *testing.T) {
	f := newWorkOrderFixture(t)

	f.workOrderRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Create(context.Background(), employeePrincipal(), CreateWorkOrderRequest{
		CustomerID:  uuid.New(),
		EmployeeID:  uuid.New(),
		WorkType:    worktracking.WorkTypeMeterReading,
		Priority:    worktracking.PriorityHigh,
		Description: "Replace burnt meter at pole 14",
	})
	require.NoError(t, err)

	assert.Equal(t, worktracking.WorkOrderStatusAssigned, resp.Status)
	assert.Nil(t, resp.ComplaintID)
	assert.Equal(t, testNow.AddDate(0, 0, 2), resp.DueDate)
}

func TestCreateWorkOrder_CustomerRejected(t *testing.T) {
	f := newWorkOrderFixture(t)

	_, err := f.service.Create(context.Background(), customerPrincipal(uuid.New()), CreateWorkOrderRequest{
		CustomerID: uuid.New(),
		EmployeeID: uuid.New(),
		WorkType:   worktracking.WorkTypeMaintenance,
		Priority:   worktracking.PriorityLow,
	})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
	f.workOrderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// =============================================================================
// Update
// =============================================================================

// Completing a linked work order resolves the complaint behind it, copies
// the completion notes across, and emits exactly one customer and one admin
// notification.
func TestUpdateWorkOrder_CompletionResolvesComplaint(t *testing.T) {
	f := newWorkOrderFixture(t)
	customerID := uuid.New()
	complaint, workOrder := linkedPair(t, customerID)
	customer := testCustomer(t, customerID)

	f.workOrderRepo.On("FindByID", mock.Anything, workOrder.ID).Return(workOrder, nil)
	f.workOrderRepo.On("Save", mock.Anything, workOrder).Return(nil)
	f.complaintRepo.On("FindByID", mock.Anything, complaint.ID).Return(complaint, nil)
	f.complaintRepo.On("Save", mock.Anything, complaint).Return(nil)
	f.customerRepo.On("FindByID", mock.Anything, customerID).Return(customer, nil)
	f.sink.On("Notify", mock.Anything, customer.UserID, notification.KindComplaintResolved,
		"Complaint resolved", mock.Anything, complaint.ID.String()).Return(nil).Once()
	f.sink.On("NotifyAdmins", mock.Anything, notification.KindComplaintResolved,
		"Complaint resolved", mock.Anything, complaint.ID.String()).Return(nil).Once()

	resp, err := f.service.Update(context.Background(), employeePrincipal(), workOrder.ID, UpdateWorkOrderRequest{
		Status:          ptr(worktracking.WorkOrderStatusCompleted),
		CompletionNotes: "fixed breaker",
	})
	require.NoError(t, err)

	assert.Equal(t, worktracking.WorkOrderStatusCompleted, resp.Status)
	assert.Equal(t, worktracking.ComplaintStatusResolved, complaint.Status)
	assert.Equal(t, "fixed breaker", complaint.ResolutionNotes)
	require.NotNil(t, complaint.ResolvedAt)
	assert.Equal(t, testNow, *complaint.ResolvedAt)
	f.sink.AssertExpectations(t)
}

// Starting a linked work order pulls the complaint along to in progress.
func TestUpdateWorkOrder_StartSyncsComplaint(t *testing.T) {
	f := newWorkOrderFixture(t)
	customerID := uuid.New()

	// Pair one step earlier than linkedPair: complaint assigned, work
	// order not yet started.
	complaint := testComplaint(t, customerID)
	_, err := complaint.Assign(uuid.New())
	require.NoError(t, err)
	complaintID := complaint.ID
	workOrder, err := worktracking.NewWorkOrder(
		customerID, *complaint.EmployeeID, &complaintID,
		worktracking.WorkTypeComplaintResolution, complaint.Priority,
		complaint.Subject, testNow,
	)
	require.NoError(t, err)
	require.NoError(t, complaint.LinkWorkOrder(workOrder.ID))

	f.workOrderRepo.On("FindByID", mock.Anything, workOrder.ID).Return(workOrder, nil)
	f.workOrderRepo.On("Save", mock.Anything, workOrder).Return(nil)
	f.complaintRepo.On("FindByID", mock.Anything, complaint.ID).Return(complaint, nil)
	f.complaintRepo.On("Save", mock.Anything, complaint).Return(nil)

	_, err = f.service.Update(context.Background(), employeePrincipal(), workOrder.ID, UpdateWorkOrderRequest{
		Status: ptr(worktracking.WorkOrderStatusInProgress),
	})
	require.NoError(t, err)

	assert.Equal(t, worktracking.ComplaintStatusInProgress, complaint.Status)
	f.sink.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// The work order write is authoritative; a complaint sync failure is logged
// and the work order update still succeeds.
func TestUpdateWorkOrder_SyncFailureDoesNotFailUpdate(t *testing.T) {
	f := newWorkOrderFixture(t)
	customerID := uuid.New()
	complaint, workOrder := linkedPair(t, customerID)

	f.workOrderRepo.On("FindByID", mock.Anything, workOrder.ID).Return(workOrder, nil)
	f.workOrderRepo.On("Save", mock.Anything, workOrder).Return(nil)
	f.complaintRepo.On("FindByID", mock.Anything, complaint.ID).Return(complaint, nil)
	f.complaintRepo.On("Save", mock.Anything, complaint).Return(assert.AnError)

	resp, err := f.service.Update(context.Background(), employeePrincipal(), workOrder.ID, UpdateWorkOrderRequest{
		Status:          ptr(worktracking.WorkOrderStatusCompleted),
		CompletionNotes: "fixed breaker",
	})
	require.NoError(t, err)
	assert.Equal(t, worktracking.WorkOrderStatusCompleted, resp.Status)
	f.sink.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// Sync never regresses a complaint a human already advanced.
func TestUpdateWorkOrder_SyncNeverMovesComplaintBackward(t *testing.T) {
	f := newWorkOrderFixture(t)
	customerID := uuid.New()
	complaint, workOrder := linkedPair(t, customerID)
	customer := testCustomer(t, customerID)

	// The complaint was already closed out of band.
	require.NoError(t, complaint.Resolve("resolved by phone", testNow))
	require.NoError(t, complaint.Close(testNow))

	f.workOrderRepo.On("FindByID", mock.Anything, workOrder.ID).Return(workOrder, nil)
	f.workOrderRepo.On("Save", mock.Anything, workOrder).Return(nil)
	f.complaintRepo.On("FindByID", mock.Anything, complaint.ID).Return(complaint, nil)
	f.customerRepo.On("FindByID", mock.Anything, customerID).Return(customer, nil)
	f.sink.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.sink.On("NotifyAdmins", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.service.Update(context.Background(), employeePrincipal(), workOrder.ID, UpdateWorkOrderRequest{
		Status: ptr(worktracking.WorkOrderStatusCompleted),
	})
	require.NoError(t, err)

	assert.Equal(t, worktracking.ComplaintStatusClosed, complaint.Status)
	assert.Equal(t, "resolved by phone", complaint.ResolutionNotes)
	f.complaintRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdateWorkOrder_ReassignKeepsDueDate(t *testing.T) {
	f := newWorkOrderFixture(t)
	customerID := uuid.New()
	_, workOrder := linkedPair(t, customerID)
	originalDue := workOrder.DueDate
	newEmployeeID := uuid.New()

	f.workOrderRepo.On("FindByID", mock.Anything, workOrder.ID).Return(workOrder, nil)
	f.workOrderRepo.On("Save", mock.Anything, workOrder).Return(nil)

	resp, err := f.service.Update(context.Background(), employeePrincipal(), workOrder.ID, UpdateWorkOrderRequest{
		EmployeeID: &newEmployeeID,
	})
	require.NoError(t, err)
	assert.Equal(t, originalDue, resp.DueDate)
}

func TestUpdateWorkOrder_InvalidStatusTarget(t *testing.T) {
	f := newWorkOrderFixture(t)
	_, workOrder := linkedPair(t, uuid.New())

	f.workOrderRepo.On("FindByID", mock.Anything, workOrder.ID).Return(workOrder, nil)

	_, err := f.service.Update(context.Background(), employeePrincipal(), workOrder.ID, UpdateWorkOrderRequest{
		Status: ptr(worktracking.WorkOrderStatusAssigned),
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATUS", domainErr.Code)
	f.workOrderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// =============================================================================
// Queries
// =============================================================================

func TestWorkOrderQueue_StaffOnly(t *testing.T) {
	f := newWorkOrderFixture(t)
	_, workOrder := linkedPair(t, uuid.New())
	filter := shared.DefaultFilter()

	f.workOrderRepo.On("FindQueue", mock.Anything, filter).
		Return([]worktracking.WorkOrder{*workOrder}, int64(1), nil)

	page, err := f.service.Queue(context.Background(), employeePrincipal(), filter)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	_, err = f.service.Queue(context.Background(), customerPrincipal(uuid.New()), filter)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}
