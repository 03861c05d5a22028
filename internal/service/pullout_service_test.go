package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go-carwash-pullout/internal/metrics"
	"go-carwash-pullout/internal/model"
	"go-carwash-pullout/internal/repository"
	"go-carwash-pullout/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

type publishedEvent struct {
	event   string
	payload map[string]interface{}
}

type eventRecorder struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (r *eventRecorder) Publish(event string, payload map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, publishedEvent{event, payload})
}

func (r *eventRecorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if action, ok := e.payload["action"].(string); ok {
			out = append(out, action)
		}
	}
	return out
}

type pulloutFixture struct {
	db     *gorm.DB
	svc    *pulloutService
	events *eventRecorder
}

var manager = Actor{ID: 1, Name: "Maria Santos", Email: "maria@carwash.local"}

// newPulloutFixture seeds employee 7, job-line 42 in "Bay 2", a returnable
// supply 1 with stock 10 and a consumable supply 2 with stock 5.
func newPulloutFixture(t *testing.T) *pulloutFixture {
	t.Helper()
	db := testutil.NewDB(t)

	emp := testutil.CreateEmployee(t, db, 7, "Pedro Reyes")
	testutil.CreateJobLine(t, db, testutil.JobLine{DetailID: 42, BayLabel: "Bay 2", EmployeeID: &emp.ID, ServiceName: "Wash & Wax"})
	testutil.CreateSupply(t, db, 1, "Pressure Washer", model.SupplyReturnable, "10")
	testutil.CreateSupply(t, db, 2, "Car Shampoo", model.SupplyConsumable, "5")

	f := &pulloutFixture{db: db, events: &eventRecorder{}}
	f.svc = f.build(repository.NewPulloutRepo(db))
	return f
}

func (f *pulloutFixture) build(pRepo repository.PulloutRepository) *pulloutService {
	svc := NewPulloutService(
		f.db,
		pRepo,
		repository.NewSupplyRepo(f.db),
		repository.NewEmployeeRepo(f.db),
		repository.NewServiceOrderRepo(f.db),
		f.events,
		metrics.NewCollector(),
	).(*pulloutService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func (f *pulloutFixture) create(t *testing.T, lines ...PulloutLineInput) *model.PulloutRequest {
	t.Helper()
	req, err := f.svc.CreateRequest(&CreatePulloutInput{
		EmployeeID:           7,
		ServiceOrderDetailID: 42,
		Supplies:             lines,
	}, manager)
	require.NoError(t, err)
	return req
}

func assertStock(t *testing.T, db *gorm.DB, supplyID uint, want int64) {
	t.Helper()
	got := testutil.StockOf(t, db, supplyID)
	assert.True(t, got.Equal(decimal.NewFromInt(want)), "supply %d stock = %s, want %d", supplyID, got, want)
}

func TestPulloutLifecycle(t *testing.T) {
	f := newPulloutFixture(t)

	// Creating leaves stock alone.
	req := f.create(t, PulloutLineInput{SupplyID: 1, Quantity: 3}, PulloutLineInput{SupplyID: 2, Quantity: 1})
	assert.Equal(t, model.PulloutPending, req.Status)
	require.Len(t, req.Details, 2)
	assert.Equal(t, uint(42), req.ServiceOrderDetailID)
	require.NotNil(t, req.PulloutService)
	assert.Equal(t, "Bay 2", req.PulloutService.BayLabel)
	for _, d := range req.Details {
		assert.Equal(t, req.PulloutServiceID, d.PulloutServiceID)
		assert.False(t, d.IsReturned)
	}
	assertStock(t, f.db, 1, 10)
	assertStock(t, f.db, 2, 5)

	// Approving deducts every line.
	approved, err := f.svc.Approve(req.ID, "Maria Santos", manager)
	require.NoError(t, err)
	assert.Equal(t, model.PulloutApproved, approved.Status)
	assert.Equal(t, "Maria Santos", approved.DecidedBy)
	require.NotNil(t, approved.DecidedAt)
	assert.True(t, approved.DecidedAt.Equal(fixedNow))
	assertStock(t, f.db, 1, 7)
	assertStock(t, f.db, 2, 4)

	// Returning the returnable line restores it.
	washer := req.Details[0]
	require.Equal(t, uint(1), washer.SupplyID)
	outcome, err := f.svc.ReturnLine(washer.ID, "Pedro Reyes", manager)
	require.NoError(t, err)
	assert.True(t, outcome.Returned)
	assert.Empty(t, outcome.Reason)
	assert.True(t, outcome.Detail.IsReturned)
	assert.Equal(t, "Pedro Reyes", outcome.Detail.ReturnedBy)
	assertStock(t, f.db, 1, 10)

	// A second return is refused and changes nothing.
	outcome, err = f.svc.ReturnLine(washer.ID, "Pedro Reyes", manager)
	require.NoError(t, err)
	assert.False(t, outcome.Returned)
	assert.Equal(t, ReturnReasonAlreadyReturned, outcome.Reason)
	assertStock(t, f.db, 1, 10)

	assert.Equal(t, []string{"created", "approved", "returned"}, f.events.actions())
	assert.Equal(t, int64(3), testutil.Count(t, f.db, &model.StockMovement{}))
}

func TestCreateRequestValidation(t *testing.T) {
	tests := []struct {
		name  string
		input CreatePulloutInput
		field string
		tag   string
	}{
		{"empty supplies", CreatePulloutInput{EmployeeID: 7, ServiceOrderDetailID: 42, Supplies: []PulloutLineInput{}}, "supplies", "min"},
		{"missing supplies", CreatePulloutInput{EmployeeID: 7, ServiceOrderDetailID: 42}, "supplies", "required"},
		{"missing employee", CreatePulloutInput{ServiceOrderDetailID: 42, Supplies: []PulloutLineInput{{SupplyID: 1, Quantity: 1}}}, "employee_id", "required"},
		{"zero quantity", CreatePulloutInput{EmployeeID: 7, ServiceOrderDetailID: 42, Supplies: []PulloutLineInput{{SupplyID: 1, Quantity: 0}}}, "supplies[0].quantity", "gt"},
		{"negative quantity", CreatePulloutInput{EmployeeID: 7, ServiceOrderDetailID: 42, Supplies: []PulloutLineInput{{SupplyID: 1, Quantity: -2}}}, "supplies[0].quantity", "gt"},
		{"unknown employee", CreatePulloutInput{EmployeeID: 8, ServiceOrderDetailID: 42, Supplies: []PulloutLineInput{{SupplyID: 1, Quantity: 1}}}, "employee_id", "exists"},
		{"unknown job-line", CreatePulloutInput{EmployeeID: 7, ServiceOrderDetailID: 43, Supplies: []PulloutLineInput{{SupplyID: 1, Quantity: 1}}}, "service_order_detail_id", "exists"},
		{"unknown supply", CreatePulloutInput{EmployeeID: 7, ServiceOrderDetailID: 42, Supplies: []PulloutLineInput{{SupplyID: 1, Quantity: 1}, {SupplyID: 9, Quantity: 1}}}, "supplies[1].supply_id", "exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPulloutFixture(t)
			input := tt.input

			_, err := f.svc.CreateRequest(&input, manager)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.NotEmpty(t, verr.Fields)
			assert.Equal(t, tt.field, verr.Fields[0].FailedField)
			assert.Equal(t, tt.tag, verr.Fields[0].Tag)

			assert.Zero(t, testutil.Count(t, f.db, &model.PulloutRequest{}))
			assert.Zero(t, testutil.Count(t, f.db, &model.PulloutRequestDetail{}))
			assert.Zero(t, testutil.Count(t, f.db, &model.PulloutService{}))
			assert.Empty(t, f.events.actions())
		})
	}
}

func TestCreateRequestUsesBayPlaceholder(t *testing.T) {
	f := newPulloutFixture(t)
	testutil.CreateJobLine(t, f.db, testutil.JobLine{DetailID: 50})

	req, err := f.svc.CreateRequest(&CreatePulloutInput{
		EmployeeID:           7,
		ServiceOrderDetailID: 50,
		Supplies:             []PulloutLineInput{{SupplyID: 2, Quantity: 1}},
	}, manager)
	require.NoError(t, err)
	require.NotNil(t, req.PulloutService)
	assert.Equal(t, UnassignedBay, req.PulloutService.BayLabel)
}

// failingDetailRepo lets the first line through and fails the second.
type failingDetailRepo struct {
	repository.PulloutRepository
	calls int
}

func (r *failingDetailRepo) CreateDetail(tx *gorm.DB, detail *model.PulloutRequestDetail) error {
	r.calls++
	if r.calls > 1 {
		return errors.New("connection reset")
	}
	return r.PulloutRepository.CreateDetail(tx, detail)
}

func TestCreateRequestRollsBackPartialWrites(t *testing.T) {
	f := newPulloutFixture(t)
	repo := &failingDetailRepo{PulloutRepository: repository.NewPulloutRepo(f.db)}
	svc := f.build(repo)

	_, err := svc.CreateRequest(&CreatePulloutInput{
		EmployeeID:           7,
		ServiceOrderDetailID: 42,
		Supplies:             []PulloutLineInput{{SupplyID: 1, Quantity: 1}, {SupplyID: 2, Quantity: 1}},
	}, manager)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, 2, repo.calls)

	db := f.db.Unscoped()
	assert.Zero(t, testutil.Count(t, db, &model.PulloutRequest{}))
	assert.Zero(t, testutil.Count(t, db, &model.PulloutRequestDetail{}))
	assert.Zero(t, testutil.Count(t, db, &model.PulloutService{}))
	assert.Empty(t, f.events.actions())
}

func TestApproveAppliesLinesExactlyOnce(t *testing.T) {
	f := newPulloutFixture(t)
	req := f.create(t,
		PulloutLineInput{SupplyID: 1, Quantity: 3},
		PulloutLineInput{SupplyID: 1, Quantity: 2},
		PulloutLineInput{SupplyID: 2, Quantity: 4},
	)

	_, err := f.svc.Approve(req.ID, "Maria Santos", manager)
	require.NoError(t, err)
	assertStock(t, f.db, 1, 5)
	assertStock(t, f.db, 2, 1)

	_, err = f.svc.Approve(req.ID, "Maria Santos", manager)
	assert.ErrorIs(t, err, ErrRequestAlreadyDecided)
	_, err = f.svc.Reject(req.ID, manager)
	assert.ErrorIs(t, err, ErrRequestAlreadyDecided)

	assertStock(t, f.db, 1, 5)
	assertStock(t, f.db, 2, 1)
	assert.Equal(t, int64(3), testutil.Count(t, f.db, &model.StockMovement{}))
}

func TestApproveInsufficientStockAbortsEverything(t *testing.T) {
	f := newPulloutFixture(t)
	req := f.create(t,
		PulloutLineInput{SupplyID: 1, Quantity: 3},
		PulloutLineInput{SupplyID: 2, Quantity: 6},
	)

	_, err := f.svc.Approve(req.ID, "Maria Santos", manager)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Car Shampoo")

	got, err := f.svc.GetRequest(req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PulloutPending, got.Status)
	assert.Empty(t, got.DecidedBy)
	assertStock(t, f.db, 1, 10)
	assertStock(t, f.db, 2, 5)
	assert.Zero(t, testutil.Count(t, f.db, &model.StockMovement{}))
}

func TestApproveInputErrors(t *testing.T) {
	f := newPulloutFixture(t)
	req := f.create(t, PulloutLineInput{SupplyID: 2, Quantity: 1})

	_, err := f.svc.Approve(req.ID, "   ", manager)
	assert.ErrorIs(t, err, ErrApproverRequired)

	_, err = f.svc.Approve(999, "Maria Santos", manager)
	assert.ErrorIs(t, err, ErrPulloutNotFound)

	assertStock(t, f.db, 2, 5)
}

func TestRejectIsTerminalWithoutStockEffect(t *testing.T) {
	f := newPulloutFixture(t)
	req := f.create(t, PulloutLineInput{SupplyID: 1, Quantity: 3})

	rejected, err := f.svc.Reject(req.ID, manager)
	require.NoError(t, err)
	assert.Equal(t, model.PulloutRejected, rejected.Status)
	assert.Equal(t, manager.Label(), rejected.DecidedBy)
	require.NotNil(t, rejected.DecidedAt)
	assertStock(t, f.db, 1, 10)

	_, err = f.svc.Approve(req.ID, "Maria Santos", manager)
	assert.ErrorIs(t, err, ErrRequestAlreadyDecided)
	assertStock(t, f.db, 1, 10)

	// Lines of a rejected request cannot be returned either.
	outcome, err := f.svc.ReturnLine(req.Details[0].ID, "Pedro Reyes", manager)
	require.NoError(t, err)
	assert.False(t, outcome.Returned)
	assert.Equal(t, ReturnReasonNotApproved, outcome.Reason)

	_, err = f.svc.Reject(12345, manager)
	assert.ErrorIs(t, err, ErrPulloutNotFound)
}

func TestRejectWithoutActorRecordsSystem(t *testing.T) {
	f := newPulloutFixture(t)
	req := f.create(t, PulloutLineInput{SupplyID: 1, Quantity: 1})

	rejected, err := f.svc.Reject(req.ID, Actor{})
	require.NoError(t, err)
	assert.Equal(t, "system", rejected.DecidedBy)
}

func TestReturnLineConsumableGuard(t *testing.T) {
	f := newPulloutFixture(t)
	req := f.create(t, PulloutLineInput{SupplyID: 2, Quantity: 2})
	_, err := f.svc.Approve(req.ID, "Maria Santos", manager)
	require.NoError(t, err)
	assertStock(t, f.db, 2, 3)

	for i := 0; i < 2; i++ {
		outcome, err := f.svc.ReturnLine(req.Details[0].ID, "Pedro Reyes", manager)
		require.NoError(t, err)
		assert.False(t, outcome.Returned)
		assert.Equal(t, ReturnReasonConsumable, outcome.Reason)
		assert.False(t, outcome.Detail.IsReturned)
	}

	// Even a line already flagged as returned stays a consumable refusal.
	require.NoError(t, f.db.Model(&model.PulloutRequestDetail{}).Where("id = ?", req.Details[0].ID).Update("is_returned", true).Error)
	outcome, err := f.svc.ReturnLine(req.Details[0].ID, "Pedro Reyes", manager)
	require.NoError(t, err)
	assert.Equal(t, ReturnReasonConsumable, outcome.Reason)

	assertStock(t, f.db, 2, 3)
}

func TestReturnLineRequiresApproval(t *testing.T) {
	f := newPulloutFixture(t)
	req := f.create(t, PulloutLineInput{SupplyID: 1, Quantity: 2})

	outcome, err := f.svc.ReturnLine(req.Details[0].ID, "Pedro Reyes", manager)
	require.NoError(t, err)
	assert.False(t, outcome.Returned)
	assert.Equal(t, ReturnReasonNotApproved, outcome.Reason)
	assertStock(t, f.db, 1, 10)
}

func TestReturnLineDefaultsToActor(t *testing.T) {
	f := newPulloutFixture(t)
	req := f.create(t, PulloutLineInput{SupplyID: 1, Quantity: 2})
	_, err := f.svc.Approve(req.ID, "Maria Santos", manager)
	require.NoError(t, err)

	outcome, err := f.svc.ReturnLine(req.Details[0].ID, "", manager)
	require.NoError(t, err)
	assert.True(t, outcome.Returned)
	assert.Equal(t, manager.Label(), outcome.Detail.ReturnedBy)
	require.NotNil(t, outcome.Detail.Supply)
	assert.True(t, outcome.Detail.Supply.Stock.Equal(decimal.NewFromInt(10)))
}

func TestReturnLineNotFound(t *testing.T) {
	f := newPulloutFixture(t)
	_, err := f.svc.ReturnLine(404, "Pedro Reyes", manager)
	assert.ErrorIs(t, err, ErrPulloutDetailNotFound)
}

func TestDeleteKeepsStock(t *testing.T) {
	f := newPulloutFixture(t)
	req := f.create(t, PulloutLineInput{SupplyID: 1, Quantity: 4})
	_, err := f.svc.Approve(req.ID, "Maria Santos", manager)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(req.ID, manager))
	assertStock(t, f.db, 1, 6)

	_, err = f.svc.GetRequest(req.ID)
	assert.ErrorIs(t, err, ErrPulloutNotFound)
	assert.ErrorIs(t, f.svc.Delete(req.ID, manager), ErrPulloutNotFound)

	views, err := f.svc.ListRequests()
	require.NoError(t, err)
	assert.Empty(t, views)
	assert.Contains(t, f.events.actions(), "deleted")
}

func TestListRequestsDistinguishesStates(t *testing.T) {
	f := newPulloutFixture(t)
	pending := f.create(t, PulloutLineInput{SupplyID: 1, Quantity: 3}, PulloutLineInput{SupplyID: 2, Quantity: 1})
	rejected := f.create(t, PulloutLineInput{SupplyID: 2, Quantity: 1})
	approved := f.create(t, PulloutLineInput{SupplyID: 2, Quantity: 1})

	_, err := f.svc.Reject(rejected.ID, manager)
	require.NoError(t, err)
	_, err = f.svc.Approve(approved.ID, "Maria Santos", manager)
	require.NoError(t, err)

	views, err := f.svc.ListRequests()
	require.NoError(t, err)
	require.Len(t, views, 3)

	byID := map[uint]model.PulloutRequestView{}
	for _, v := range views {
		byID[v.ID] = v
	}
	assert.Equal(t, model.PulloutPending, byID[pending.ID].Status)
	assert.Equal(t, model.PulloutRejected, byID[rejected.ID].Status)
	assert.Equal(t, model.PulloutApproved, byID[approved.ID].Status)

	v := byID[pending.ID]
	assert.Equal(t, "Pedro Reyes", v.EmployeeName)
	assert.Equal(t, "Wash & Wax", v.ServiceName)
	assert.Equal(t, "Bay 2", v.BayLabel)
	assert.Equal(t, "Pressure Washer (3 pc), Car Shampoo (1 pc)", v.SuppliesSummary)
	assert.Len(t, v.Details, 2)
}

func TestListReturnableAndActiveOrders(t *testing.T) {
	f := newPulloutFixture(t)
	emp := uint(7)
	testutil.CreateJobLine(t, f.db, testutil.JobLine{DetailID: 60, EmployeeID: &emp, OrderStatus: model.OrderPending})

	lines, err := f.svc.ListReturnable()
	require.NoError(t, err)
	assert.NotNil(t, lines)
	assert.Empty(t, lines)

	req := f.create(t, PulloutLineInput{SupplyID: 1, Quantity: 1}, PulloutLineInput{SupplyID: 2, Quantity: 1})
	_, err = f.svc.Approve(req.ID, "Maria Santos", manager)
	require.NoError(t, err)

	lines, err = f.svc.ListReturnable()
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, uint(1), lines[0].SupplyID)

	// Job-lines with an open pullout stay listed.
	orders, err := f.svc.ListActiveServiceOrders()
	require.NoError(t, err)
	require.Len(t, orders, 2)
	labels := map[uint]string{}
	for _, o := range orders {
		labels[o.ServiceOrderDetailID] = o.BayLabel
	}
	assert.Equal(t, "Bay 2", labels[42])
	assert.Equal(t, UnassignedBay, labels[60])
}

func TestReturnOutcomeMessage(t *testing.T) {
	assert.Equal(t, "Supply returned", (&ReturnOutcome{Returned: true}).Message())
	assert.Equal(t, "Consumable supplies cannot be returned", (&ReturnOutcome{Reason: ReturnReasonConsumable}).Message())
	assert.Equal(t, "Supply has already been returned", (&ReturnOutcome{Reason: ReturnReasonAlreadyReturned}).Message())
}
