package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go-carwash-pullout/internal/metrics"
	"go-carwash-pullout/internal/model"
	"go-carwash-pullout/internal/repository"
	"go-carwash-pullout/pkg/validator"

	"gorm.io/gorm"
)

var (
	ErrPulloutNotFound       = errors.New("pullout request not found")
	ErrPulloutDetailNotFound = errors.New("pullout request detail not found")
	ErrRequestAlreadyDecided = errors.New("pullout request has already been approved or rejected")
	ErrApproverRequired      = errors.New("approved_by is required")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrSupplyUnavailable     = errors.New("supply no longer exists")
)

// UnassignedBay is stored on the service link when the job has no bay.
const UnassignedBay = "Unassigned"

const pulloutEvent = "pullout_update"

// Reasons a return is refused.
const (
	ReturnReasonConsumable        = "consumable"
	ReturnReasonNotApproved       = "request_not_approved"
	ReturnReasonAlreadyReturned   = "already_returned"
	ReturnReasonSupplyUnavailable = "supply_unavailable"
)

type PulloutLineInput struct {
	SupplyID uint `json:"supply_id" validate:"required"`
	Quantity int  `json:"quantity" validate:"gt=0"`
}

type CreatePulloutInput struct {
	EmployeeID           uint               `json:"employee_id" validate:"required"`
	ServiceOrderDetailID uint               `json:"service_order_detail_id" validate:"required"`
	Supplies             []PulloutLineInput `json:"supplies" validate:"required,min=1,dive"`
}

// ReturnOutcome is the result of a return attempt. A refused return is not
// an error: Returned is false and Reason says why.
type ReturnOutcome struct {
	Returned bool                        `json:"returned"`
	Reason   string                      `json:"reason,omitempty"`
	Detail   *model.PulloutRequestDetail `json:"detail,omitempty"`
}

func (o *ReturnOutcome) Message() string {
	switch o.Reason {
	case "":
		return "Supply returned"
	case ReturnReasonConsumable:
		return "Consumable supplies cannot be returned"
	case ReturnReasonNotApproved:
		return "Only lines of an approved request can be returned"
	case ReturnReasonAlreadyReturned:
		return "Supply has already been returned"
	case ReturnReasonSupplyUnavailable:
		return "Supply no longer exists"
	default:
		return "Supply cannot be returned"
	}
}

type PulloutService interface {
	CreateRequest(input *CreatePulloutInput, actor Actor) (*model.PulloutRequest, error)
	Approve(id uint, approvedBy string, actor Actor) (*model.PulloutRequest, error)
	Reject(id uint, actor Actor) (*model.PulloutRequest, error)
	ReturnLine(detailID uint, returnedBy string, actor Actor) (*ReturnOutcome, error)
	Delete(id uint, actor Actor) error

	GetRequest(id uint) (*model.PulloutRequest, error)
	ListRequests() ([]model.PulloutRequestView, error)
	ListReturnable() ([]model.ReturnableLine, error)
	ListActiveServiceOrders() ([]model.ActiveServiceOrder, error)
}

type pulloutService struct {
	db           *gorm.DB
	pulloutRepo  repository.PulloutRepository
	supplyRepo   repository.SupplyRepository
	employeeRepo repository.EmployeeRepository
	orderRepo    repository.ServiceOrderRepository
	notifier     Notifier
	metrics      *metrics.Collector
	now          func() time.Time
}

func NewPulloutService(
	db *gorm.DB,
	pRepo repository.PulloutRepository,
	sRepo repository.SupplyRepository,
	eRepo repository.EmployeeRepository,
	oRepo repository.ServiceOrderRepository,
	notifier Notifier,
	m *metrics.Collector,
) PulloutService {
	return &pulloutService{
		db:           db,
		pulloutRepo:  pRepo,
		supplyRepo:   sRepo,
		employeeRepo: eRepo,
		orderRepo:    oRepo,
		notifier:     notifier,
		metrics:      m,
		now:          time.Now,
	}
}

func (s *pulloutService) CreateRequest(input *CreatePulloutInput, actor Actor) (*model.PulloutRequest, error) {
	if err := newValidationError(validator.ValidateStruct(input)); err != nil {
		return nil, err
	}
	if err := s.checkReferences(input); err != nil {
		return nil, err
	}

	by := actor.Label()
	var requestID uint

	err := s.db.Transaction(func(tx *gorm.DB) error {
		bayLabel, err := s.orderRepo.BayLabelForDetail(tx, input.ServiceOrderDetailID)
		if err != nil {
			return fmt.Errorf("look up bay: %w", err)
		}
		if bayLabel == "" {
			bayLabel = UnassignedBay
		}

		link := &model.PulloutService{ServiceOrderDetailID: input.ServiceOrderDetailID, BayLabel: bayLabel}
		link.CreatedBy, link.UpdatedBy = by, by
		if err := s.pulloutRepo.CreateService(tx, link); err != nil {
			return fmt.Errorf("create service link: %w", err)
		}

		req := &model.PulloutRequest{
			EmployeeID:           input.EmployeeID,
			ServiceOrderDetailID: input.ServiceOrderDetailID,
			PulloutServiceID:     link.ID,
			Status:               model.PulloutPending,
		}
		req.CreatedBy, req.UpdatedBy = by, by
		if err := s.pulloutRepo.CreateRequest(tx, req); err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		for _, line := range input.Supplies {
			detail := &model.PulloutRequestDetail{
				PulloutRequestID: req.ID,
				PulloutServiceID: link.ID,
				SupplyID:         line.SupplyID,
				Quantity:         line.Quantity,
			}
			detail.CreatedBy, detail.UpdatedBy = by, by
			if err := s.pulloutRepo.CreateDetail(tx, detail); err != nil {
				return fmt.Errorf("create line for supply %d: %w", line.SupplyID, err)
			}
		}

		requestID = req.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.pulloutRepo.FindByID(requestID)
	if err != nil {
		return nil, err
	}

	s.metrics.PulloutTransition("created")
	s.publish("created", created.ID, actor, map[string]interface{}{
		"pullout_request": toView(*created),
	})
	return created, nil
}

// checkReferences turns unknown ids into field errors so the caller gets a
// 422 instead of a foreign key failure halfway through the transaction.
func (s *pulloutService) checkReferences(input *CreatePulloutInput) error {
	var fields []*validator.ErrorResponse
	missing := func(field string) {
		fields = append(fields, &validator.ErrorResponse{FailedField: field, Tag: "exists"})
	}

	if _, err := s.employeeRepo.FindByID(input.EmployeeID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		missing("employee_id")
	}

	if _, err := s.orderRepo.FindDetailByID(input.ServiceOrderDetailID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		missing("service_order_detail_id")
	}

	ids := make([]uint, 0, len(input.Supplies))
	for _, line := range input.Supplies {
		ids = append(ids, line.SupplyID)
	}
	found, err := s.supplyRepo.FindByIDs(ids)
	if err != nil {
		return err
	}
	for i, line := range input.Supplies {
		if _, ok := found[line.SupplyID]; !ok {
			missing(fmt.Sprintf("supplies[%d].supply_id", i))
		}
	}

	return newValidationError(fields)
}

func (s *pulloutService) Approve(id uint, approvedBy string, actor Actor) (*model.PulloutRequest, error) {
	approvedBy = strings.TrimSpace(approvedBy)
	if approvedBy == "" {
		return nil, ErrApproverRequired
	}

	var movements []*model.StockMovement

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.decide(tx, id, model.PulloutApproved, approvedBy); err != nil {
			return err
		}

		details, err := s.pulloutRepo.FindDetails(tx, id)
		if err != nil {
			return err
		}

		for _, d := range details {
			mv, err := s.supplyRepo.Deduct(tx, d.SupplyID, d.QuantityDecimal(), repository.MovementRef{
				Reason:      model.MovementPulloutApproval,
				ReferenceID: &id,
				PerformedBy: approvedBy,
			})
			switch {
			case errors.Is(err, repository.ErrInsufficientStock):
				return fmt.Errorf("%w for %s (requested %d)", ErrInsufficientStock, supplyName(d), d.Quantity)
			case errors.Is(err, gorm.ErrRecordNotFound):
				return fmt.Errorf("%w: supply %d", ErrSupplyUnavailable, d.SupplyID)
			case err != nil:
				return err
			}
			movements = append(movements, mv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, mv := range movements {
		s.metrics.StockMoved(string(mv.Reason), mv.Delta)
	}
	return s.afterDecision(id, "approved", actor)
}

// Reject closes a pending request without touching stock. Any approver in
// the request body is ignored; the signed-in user is recorded instead.
func (s *pulloutService) Reject(id uint, actor Actor) (*model.PulloutRequest, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.decide(tx, id, model.PulloutRejected, actor.Label())
	})
	if err != nil {
		return nil, err
	}
	return s.afterDecision(id, "rejected", actor)
}

func (s *pulloutService) decide(tx *gorm.DB, id uint, status model.PulloutStatus, by string) error {
	ok, err := s.pulloutRepo.Decide(tx, id, status, by, s.now())
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	exists, err := s.pulloutRepo.Exists(tx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrPulloutNotFound
	}
	return ErrRequestAlreadyDecided
}

func (s *pulloutService) afterDecision(id uint, action string, actor Actor) (*model.PulloutRequest, error) {
	req, err := s.pulloutRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	s.metrics.PulloutTransition(action)
	s.publish(action, id, actor, map[string]interface{}{
		"pullout_request": toView(*req),
	})
	return req, nil
}

func (s *pulloutService) ReturnLine(detailID uint, returnedBy string, actor Actor) (*ReturnOutcome, error) {
	returnedBy = strings.TrimSpace(returnedBy)
	if returnedBy == "" {
		returnedBy = actor.Label()
	}

	outcome := &ReturnOutcome{}
	var movement *model.StockMovement

	err := s.db.Transaction(func(tx *gorm.DB) error {
		detail, err := s.pulloutRepo.FindDetailForReturn(tx, detailID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPulloutDetailNotFound
		}
		if err != nil {
			return err
		}
		outcome.Detail = detail

		switch {
		case detail.Supply == nil:
			outcome.Reason = ReturnReasonSupplyUnavailable
			return nil
		case !detail.Supply.IsReturnable():
			outcome.Reason = ReturnReasonConsumable
			return nil
		case detail.PulloutRequest == nil || detail.PulloutRequest.Status != model.PulloutApproved:
			outcome.Reason = ReturnReasonNotApproved
			return nil
		case detail.IsReturned:
			outcome.Reason = ReturnReasonAlreadyReturned
			return nil
		}

		at := s.now()
		ok, err := s.pulloutRepo.MarkReturned(tx, detailID, returnedBy, at)
		if err != nil {
			return err
		}
		if !ok {
			// Lost a race with another return of the same line.
			outcome.Reason = ReturnReasonAlreadyReturned
			return nil
		}

		movement, err = s.supplyRepo.Restore(tx, detail.SupplyID, detail.QuantityDecimal(), repository.MovementRef{
			Reason:      model.MovementPulloutReturn,
			ReferenceID: &detail.PulloutRequestID,
			PerformedBy: returnedBy,
		})
		if err != nil {
			return err
		}

		detail.Supply.Stock = movement.BalanceAfter
		detail.IsReturned = true
		detail.ReturnedBy = returnedBy
		detail.ReturnedAt = &at
		outcome.Returned = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !outcome.Returned {
		s.metrics.ReturnRefused(outcome.Reason)
		return outcome, nil
	}

	s.metrics.StockMoved(string(movement.Reason), movement.Delta)
	s.metrics.PulloutTransition("returned")
	s.publish("returned", outcome.Detail.PulloutRequestID, actor, map[string]interface{}{
		"detail": outcome.Detail,
	})
	return outcome, nil
}

// Delete is the administrative escape hatch: it soft-deletes the request with
// its lines and service link and leaves stock as it is.
func (s *pulloutService) Delete(id uint, actor Actor) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.pulloutRepo.SoftDelete(tx, id, actor.Label())
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPulloutNotFound
	}
	if err != nil {
		return err
	}

	s.metrics.PulloutTransition("deleted")
	s.publish("deleted", id, actor, nil)
	return nil
}

func (s *pulloutService) GetRequest(id uint) (*model.PulloutRequest, error) {
	req, err := s.pulloutRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPulloutNotFound
	}
	return req, err
}

func (s *pulloutService) ListRequests() ([]model.PulloutRequestView, error) {
	reqs, err := s.pulloutRepo.FindAll()
	if err != nil {
		return nil, err
	}
	views := make([]model.PulloutRequestView, 0, len(reqs))
	for _, r := range reqs {
		views = append(views, toView(r))
	}
	return views, nil
}

func (s *pulloutService) ListReturnable() ([]model.ReturnableLine, error) {
	lines, err := s.pulloutRepo.FindReturnable()
	if lines == nil && err == nil {
		lines = []model.ReturnableLine{}
	}
	return lines, err
}

func (s *pulloutService) ListActiveServiceOrders() ([]model.ActiveServiceOrder, error) {
	orders, err := s.orderRepo.FindActiveForPullout()
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].BayLabel == "" {
			orders[i].BayLabel = UnassignedBay
		}
	}
	if orders == nil {
		orders = []model.ActiveServiceOrder{}
	}
	return orders, nil
}

func (s *pulloutService) publish(action string, requestID uint, actor Actor, extra map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	payload := map[string]interface{}{
		"action":             action,
		"pullout_request_id": requestID,
		"user":               actor.payload(),
		"message":            fmt.Sprintf("%s %s pullout request #%d", actor.Label(), action, requestID),
	}
	for k, v := range extra {
		payload[k] = v
	}
	s.notifier.Publish(pulloutEvent, payload)
}

func toView(r model.PulloutRequest) model.PulloutRequestView {
	v := model.PulloutRequestView{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		Status:          r.Status,
		DecidedBy:       r.DecidedBy,
		DecidedAt:       r.DecidedAt,
		CreatedAt:       r.CreatedAt,
		SuppliesSummary: summarize(r.Details),
		Details:         r.Details,
	}
	if v.Details == nil {
		v.Details = []model.PulloutRequestDetail{}
	}
	if r.Employee != nil {
		v.EmployeeName = r.Employee.FullName
	}
	if ps := r.PulloutService; ps != nil {
		v.BayLabel = ps.BayLabel
		if ps.ServiceOrderDetail != nil && ps.ServiceOrderDetail.Service != nil {
			v.ServiceName = ps.ServiceOrderDetail.Service.Name
		}
	}
	return v
}

// summarize renders lines as "Shampoo (3 bottle), Pressure Washer (1 unit)".
func summarize(details []model.PulloutRequestDetail) string {
	parts := make([]string, 0, len(details))
	for _, d := range details {
		qty := fmt.Sprintf("%d", d.Quantity)
		if d.Supply != nil && d.Supply.Unit != "" {
			qty += " " + d.Supply.Unit
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", supplyName(d), qty))
	}
	return strings.Join(parts, ", ")
}

func supplyName(d model.PulloutRequestDetail) string {
	if d.Supply != nil {
		return d.Supply.Name
	}
	return fmt.Sprintf("supply #%d", d.SupplyID)
}
