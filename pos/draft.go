// Package pos holds the order-entry draft used by point-of-sale consoles.
// A Draft accumulates lines and charge inputs locally and submits the whole
// cart in one call; nothing touches the network until Submit.
package pos

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"restopos/domain"
)

var (
	ErrEmptyDraft      = errors.New("pos: draft has no lines")
	ErrSubmitInFlight  = errors.New("pos: submit already in flight")
	ErrLineNotFound    = errors.New("pos: line not found")
	ErrBadQuantity     = errors.New("pos: quantity must be at least 1")
	ErrNoBranch        = errors.New("pos: branch not selected")
	ErrNoOrderType     = errors.New("pos: order type not selected")
	ErrItemUnavailable = errors.New("pos: item not available")
)

// OrderPoster is the transport a Draft submits through.
type OrderPoster interface {
	PostOrder(ctx context.Context, submission domain.OrderSubmission, idempotencyKey string) (domain.Order, error)
}

// Line is one cart entry. UnitPrice is the item's price snapshotted at add
// time; later catalog edits do not move it.
type Line struct {
	ItemID    int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int64
	Notes     string
}

// Draft is a mutable in-progress order. Safe for concurrent use.
type Draft struct {
	mu sync.Mutex

	branchID    int64
	orderTypeID int64

	paymentModeID *int64
	staffID       *int64
	customerID    *int64
	tableID       *int64
	kitchenID     *int64

	lines []Line

	taxAmount          *decimal.Decimal
	taxPercentage      *decimal.Decimal
	discountAmount     *decimal.Decimal
	discountPercentage *decimal.Decimal

	notes string

	submitting     bool
	idempotencyKey string
}

func NewDraft(branchID, orderTypeID int64) *Draft {
	return &Draft{
		branchID:       branchID,
		orderTypeID:    orderTypeID,
		idempotencyKey: uuid.NewString(),
	}
}

// AddOrToggle adds the item as a new line with quantity 1, or removes the
// line if the item is already in the cart. Calling it twice with the same
// item leaves the draft where it started. Returns true when a line was
// added, false when one was removed.
func (d *Draft) AddOrToggle(item domain.Item) (bool, error) {
	if !item.IsActive || !item.IsAvailable {
		return false, ErrItemUnavailable
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, line := range d.lines {
		if line.ItemID == item.ID {
			d.lines = append(d.lines[:i], d.lines[i+1:]...)
			return false, nil
		}
	}
	d.lines = append(d.lines, Line{
		ItemID:    item.ID,
		Name:      item.Name,
		UnitPrice: item.Price,
		Quantity:  1,
	})
	return true, nil
}

// SetQuantity replaces the line's quantity outright. Repeating a call is a
// no-op; quantities below 1 are rejected (remove the line instead).
func (d *Draft) SetQuantity(itemID, quantity int64) error {
	if quantity < 1 {
		return ErrBadQuantity
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.lines {
		if d.lines[i].ItemID == itemID {
			d.lines[i].Quantity = quantity
			return nil
		}
	}
	return ErrLineNotFound
}

func (d *Draft) SetLineNotes(itemID int64, notes string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.lines {
		if d.lines[i].ItemID == itemID {
			d.lines[i].Notes = notes
			return nil
		}
	}
	return ErrLineNotFound
}

func (d *Draft) RemoveLine(itemID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, line := range d.lines {
		if line.ItemID == itemID {
			d.lines = append(d.lines[:i], d.lines[i+1:]...)
			return nil
		}
	}
	return ErrLineNotFound
}

// SetBranch switches the selling branch. Tables and kitchens belong to a
// branch, so those selections are dropped whenever the branch changes.
func (d *Draft) SetBranch(branchID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.branchID == branchID {
		return
	}
	d.branchID = branchID
	d.tableID = nil
	d.kitchenID = nil
}

func (d *Draft) SetOrderType(orderTypeID int64) {
	d.mu.Lock()
	d.orderTypeID = orderTypeID
	d.mu.Unlock()
}

func (d *Draft) SetPaymentMode(id *int64) {
	d.mu.Lock()
	d.paymentModeID = id
	d.mu.Unlock()
}

func (d *Draft) SetStaff(id *int64) {
	d.mu.Lock()
	d.staffID = id
	d.mu.Unlock()
}

func (d *Draft) SetCustomer(id *int64) {
	d.mu.Lock()
	d.customerID = id
	d.mu.Unlock()
}

func (d *Draft) SetTable(id *int64) {
	d.mu.Lock()
	d.tableID = id
	d.mu.Unlock()
}

func (d *Draft) SetKitchen(id *int64) {
	d.mu.Lock()
	d.kitchenID = id
	d.mu.Unlock()
}

func (d *Draft) SetNotes(notes string) {
	d.mu.Lock()
	d.notes = notes
	d.mu.Unlock()
}

// SetCharges stores the raw tax and discount inputs. Amount and percentage
// may both be present; resolution happens in Totals.
func (d *Draft) SetCharges(taxAmount, taxPercentage, discountAmount, discountPercentage *decimal.Decimal) {
	d.mu.Lock()
	d.taxAmount = taxAmount
	d.taxPercentage = taxPercentage
	d.discountAmount = discountAmount
	d.discountPercentage = discountPercentage
	d.mu.Unlock()
}

func (d *Draft) Lines() []Line {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Line, len(d.lines))
	copy(out, d.lines)
	return out
}

func (d *Draft) Empty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.lines) == 0
}

// Totals resolves the draft's money figures from its current lines and
// charge inputs.
func (d *Draft) Totals() domain.Totals {
	d.mu.Lock()
	defer d.mu.Unlock()
	return domain.ComputeTotals(d.submissionLines(), d.taxAmount, d.taxPercentage, d.discountAmount, d.discountPercentage)
}

// Clear empties the cart and charge inputs but keeps the branch, order type
// and staff selections for the next order.
func (d *Draft) Clear() {
	d.mu.Lock()
	d.reset()
	d.mu.Unlock()
}

// Submit posts the draft. An empty draft and a submit already in flight
// both return before any network call. On success the cart is reset and a
// fresh idempotency key is issued; on failure the draft is left intact and
// the key is kept, so a retry replays the same order instead of creating a
// duplicate.
func (d *Draft) Submit(ctx context.Context, poster OrderPoster) (domain.Order, error) {
	d.mu.Lock()
	if d.submitting {
		d.mu.Unlock()
		return domain.Order{}, ErrSubmitInFlight
	}
	if len(d.lines) == 0 {
		d.mu.Unlock()
		return domain.Order{}, ErrEmptyDraft
	}
	if d.branchID <= 0 {
		d.mu.Unlock()
		return domain.Order{}, ErrNoBranch
	}
	if d.orderTypeID <= 0 {
		d.mu.Unlock()
		return domain.Order{}, ErrNoOrderType
	}

	submission := domain.OrderSubmission{
		BranchID:           d.branchID,
		OrderTypeID:        d.orderTypeID,
		PaymentModeID:      d.paymentModeID,
		StaffID:            d.staffID,
		CustomerID:         d.customerID,
		TableID:            d.tableID,
		KitchenID:          d.kitchenID,
		Items:              d.submissionLines(),
		TaxAmount:          d.taxAmount,
		TaxPercentage:      d.taxPercentage,
		DiscountAmount:     d.discountAmount,
		DiscountPercentage: d.discountPercentage,
		Notes:              d.notes,
	}
	key := d.idempotencyKey
	d.submitting = true
	d.mu.Unlock()

	order, err := poster.PostOrder(ctx, submission, key)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.submitting = false
	if err != nil {
		return domain.Order{}, err
	}
	d.reset()
	d.idempotencyKey = uuid.NewString()
	return order, nil
}

// reset must be called with the lock held.
func (d *Draft) reset() {
	d.lines = nil
	d.taxAmount = nil
	d.taxPercentage = nil
	d.discountAmount = nil
	d.discountPercentage = nil
	d.notes = ""
	d.customerID = nil
	d.tableID = nil
	d.paymentModeID = nil
}

// submissionLines must be called with the lock held.
func (d *Draft) submissionLines() []domain.LineSubmission {
	lines := make([]domain.LineSubmission, 0, len(d.lines))
	for _, line := range d.lines {
		lines = append(lines, domain.LineSubmission{
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Notes:     line.Notes,
		})
	}
	return lines
}
