package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MovementType enumerates the supported stock movement reasons.
type MovementType string

const (
	// MovementAdjustment is a manual operator correction.
	MovementAdjustment MovementType = "adjustment"
	// MovementBulkUpdate marks entries written by a bulk update batch.
	MovementBulkUpdate MovementType = "bulk_update"
	// MovementSale records stock leaving through a sale.
	MovementSale MovementType = "sale"
	// MovementPurchase records stock arriving from a purchase.
	MovementPurchase MovementType = "purchase"
	// MovementReturn records stock coming back from a customer.
	MovementReturn MovementType = "return"
)

// maxNotesLen bounds the free-text notes column.
const maxNotesLen = 500

// Movement is one immutable entry of the stock ledger. For every completed
// quantity change exactly one Movement exists, and
// PreviousQuantity + QuantityChange == NewQuantity always holds.
type Movement struct {
	ID               uuid.UUID    `json:"id"`
	ProductID        uuid.UUID    `json:"product_id"`
	QuantityChange   int          `json:"quantity_change"`
	PreviousQuantity int          `json:"previous_quantity"`
	NewQuantity      int          `json:"new_quantity"`
	Type             MovementType `json:"movement_type"`
	Notes            string       `json:"notes,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	CreatedBy        string       `json:"created_by,omitempty"`

	// Joined from products; empty once the product has been deleted.
	ProductName string `json:"product_name,omitempty"`
	ProductSKU  string `json:"product_sku,omitempty"`
}

// AdjustInput describes a single-product stock adjustment. CurrentQuantity
// is the caller's snapshot of the product quantity when the operation was
// initiated; the store write is conditioned on it still being accurate.
type AdjustInput struct {
	ProductID       uuid.UUID
	QuantityChange  int
	CurrentQuantity int
	Type            MovementType
	Notes           string
	Actor           string
	// Ref is an optional client-supplied key deduplicating retries.
	Ref string
}

// BulkEntry is one independent unit of a bulk update. Target quantities are
// expected to be non-negative; the HTTP layer clamps operator input to zero
// before submission, mirroring the single-adjustment path which instead
// rejects negative results outright.
type BulkEntry struct {
	ProductID       uuid.UUID
	CurrentQuantity int
	NewQuantity     int
}

// BulkResult reports the outcome of a bulk update.
type BulkResult struct {
	Changed   int        `json:"changed"`
	Skipped   int        `json:"skipped"`
	Movements []Movement `json:"movements"`
}

// MovementFilter narrows ledger history queries.
type MovementFilter struct {
	ProductID *uuid.UUID
	Limit     int
}

var (
	// ErrInvalidQuantity is returned when an adjustment would drive stock
	// below zero. The stores are never touched in that case.
	ErrInvalidQuantity = errors.New("ledger: resulting quantity below zero")
	// ErrStaleStock signals that the supplied current quantity no longer
	// matches the stored one; the caller must re-fetch and retry.
	ErrStaleStock = errors.New("ledger: stock quantity changed concurrently")
	// ErrProductNotFound indicates the referenced product does not exist.
	ErrProductNotFound = errors.New("ledger: product not found")
	// ErrMovementType rejects movement types outside the adjustment set.
	ErrMovementType = errors.New("ledger: unsupported movement type")
	// ErrEmptyBatch rejects bulk updates without entries.
	ErrEmptyBatch = errors.New("ledger: bulk update requires at least one entry")
	// ErrNotesTooLong bounds the notes field.
	ErrNotesTooLong = errors.New("ledger: notes exceed maximum length")
)

// BulkError reports a bulk update aborted partway. Committed entries stay
// applied; callers must re-fetch product state to reconcile rather than
// assume all-or-nothing semantics.
type BulkError struct {
	Committed int
	Index     int
	Err       error
}

func (e *BulkError) Error() string {
	return fmt.Sprintf("ledger: bulk update failed at entry %d after %d committed: %v", e.Index, e.Committed, e.Err)
}

func (e *BulkError) Unwrap() error { return e.Err }

// adjustTypes lists the reasons an operator may pick for a single
// adjustment. bulk_update is reserved for the bulk path.
func validAdjustType(t MovementType) bool {
	switch t {
	case MovementAdjustment, MovementSale, MovementPurchase, MovementReturn:
		return true
	}
	return false
}
