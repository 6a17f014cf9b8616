package contracts

import (
	"errors"
	"fmt"
)

// ErrWriteSetMismatch is returned by hosts when a write set is internally inconsistent.
var ErrWriteSetMismatch = errors.New("write set does not match ledger state")

// Validate checks the write set against the audit counter read in the same transaction.
// Hosts call it before writing anything.
func (ws *WriteSet) Validate(auditCount uint64) error {
	if ws == nil || ws.Audit == nil {
		return fmt.Errorf("%w: every accepted operation must append an audit entry", ErrWriteSetMismatch)
	}
	if ws.Audit.TxID != auditCount {
		return fmt.Errorf("%w: audit tx %d, counter %d", ErrWriteSetMismatch, ws.Audit.TxID, auditCount)
	}
	if ws.History != nil {
		if ws.Product == nil || ws.History.ProductID != ws.Product.ID() {
			return fmt.Errorf("%w: history entry without its product", ErrWriteSetMismatch)
		}
		if ws.History.Sequence+1 != ws.Product.UpdateCount() {
			return fmt.Errorf("%w: history sequence %d, update count %d",
				ErrWriteSetMismatch, ws.History.Sequence, ws.Product.UpdateCount())
		}
	}
	return nil
}
