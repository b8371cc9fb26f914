package shared

import "context"

// TxManager runs a function inside one storage transaction. Repository
// calls made with the context it passes to fn join that transaction,
// so multi-step effects (token consumption + status change, ledger
// insert + stock decrement) commit or roll back as one unit.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
