package domain

import "context"

// TxRunner runs a function inside a single storage transaction. The opaque
// tx value is passed to the repositories' ...Tx methods; if fn returns an
// error the transaction is rolled back and nothing is applied.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx any) error) error
}
