package worker

import (
	"context"

	"pressroom.app/pressroom/core/db"
	"pressroom.app/pressroom/internal/queue"
	"pressroom.app/pressroom/internal/store"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// TxRunner runs fn with an archive store bound to one transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(archive store.ArchiveStore) error) error
}

type dbTxRunner struct {
	db *db.DB
}

// NewTxRunner builds a TxRunner backed by the core DB.
func NewTxRunner(database *db.DB) TxRunner {
	return &dbTxRunner{db: database}
}

func (r *dbTxRunner) WithTx(ctx context.Context, fn func(archive store.ArchiveStore) error) error {
	return r.db.WithTx(ctx, func(q db.Querier) error {
		return fn(store.NewArchiveStore(q))
	})
}
