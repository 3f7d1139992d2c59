package repository

import (
	"context"
	"database/sql"
	"strings"

	"gorm.io/gorm"
)

type contextKey string

const txKey contextKey = "gorm_tx"

// serializableRetries bounds optimistic retries on serialization conflicts.
const serializableRetries = 3

// TransactionManager manages database transactions via context injection.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
	// RunInSerializableTx runs fn at SERIALIZABLE isolation, retrying a
	// bounded number of times on serialization conflicts. Check-then-insert
	// sequences (the booking daily cap) must run through this so two
	// concurrent requests cannot both pass the count check.
	RunInSerializableTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type transactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &transactionManager{db: db}
}

func (t *transactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, txKey, tx)
		return fn(txCtx)
	})
}

func (t *transactionManager) RunInSerializableTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	var err error
	for attempt := 0; attempt <= serializableRetries; attempt++ {
		err = t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			txCtx := context.WithValue(ctx, txKey, tx)
			return fn(txCtx)
		}, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err == nil || !isSerializationFailure(err) {
			return err
		}
	}
	return err
}

// isSerializationFailure matches postgres serialization (40001) and deadlock
// (40P01) failures, which are safe to retry.
func isSerializationFailure(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if strings.Contains(msg, "40001") || strings.Contains(msg, "40P01") {
		return true
	}
	return strings.Contains(msg, "could not serialize access") || strings.Contains(msg, "deadlock detected")
}

// GetDB extracts the transaction DB from context if present, otherwise returns root DB.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}
