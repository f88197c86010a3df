// Package gormstore ledger.Store'un PostgreSQL (gorm) uygulamasıdır.
//
// Her alanın kendi tabloları vardır (ppe_stock, scaffolding_issues ...). Yazma
// transaction'ları READ COMMITTED seviyesinde satır kilitleriyle (SELECT ... FOR
// UPDATE) çalışır; kilit beklemesi lock_timeout ile sınırlıdır.
package gormstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/gorm"

	"ledger-backend/internal/ledger"
)

type Store struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func New(db *gorm.DB, lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &Store{db: db, lockTimeout: lockTimeout}
}

func (s *Store) InTx(ctx context.Context, d ledger.Domain, fn func(tx ledger.Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Exec(lockTimeoutStmt(s.lockTimeout)).Error; err != nil {
			return err
		}
		return fn(&gormTx{db: db, d: d, locking: true})
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	return translate(err)
}

// View tek bir anlık görüntü üzerinde okur, satır kilidi almaz.
func (s *Store) View(ctx context.Context, d ledger.Domain, fn func(tx ledger.Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&gormTx{db: db, d: d})
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	return translate(err)
}

// lockTimeoutStmt SET LOCAL parametre kabul etmez; değer tamsayı milisaniyedir.
// 0ms Postgres'te zaman aşımını kapattığı için en az 1ms yazılır.
func lockTimeoutStmt(d time.Duration) string {
	ms := (d + time.Millisecond - 1) / time.Millisecond
	return fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", int64(max(ms, 1)))
}
