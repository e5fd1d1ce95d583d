package store

import (
	"context"
	"errors"

	"threadcraft-api/internal/domain/users"
	apperr "threadcraft-api/internal/errors"
	"threadcraft-api/internal/infra/metrics"

	"gorm.io/gorm"
)

// Balance returns the user's points. An unknown user has a balance of zero.
func (s *Store) Balance(ctx context.Context, externalID string) (int, error) {
	var u users.User
	err := s.conn(ctx).Select("points").Where("external_id = ?", externalID).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, apperr.Persistence("ledger.balance", err)
	}
	return u.Points, nil
}

// Credit adds delta points and returns the new balance.
func (s *Store) Credit(ctx context.Context, externalID string, delta int) (int, error) {
	if delta <= 0 {
		return 0, apperr.Validation("ledger.credit", "credit must be positive, got %d", delta)
	}
	var balance int
	err := s.Transaction(ctx, func(tx *Store) error {
		res := tx.db.Model(&users.User{}).
			Where("external_id = ?", externalID).
			Update("points", gorm.Expr("points + ?", delta))
		if res.Error != nil {
			return apperr.Persistence("ledger.credit", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("ledger.credit", "user %s", externalID)
		}
		var err error
		balance, err = tx.points(externalID)
		return err
	})
	if err != nil {
		return 0, wrap("ledger.credit", err)
	}
	metrics.PointsMovedTotal.WithLabelValues("credit").Add(float64(delta))
	return balance, nil
}

// Debit removes amount points only if the balance covers it. The check and the
// subtraction are one conditional UPDATE, so concurrent debits cannot overdraw.
func (s *Store) Debit(ctx context.Context, externalID string, amount int) (int, error) {
	if amount <= 0 {
		return 0, apperr.Validation("ledger.debit", "debit must be positive, got %d", amount)
	}
	var balance int
	err := s.Transaction(ctx, func(tx *Store) error {
		res := tx.db.Model(&users.User{}).
			Where("external_id = ? AND points >= ?", externalID, amount).
			Update("points", gorm.Expr("points - ?", amount))
		if res.Error != nil {
			return apperr.Persistence("ledger.debit", res.Error)
		}
		current, err := tx.points(externalID)
		if err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return apperr.InsufficientPoints("ledger.debit", current, amount)
		}
		balance = current
		return nil
	})
	if err != nil {
		return 0, wrap("ledger.debit", err)
	}
	metrics.PointsMovedTotal.WithLabelValues("debit").Add(float64(amount))
	return balance, nil
}

func (s *Store) points(externalID string) (int, error) {
	var u users.User
	err := s.db.Select("points").Where("external_id = ?", externalID).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperr.NotFound("ledger.read", "user %s", externalID)
	}
	if err != nil {
		return 0, apperr.Persistence("ledger.read", err)
	}
	return u.Points, nil
}
