package payment

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/artin59/3311-Project-sub001/internal/model"
)

// ErrDeclined is returned when the ledger refuses a charge or refund.
var ErrDeclined = errors.New("payment declined")

// Ledger is a payment gateway that records every movement in the
// payments table. Charges above MaxAmount are declined, as are refunds
// larger than what is still held for the reference.
type Ledger struct {
	db        *gorm.DB
	maxAmount int64
}

// NewLedger creates a ledger; maxAmount <= 0 means no per-charge limit.
func NewLedger(db *gorm.DB, maxAmount int64) *Ledger {
	return &Ledger{db: db, maxAmount: maxAmount}
}

func (l *Ledger) Charge(ctx context.Context, reference string, amount int64) error {
	if amount <= 0 {
		return nil
	}
	if l.maxAmount > 0 && amount > l.maxAmount {
		return fmt.Errorf("%w: charge of %d for %s exceeds the limit of %d", ErrDeclined, amount, reference, l.maxAmount)
	}
	p := model.Payment{Reference: reference, Kind: model.PaymentCharge, Amount: amount}
	if err := l.db.WithContext(ctx).Create(&p).Error; err != nil {
		return fmt.Errorf("failed to record charge for %s: %w", reference, err)
	}
	return nil
}

func (l *Ledger) Refund(ctx context.Context, reference string, amount int64) error {
	if amount <= 0 {
		return nil
	}
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		held, err := balance(tx, reference)
		if err != nil {
			return err
		}
		if amount > held {
			return fmt.Errorf("%w: refund of %d for %s exceeds the %d held", ErrDeclined, amount, reference, held)
		}
		p := model.Payment{Reference: reference, Kind: model.PaymentRefund, Amount: amount}
		if err := tx.Create(&p).Error; err != nil {
			return fmt.Errorf("failed to record refund for %s: %w", reference, err)
		}
		return nil
	})
}

// Balance is the net amount held for a reference.
func (l *Ledger) Balance(ctx context.Context, reference string) (int64, error) {
	return balance(l.db.WithContext(ctx), reference)
}

// History lists the movements of a reference in the order they happened.
func (l *Ledger) History(ctx context.Context, reference string) ([]model.Payment, error) {
	var payments []model.Payment
	if err := l.db.WithContext(ctx).Where("reference = ?", reference).Order("id").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to load payments for %s: %w", reference, err)
	}
	return payments, nil
}

func balance(db *gorm.DB, reference string) (int64, error) {
	var held int64
	err := db.Model(&model.Payment{}).
		Select("COALESCE(SUM(CASE WHEN kind = ? THEN amount ELSE -amount END), 0)", model.PaymentCharge).
		Where("reference = ?", reference).
		Row().Scan(&held)
	if err != nil {
		return 0, fmt.Errorf("failed to compute balance for %s: %w", reference, err)
	}
	return held, nil
}
