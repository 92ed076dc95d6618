package model

import "time"

// PaymentKind distinguishes money collected from money returned.
type PaymentKind string

const (
	PaymentCharge PaymentKind = "charge"
	PaymentRefund PaymentKind = "refund"
)

// Payment is one ledger row written by the payment gateway.
type Payment struct {
	ID        int64       `gorm:"primaryKey;autoIncrement"`
	Reference string      `gorm:"index;size:64;not null"`
	Kind      PaymentKind `gorm:"size:8;not null"`
	Amount    int64       `gorm:"not null"`
	CreatedAt time.Time   `gorm:"not null"`
}
