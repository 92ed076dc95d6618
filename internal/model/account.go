package model

// AccountCategory selects the pricing policy applied to an account.
type AccountCategory string

const (
	CategoryStudent AccountCategory = "student"
	CategoryFaculty AccountCategory = "faculty"
	CategoryStaff   AccountCategory = "staff"
	CategoryPartner AccountCategory = "partner"
)

// Account is the slice of a user record the booking engine reads for pricing.
type Account struct {
	ID         string          `gorm:"primaryKey;size:64" json:"id"`
	Name       string          `gorm:"size:128" json:"name"`
	Category   AccountCategory `gorm:"size:32" json:"category"`
	HourlyRate int64           `json:"hourlyRate"`
}
