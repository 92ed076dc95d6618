package booking

import (
	"strings"

	"github.com/artin59/3311-Project-sub001/internal/model"
)

// DefaultRates is the built-in hourly rate per account category.
var DefaultRates = map[model.AccountCategory]int64{
	model.CategoryStudent: 20,
	model.CategoryFaculty: 30,
	model.CategoryStaff:   40,
	model.CategoryPartner: 50,
}

// DefaultFallbackRate applies when neither a category nor the account
// itself supplies a rate.
const DefaultFallbackRate int64 = 20

// PricingPolicy yields the hourly rate charged to an account.
type PricingPolicy interface {
	Name() string
	HourlyRate(acct *model.Account) int64
}

// FixedRatePolicy charges the same rate regardless of the account.
type FixedRatePolicy struct {
	Category model.AccountCategory
	Rate     int64
}

func (p FixedRatePolicy) Name() string { return string(p.Category) }

func (p FixedRatePolicy) HourlyRate(*model.Account) int64 { return p.Rate }

// StandardPolicy reads the rate stored on the account.
type StandardPolicy struct {
	FallbackRate int64
}

func (p StandardPolicy) Name() string { return "standard" }

func (p StandardPolicy) HourlyRate(acct *model.Account) int64 {
	if acct != nil && acct.HourlyRate > 0 {
		return acct.HourlyRate
	}
	return p.FallbackRate
}

// PricingPolicyFactory picks the policy for an account by category.
type PricingPolicyFactory struct {
	byCategory map[model.AccountCategory]PricingPolicy
	standard   StandardPolicy
}

// NewPricingPolicyFactory builds a factory from DefaultRates overlaid
// with rates. A non-positive fallback means DefaultFallbackRate.
func NewPricingPolicyFactory(rates map[model.AccountCategory]int64, fallback int64) *PricingPolicyFactory {
	merged := make(map[model.AccountCategory]int64, len(DefaultRates)+len(rates))
	for cat, rate := range DefaultRates {
		merged[NormalizeCategory(string(cat))] = rate
	}
	for cat, rate := range rates {
		merged[NormalizeCategory(string(cat))] = rate
	}
	rates = merged
	if fallback <= 0 {
		fallback = DefaultFallbackRate
	}
	f := &PricingPolicyFactory{
		byCategory: make(map[model.AccountCategory]PricingPolicy, len(rates)),
		standard:   StandardPolicy{FallbackRate: fallback},
	}
	for cat, rate := range rates {
		key := NormalizeCategory(string(cat))
		f.byCategory[key] = FixedRatePolicy{Category: key, Rate: rate}
	}
	return f
}

// PolicyFor returns the policy for acct. Unknown categories and a nil
// account get the standard policy.
func (f *PricingPolicyFactory) PolicyFor(acct *model.Account) PricingPolicy {
	if acct == nil {
		return f.standard
	}
	if p, ok := f.byCategory[NormalizeCategory(string(acct.Category))]; ok {
		return p
	}
	return f.standard
}

// NormalizeCategory folds case, separators and the "external" prefix so
// that "External Partner" and "external_partner" both mean partner.
func NormalizeCategory(raw string) model.AccountCategory {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimPrefix(s, "external ")
	return model.AccountCategory(s)
}
