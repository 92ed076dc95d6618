package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artin59/3311-Project-sub001/internal/model"
)

func TestPricingPolicyFactory(t *testing.T) {
	f := NewPricingPolicyFactory(nil, 25)

	testCases := []struct {
		name     string
		acct     *model.Account
		expected int64
		policy   string
	}{
		{"student", &model.Account{Category: "student"}, 20, "student"},
		{"faculty mixed case", &model.Account{Category: "Faculty"}, 30, "faculty"},
		{"staff", &model.Account{Category: model.CategoryStaff}, 40, "staff"},
		{"external partner", &model.Account{Category: "External Partner"}, 50, "partner"},
		{"external_partner", &model.Account{Category: "external_partner"}, 50, "partner"},
		{"unknown uses stored rate", &model.Account{Category: "alumni", HourlyRate: 35}, 35, "standard"},
		{"unknown without rate", &model.Account{Category: "alumni"}, 25, "standard"},
		{"no account", nil, 25, "standard"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := f.PolicyFor(tc.acct)
			assert.Equal(t, tc.expected, p.HourlyRate(tc.acct))
			assert.Equal(t, tc.policy, p.Name())
		})
	}
}

func TestPricingPolicyFactory_Overrides(t *testing.T) {
	f := NewPricingPolicyFactory(map[model.AccountCategory]int64{"Student": 15, "visitor": 60}, 0)

	testCases := []struct {
		name     string
		category model.AccountCategory
		expected int64
		policy   string
	}{
		{"overridden", "student", 15, "student"},
		{"added", "Visitor", 60, "visitor"},
		{"default faculty kept", "faculty", 30, "faculty"},
		{"default staff kept", "staff", 40, "staff"},
		{"default partner kept", "External Partner", 50, "partner"},
		{"unknown", "alumni", DefaultFallbackRate, "standard"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := f.PolicyFor(&model.Account{Category: tc.category})
			assert.Equal(t, tc.expected, p.HourlyRate(nil))
			assert.Equal(t, tc.policy, p.Name())
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	for _, raw := range []string{"partner", "External Partner", "external-partner", " EXTERNAL_PARTNER "} {
		assert.Equal(t, model.CategoryPartner, NormalizeCategory(raw), raw)
	}
}
