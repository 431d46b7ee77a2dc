// models_test.go

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(f float64) *float64 { return &f }

func TestPricingOnDeal(t *testing.T) {
	tests := []struct {
		name    string
		pricing Pricing
		want    bool
	}{
		{"discount below regular", Pricing{Regular: 100, Discount: floatPtr(80)}, true},
		{"discount equals regular", Pricing{Regular: 100, Discount: floatPtr(100)}, false},
		{"discount above regular", Pricing{Regular: 100, Discount: floatPtr(120)}, false},
		{"no discount", Pricing{Regular: 100}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pricing.OnDeal())
		})
	}
}

func TestPricingEffective(t *testing.T) {
	assert.Equal(t, 80.0, Pricing{Regular: 100, Discount: floatPtr(80)}.Effective())
	assert.Equal(t, 100.0, Pricing{Regular: 100}.Effective())
	// a "discount" at or above the regular price is not honored
	assert.Equal(t, 100.0, Pricing{Regular: 100, Discount: floatPtr(100)}.Effective())
}

func TestValidRole(t *testing.T) {
	assert.True(t, validRole("user"))
	assert.True(t, validRole("admin"))
	assert.False(t, validRole("superuser"))
	assert.False(t, validRole(""))
}

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []string{"pending", "processing", "shipped", "delivered", "cancelled"} {
		assert.True(t, validOrderStatus(s), s)
	}
	assert.False(t, validOrderStatus("returned"))
	assert.False(t, validOrderStatus(""))
}
