package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDebt_Interest(t *testing.T) {
	d := Debt{Amount: decimal.NewFromInt(1000), InterestRate: decimal.RequireFromString("2.5")}
	assert.Equal(t, "25.00", d.Interest().StringFixed(2))

	d.InterestRate = decimal.Zero
	assert.True(t, d.Interest().IsZero())
}

func TestRole_GroupName(t *testing.T) {
	assert.Equal(t, "Store Manager", RoleStoreManager.GroupName())
	assert.True(t, RoleAccountant.Valid())
	assert.False(t, Role("USER").Valid())
	assert.Equal(t, "", Role("USER").GroupName())
}
