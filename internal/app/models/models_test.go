package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := map[string]string{
		"1234.5":     "$1,234.50",
		"0":          "$0.00",
		"-42.129":    "-$42.13",
		"1000000.01": "$1,000,000.01",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatAmount(decimal.RequireFromString(in)), in)
	}
}

func TestValidRoutingNumber(t *testing.T) {
	assert.True(t, ValidRoutingNumber("091000019"))
	assert.True(t, ValidRoutingNumber("021000021"))
	assert.False(t, ValidRoutingNumber("091000018"))
	assert.False(t, ValidRoutingNumber("09100001"))
	assert.False(t, ValidRoutingNumber("09100001x"))
}

func TestTransactionFilters(t *testing.T) {
	f := TransactionFilters{Status: StatusPending, Page: 2, Limit: 10}
	assert.Equal(t, "limit=10&page=2&status=pending", f.Values().Encode())
	assert.Empty(t, TransactionFilters{}.Values().Encode())

	assert.True(t, f.Matches(Transaction{Status: StatusPending, OrganizationID: "org-1"}))
	assert.False(t, f.Matches(Transaction{Status: StatusProcessed}))
	assert.False(t, TransactionFilters{OrganizationID: "org-2"}.Matches(Transaction{OrganizationID: "org-1"}))
}

func TestUserHasRole(t *testing.T) {
	var nobody *User
	assert.False(t, nobody.HasRole(RoleAdmin))
	u := &User{Role: RoleOperator}
	assert.True(t, u.HasRole(RoleAdmin, RoleOperator))
	assert.False(t, u.HasRole(RoleAdmin))
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusReturned.Valid())
	assert.False(t, TransactionStatus("approved").Valid())
}
