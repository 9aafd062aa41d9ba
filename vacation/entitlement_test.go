package vacation_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/nomina/vacation-ledger/vacation"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEntitledDays_SeniorityBands(t *testing.T) {
	cfg := vacation.DefaultEntitlementConfig()

	tests := []struct {
		name     string
		hireDate time.Time
		year     int
		want     string
	}{
		{"under five years", date(2021, time.June, 1), 2024, "14"},
		{"nine full years", date(2015, time.March, 1), 2024, "21"},
		{"fifteen years", date(2009, time.September, 15), 2024, "28"},
		{"over twenty years", date(2000, time.January, 15), 2024, "35"},
		{"exactly five years", date(2019, time.December, 31), 2024, "21"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.EntitledDays(tt.hireDate, tt.year).String())
		})
	}
}

func TestEntitledDays_FirstYear(t *testing.T) {
	cfg := vacation.DefaultEntitlementConfig()

	// GIVEN: Hired January 10 of the target year
	// WHEN: The elapsed span to Dec 31 exceeds six months
	// THEN: The flat first-year grant applies
	assert.Equal(t, "14", cfg.EntitledDays(date(2024, time.January, 10), 2024).String())

	// GIVEN: Hired October 1 of the target year (92 days to Dec 31)
	// WHEN: The elapsed span is under six months
	// THEN: Proportional entitlement: 92 / 20 = 4.6
	assert.Equal(t, "4.6", cfg.EntitledDays(date(2024, time.October, 1), 2024).String())

	// Hired on December 31: a single day still earns its fraction.
	assert.Equal(t, "0.05", cfg.EntitledDays(date(2024, time.December, 31), 2024).String())
}

func TestEntitledDays_EdgeCases(t *testing.T) {
	cfg := vacation.DefaultEntitlementConfig()

	// No hire date is 0 days, not an error.
	assert.True(t, cfg.EntitledDays(time.Time{}, 2024).IsZero())

	// Hired after the target year.
	assert.True(t, cfg.EntitledDays(date(2025, time.February, 1), 2024).IsZero())
}

func TestBalance_Available(t *testing.T) {
	b := vacation.Balance{
		EmployeeID:   "emp-1",
		Year:         2024,
		EntitledDays: dec("14"),
		OwedDays:     dec("2.5"),
		UsedDays:     dec("3"),
	}
	assert.Equal(t, "13.5", b.Available().String())

	// Rounds to two decimals.
	b.OwedDays = dec("0.333")
	assert.Equal(t, "11.33", b.Available().String())
}
