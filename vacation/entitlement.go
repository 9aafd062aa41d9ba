/*
entitlement.go - Annual vacation entitlement rule

PURPOSE:
  Computes how many vacation days an employee is entitled to for a target
  calendar year. Two regimes apply:

  Hired in a PRIOR year (seniority bands):
    years of service at Dec 31 of the target year selects a tier,
    e.g. <5y -> 14 days, <10y -> 21, <20y -> 28, >=20y -> 35.

  Hired DURING the target year (first-year rule):
    count calendar days from the hire date to Dec 31 inclusive and divide
    by the proportional divisor. If the elapsed span reaches the monthly
    threshold, the flat first-year grant applies instead.

CONFIGURATION OVER LAW:
  The tiers and the first-year parameters are local labor-law values and
  vary by jurisdiction. They live in EntitlementConfig so deployments can
  swap them without touching the rule itself.

EDGE CASES:
  - No hire date -> 0 days, not an error.
  - Hired after the target year -> 0 days.

SEE ALSO:
  - seniority.go: years-of-service calculation the tiers key on
  - ledger.go: computes on-the-fly balances from this rule
*/
package vacation

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// SeniorityTier grants AnnualDays once service reaches AfterYears.
type SeniorityTier struct {
	AfterYears int
	AnnualDays decimal.Decimal
}

// EntitlementConfig holds the banded rule and first-year parameters.
// Tiers must be ordered by AfterYears ascending.
type EntitlementConfig struct {
	Tiers []SeniorityTier

	// First-year proportional rule: inclusiveDays(hire, Dec31) / Divisor,
	// rounded to 2 decimals.
	FirstYearDivisor decimal.Decimal

	// Flat grant once the first-year span reaches FlatAfterMonths.
	FirstYearFlatDays  decimal.Decimal
	FlatAfterMonths    int
	DaysPerMonthApprox decimal.Decimal
}

// DefaultEntitlementConfig returns the bands observed in local labor law.
func DefaultEntitlementConfig() EntitlementConfig {
	return EntitlementConfig{
		Tiers: []SeniorityTier{
			{AfterYears: 0, AnnualDays: decimal.NewFromInt(14)},
			{AfterYears: 5, AnnualDays: decimal.NewFromInt(21)},
			{AfterYears: 10, AnnualDays: decimal.NewFromInt(28)},
			{AfterYears: 20, AnnualDays: decimal.NewFromInt(35)},
		},
		FirstYearDivisor:   decimal.NewFromInt(20),
		FirstYearFlatDays:  decimal.NewFromInt(14),
		FlatAfterMonths:    6,
		DaysPerMonthApprox: decimal.NewFromFloat(30.44),
	}
}

// =============================================================================
// ENTITLEMENT RULE
// =============================================================================

// EntitledDays returns the vacation days granted for the target year.
func (c EntitlementConfig) EntitledDays(hireDate time.Time, year int) decimal.Decimal {
	if hireDate.IsZero() || hireDate.Year() > year {
		return decimal.Zero
	}

	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	if hireDate.Year() < year {
		return c.tierFor(YearsOfService(hireDate, yearEnd))
	}

	// Hired during the target year.
	days := decimal.NewFromInt(int64(InclusiveDays(hireDate, yearEnd)))
	elapsedMonths := days.Div(c.DaysPerMonthApprox)
	if elapsedMonths.LessThan(decimal.NewFromInt(int64(c.FlatAfterMonths))) {
		return days.Div(c.FirstYearDivisor).Round(2)
	}
	return c.FirstYearFlatDays
}

func (c EntitlementConfig) tierFor(years int) decimal.Decimal {
	granted := decimal.Zero
	for _, tier := range c.Tiers {
		if years >= tier.AfterYears {
			granted = tier.AnnualDays
		}
	}
	return granted
}
