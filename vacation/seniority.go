package vacation

import "time"

// yearApprox is the span of one year of service. The 365.25-day
// approximation absorbs leap years over multi-year tenures.
const yearApprox = 365.25 * 24 * time.Hour

// YearsOfService returns whole years of service between hireDate and ref.
// A zero hire date, or a hire date after ref, yields 0 by convention.
func YearsOfService(hireDate, ref time.Time) int {
	if hireDate.IsZero() || ref.Before(hireDate) {
		return 0
	}
	return int(ref.Sub(hireDate) / yearApprox)
}
