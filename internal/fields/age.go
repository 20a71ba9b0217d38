package fields

import "time"

// AgeAt computes whole calendar years between dob and at. The year
// difference is reduced by one when at falls before the birth month/day,
// so a signer exactly N years minus one day old is N-1. A Feb 29 birth
// date rolls to Mar 1 in non-leap years.
func AgeAt(dob, at time.Time) int {
	age := at.Year() - dob.Year()
	if at.Month() < dob.Month() || (at.Month() == dob.Month() && at.Day() < dob.Day()) {
		age--
	}
	return age
}
