// Package f1time parses the time-like strings published by the jolpica-f1 API into
// validated values: dates, times of day, lap and race durations, gaps to the leader,
// qualifying times and race finishing times.
//
// Every parser is pure and strict. Inputs outside the grammar return a *ParseError
// (matching ErrInvalidFormat); the only exceptions are the known upstream data bugs
// handled by ParseBuggyRaceTime.
//
//	d, _ := f1time.ParseDuration("1:22.327")  // 1m22.327s
//	g, _ := f1time.ParseDelta("+2.137")       // 2.137s
//	rt, _ := f1time.ParseRaceTime("5564573", "+2.137")
package f1time
