package jolpica

// BaseURL is the root of the jolpica-f1 API, the maintained successor of the Ergast API.
const BaseURL = "https://api.jolpi.ca/ergast/f1"

// Pagination limits enforced by the API.
const (
	DefaultLimit  uint32 = 30
	DefaultOffset uint32 = 0
	MaxLimit      uint32 = 100
)

// Published request quota: short bursts of BurstLimitPerSecond, and at most
// SustainedLimitPerHour requests in any hour.
const (
	BurstLimitPerSecond   = 4
	SustainedLimitPerHour = 500
)

// GridPitLane is the grid position recorded for drivers starting from the pit lane.
const GridPitLane uint32 = 0
