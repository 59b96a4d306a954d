package rules

import "errors"

var (
	ErrNilRule            = errors.New("rule cannot be nil")
	ErrNilIndicator       = errors.New("indicator cannot be nil")
	ErrNilSeries          = errors.New("bar series cannot be nil")
	ErrEmptyRules         = errors.New("rule list cannot be empty")
	ErrInvalidVotes       = errors.New("required votes out of range")
	ErrInvalidThreshold   = errors.New("threshold out of range")
	ErrInvalidBarCount    = errors.New("bar count must be positive")
	ErrInvalidPercentage  = errors.New("percentage must be positive")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidCoefficient = errors.New("coefficient must be positive")
	ErrInvalidRatio       = errors.New("ratio must be positive")
	ErrInvalidDuration    = errors.New("duration must be positive")
	ErrInvalidStrength    = errors.New("strength must be in range (0, 1]")
	ErrInvalidHour        = errors.New("hour of day must be in range 0-23")
	ErrInvalidMinute      = errors.New("minute of hour must be in range 0-59")
	ErrInvalidTimeRange   = errors.New("time range must satisfy 0 <= from <= to < 24h")
)
