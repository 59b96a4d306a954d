package indicator

import "errors"

var (
	ErrNilSeries        = errors.New("bar series cannot be nil")
	ErrNilIndicator     = errors.New("indicator cannot be nil")
	ErrNilBar           = errors.New("bar cannot be nil")
	ErrInvalidWindow    = errors.New("window must be positive")
	ErrBarOutOfOrder    = errors.New("bar does not follow the last bar of the series")
	ErrInvalidPrice     = errors.New("bar prices must be finite")
	ErrUnknownIndicator = errors.New("unknown indicator")
	ErrInvalidSpec      = errors.New("invalid indicator spec")
)
