package tui

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("tui: answer service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")

// errDispatchDisabled is reported when send is pressed without a dispatcher.
var errDispatchDisabled = errors.New("dispatch is not configured")
