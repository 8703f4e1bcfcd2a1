package appointments

import "errors"

// ErrMissingName is returned when an appointment type has no name.
var ErrMissingName = errors.New("appointments: name is required")
