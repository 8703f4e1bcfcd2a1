package bookings

import "errors"

// ErrInvalidBooking wraps validation failures on a booking request.
var ErrInvalidBooking = errors.New("bookings: invalid booking")
