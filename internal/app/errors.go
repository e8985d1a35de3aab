package app

import "errors"

// ErrBusy is reported when a trigger arrives while a cycle is in flight.
var ErrBusy = errors.New("a fetch is already in progress")
