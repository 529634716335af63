package listing

import "time"

// Timer is a pending debounce callback.
type Timer interface {
	Stop() bool
}

// Clock schedules debounce callbacks. Tests swap in a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// SystemClock schedules on the runtime timer.
type SystemClock struct{}

// AfterFunc wraps time.AfterFunc.
func (SystemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
