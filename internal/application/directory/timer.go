package directory

import "time"

// Timer is a cancellable pending call
type Timer interface {
	Stop() bool
}

// TimerFactory schedules f after d
type TimerFactory func(d time.Duration, f func()) Timer

// RealTimers schedules with time.AfterFunc
func RealTimers(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
