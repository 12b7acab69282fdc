package service

import "errors"

// ErrCycle is returned when a task parent assignment would make the task
// its own ancestor.
var ErrCycle = errors.New("task hierarchy cycle")
