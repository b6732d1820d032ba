package errors

import "fmt"

var (
	ErrWorkerPanic   = fmt.Errorf("worker panic")
	ErrGroupExists   = fmt.Errorf("group name already taken")
	ErrGroupNotFound = fmt.Errorf("group not found")
	ErrUnknownEvent  = fmt.Errorf("unknown inbound event")
)
