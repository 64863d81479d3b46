package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrSinkClosed         = fmt.Errorf("connection sink is closed")
	ErrSlowConsumer       = fmt.Errorf("send buffer full, payload dropped")
	ErrUnknownParticipant = fmt.Errorf("participant identifier is empty")
)
