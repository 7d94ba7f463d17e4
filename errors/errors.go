package errors

import "fmt"

var (
	ErrRoomNotFound           = fmt.Errorf("room not found")
	ErrDuplicateRoom          = fmt.Errorf("room id or name already taken")
	ErrAlreadyMember          = fmt.Errorf("channel already belongs to a room")
	ErrNotMember              = fmt.Errorf("channel does not belong to any room")
	ErrPasswordMismatch       = fmt.Errorf("room password mismatch")
	ErrConfirmationTimeout    = fmt.Errorf("confirmation timed out")
	ErrConfirmationRejected   = fmt.Errorf("confirmation rejected")
	ErrDestinationUnreachable = fmt.Errorf("destination channel unreachable")
	ErrWorkerPanic            = fmt.Errorf("worker panic")
)
