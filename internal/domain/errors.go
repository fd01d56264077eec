package domain

// ErrorKind tags the failure class a caller can branch on.
type ErrorKind int

const (
	KindPermissionDenied ErrorKind = iota + 1
	KindOperationFailed
	KindInvalidState
	KindInvalidInput
)

func (k ErrorKind) String() string {
	switch k {
	case KindPermissionDenied:
		return "permission_denied"
	case KindOperationFailed:
		return "operation_failed"
	case KindInvalidState:
		return "invalid_state"
	case KindInvalidInput:
		return "invalid_input"
	}
	return "unknown"
}

// RoomError is the tagged error every orchestrator operation returns on
// failure. Reason is human-readable and safe to surface to clients.
type RoomError struct {
	Kind   ErrorKind
	Reason string
}

func (e *RoomError) Error() string { return e.Reason }

func NewPermissionDenied(reason string) *RoomError {
	return &RoomError{Kind: KindPermissionDenied, Reason: reason}
}

func NewOperationFailed(reason string) *RoomError {
	return &RoomError{Kind: KindOperationFailed, Reason: reason}
}

func NewInvalidState(reason string) *RoomError {
	return &RoomError{Kind: KindInvalidState, Reason: reason}
}

func NewInvalidInput(reason string) *RoomError {
	return &RoomError{Kind: KindInvalidInput, Reason: reason}
}
