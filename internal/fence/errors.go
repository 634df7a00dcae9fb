package fence

import "errors"

// Hard validation failures. These signal back to the caller for inline
// feedback and always leave canonical state unchanged.
var (
	ErrUnknownLine       = errors.New("unknown line")
	ErrUnknownGate       = errors.New("unknown gate")
	ErrLengthOutOfRange  = errors.New("length out of range")
	ErrWidthOutOfRange   = errors.New("gate width out of range")
	ErrInsufficientSpace = errors.New("insufficient space")
	ErrGateLine          = errors.New("line is a gate opening")
)
