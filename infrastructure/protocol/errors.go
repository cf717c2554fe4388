package protocol

import "errors"

// Message texts are part of the observable contract; keep them verbatim.
var (
	ErrInvalidPacketType   = errors.New("Invalid packet type")
	ErrIncorrectPacketType = errors.New("Incorrect packet type")
	ErrTruncatedPacket     = errors.New("truncated packet")
	ErrInvalidString       = errors.New("encoded string is not valid UTF-8")
)

// RemoteError carries the message of an Error frame the peer substituted for
// the response the caller expected. It is a typed failure, never a
// malformed success.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}
