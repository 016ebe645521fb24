package blob

import (
	"errors"
	"fmt"

	"github.com/npillmayer/swiftglyph/core"
)

// Structural errors of the blob format. They are always delivered wrapped
// in a core.AppError with code core.EBLOBFORMAT, so clients may test either
// for the code or, with errors.Is, for the concrete condition.
var (
	ErrTag           = errors.New("not a swiftglyph blob")
	ErrVersion       = errors.New("unsupported blob format version")
	ErrWidth         = errors.New("blob word width does not match runtime")
	ErrTruncated     = errors.New("blob truncated")
	ErrCountMismatch = errors.New("header and footer slot counts differ")
	ErrSlotBounds    = errors.New("slot offset outside of payload")
	ErrTargetBounds  = errors.New("pointer target outside of payload or external region")
	ErrKind          = errors.New("unknown pointer kind")
	ErrDoubleDecode  = errors.New("blob has already been decoded")
	ErrUnresolved    = errors.New("pointer slot has not been resolved")
	ErrReleased      = errors.New("view has been released")
	ErrBounds        = errors.New("access outside of payload")
)

func formatError(cause error, format string, v ...interface{}) error {
	msg := fmt.Sprintf(format, v...)
	tracer().Debugf("blob format error: %s", msg)
	return core.WrapError(fmt.Errorf("%w: %s", cause, msg), core.EBLOBFORMAT, msg)
}
