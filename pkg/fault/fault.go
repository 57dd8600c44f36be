package fault

import (
	"errors"
	"fmt"
)

// Kind sentinels. Callers use these with errors.Is to classify an *Error
// without string comparison. Matching a parent sentinel also matches all
// of its child kinds.
var (
	// ErrConnection is the generic kind: the device rejected the request
	// before processing it, the response was unparseable, or the error
	// code is not in the mapping table.
	ErrConnection = errors.New("connection error")

	// ErrAuthorization indicates an HTTP-level rejection (credentials
	// missing or wrong), distinct from the protocol-level security error.
	ErrAuthorization = errors.New("authorization error")

	// ErrInvalidAction indicates the action is unknown to the device (401).
	ErrInvalidAction = errors.New("invalid action")

	// ErrInvalidArgument indicates an invalid argument (402).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidArgumentValue indicates an argument value out of range (600).
	ErrInvalidArgumentValue = errors.New("invalid argument value")

	// ErrStringTooShort indicates an argument string below the minimum
	// length (801).
	ErrStringTooShort = errors.New("argument string too short")

	// ErrStringTooLong indicates an argument string above the maximum
	// length (802).
	ErrStringTooLong = errors.New("argument string too long")

	// ErrInvalidCharacter indicates an argument with characters the device
	// does not accept (803).
	ErrInvalidCharacter = errors.New("invalid character in argument")

	// ErrInternal indicates a failure inside the device (820).
	ErrInternal = errors.New("internal device error")

	// ErrActionFailed indicates the device could not execute the action
	// properly (501).
	ErrActionFailed = errors.New("action failed")

	// ErrOutOfMemory indicates memory shortage on the device (603).
	ErrOutOfMemory = errors.New("device out of memory")

	// ErrSecurity indicates a protocol-level security or authorization
	// failure (606).
	ErrSecurity = errors.New("security error")

	// ErrArrayIndex indicates an out-of-range index into a device-internal
	// array (713).
	ErrArrayIndex = errors.New("array index out of range")

	// ErrLookup indicates a failed lookup for an id or entry in a
	// device-internal table (714).
	ErrLookup = errors.New("lookup failed")
)

// Kind identifies a device-reported failure class.
type Kind uint8

const (
	// KindUnknown is used for error codes not in the mapping table.
	KindUnknown Kind = iota
	KindInvalidAction
	KindInvalidArgument
	KindActionFailed
	KindInvalidArgumentValue
	KindOutOfMemory
	KindSecurity
	KindArrayIndex
	KindLookup
	KindStringTooShort
	KindStringTooLong
	KindInvalidCharacter
	KindInternal
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInvalidAction:
		return "INVALID_ACTION"
	case KindInvalidArgument:
		return "INVALID_ARGUMENT"
	case KindActionFailed:
		return "ACTION_FAILED"
	case KindInvalidArgumentValue:
		return "INVALID_ARGUMENT_VALUE"
	case KindOutOfMemory:
		return "OUT_OF_MEMORY"
	case KindSecurity:
		return "SECURITY_ERROR"
	case KindArrayIndex:
		return "ARRAY_INDEX"
	case KindLookup:
		return "LOOKUP_FAILED"
	case KindStringTooShort:
		return "STRING_TOO_SHORT"
	case KindStringTooLong:
		return "STRING_TOO_LONG"
	case KindInvalidCharacter:
		return "INVALID_CHARACTER"
	case KindInternal:
		return "INTERNAL_ERROR"
	default:
		return "UNKNOWN"
	}
}

// sentinel returns the errors.Is target for this kind.
func (k Kind) sentinel() error {
	switch k {
	case KindInvalidAction:
		return ErrInvalidAction
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindActionFailed:
		return ErrActionFailed
	case KindInvalidArgumentValue:
		return ErrInvalidArgumentValue
	case KindOutOfMemory:
		return ErrOutOfMemory
	case KindSecurity:
		return ErrSecurity
	case KindArrayIndex:
		return ErrArrayIndex
	case KindLookup:
		return ErrLookup
	case KindStringTooShort:
		return ErrStringTooShort
	case KindStringTooLong:
		return ErrStringTooLong
	case KindInvalidCharacter:
		return ErrInvalidCharacter
	case KindInternal:
		return ErrInternal
	default:
		return ErrConnection
	}
}

// parent returns the enclosing kind, or KindUnknown at the top.
// The hierarchy is flat enough that a switch keeps it readable:
// string-length/character errors are value errors, value errors are
// argument errors, action-failed and out-of-memory are internal errors.
func (k Kind) parent() (Kind, bool) {
	switch k {
	case KindStringTooShort, KindStringTooLong, KindInvalidCharacter:
		return KindInvalidArgumentValue, true
	case KindInvalidArgumentValue:
		return KindInvalidArgument, true
	case KindActionFailed, KindOutOfMemory:
		return KindInternal, true
	default:
		return KindUnknown, false
	}
}

// kindByCode maps the UPnP error codes defined by the vendor to kinds.
var kindByCode = map[int]Kind{
	401: KindInvalidAction,
	402: KindInvalidArgument,
	501: KindActionFailed,
	600: KindInvalidArgumentValue,
	603: KindOutOfMemory,
	606: KindSecurity,
	713: KindArrayIndex,
	714: KindLookup,
	801: KindStringTooShort,
	802: KindStringTooLong,
	803: KindInvalidCharacter,
	820: KindInternal,
}

// KindForCode returns the Kind for a protocol error code.
// Unknown codes map to KindUnknown.
func KindForCode(code int) Kind {
	return kindByCode[code]
}

// Error is a failure reported by the device, classified by Kind.
// The Detail text retains the raw device-reported description for
// diagnostics.
type Error struct {
	Kind   Kind
	Code   int
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("device error %d (%s)", e.Code, e.Kind)
	}
	return fmt.Sprintf("device error %d (%s): %s", e.Code, e.Kind, e.Detail)
}

// Is reports whether target is the sentinel for this error's kind or for
// any of its ancestor kinds. Every device error also matches
// ErrConnection as the taxonomy root.
func (e *Error) Is(target error) bool {
	if target == ErrConnection {
		return true
	}
	for k := e.Kind; ; {
		if target == k.sentinel() {
			return true
		}
		parent, ok := k.parent()
		if !ok {
			return false
		}
		k = parent
	}
}

// IsLookupError reports whether the error represents a failed key lookup.
// Compatibility predicate for callers that previously caught generic
// lookup failures.
func (e *Error) IsLookupError() bool {
	return e.Kind == KindLookup
}

// IsIndexError reports whether the error represents an out-of-range index.
func (e *Error) IsIndexError() bool {
	return e.Kind == KindArrayIndex
}

// ConnectionError is raised when the device rejected the request before
// processing it (for example an HTML error page instead of a SOAP fault)
// or when no well-formed response was received at all.
type ConnectionError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Is matches ErrConnection so callers can classify with errors.Is.
func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}

// AuthorizationError is raised on HTTP-level rejection: the device refused
// the request entirely, typically because credentials are missing or wrong.
type AuthorizationError struct {
	Message string
}

// Error implements the error interface.
func (e *AuthorizationError) Error() string {
	return e.Message
}

// Is matches ErrAuthorization and the taxonomy root ErrConnection.
func (e *AuthorizationError) Is(target error) bool {
	return target == ErrAuthorization || target == ErrConnection
}
