// Package fault defines the typed error taxonomy for device-reported
// failures and maps UPnP fault responses onto it.
//
// The device reports protocol failures with a numeric error code inside a
// SOAP fault body; the HTTP status alone is not sufficient to classify the
// failure. ParseFault translates such a response into an *Error carrying a
// Kind, so callers match with errors.Is against the kind sentinels instead
// of inspecting error text.
//
// Kinds form a shallow hierarchy: the string-length and character errors
// are value errors, value errors are argument errors, and action-failed /
// out-of-memory are internal errors. errors.Is follows the hierarchy
// upward, so matching ErrInvalidArgument catches every argument-related
// kind.
package fault
