// Package schema builds the in-memory action schema of a device.
//
// A Manager fetches root descriptor documents from a Source, walks the
// device tree, flattens every service (including sub-device services)
// into one name-keyed registry and loads each service's action-schema
// document. The built registry is read-only; re-running discovery
// replaces it entirely.
package schema
