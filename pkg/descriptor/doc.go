// Package descriptor holds the typed model of a parsed UPnP device
// description and the per-service action schema (SCPD).
//
// The model mirrors the XML document structure: a Description owns a
// Device tree, devices own Services, and a Service - once its SCPD is
// loaded - owns Actions, Arguments and StateVariables. Known element
// names map onto explicit struct fields; unrecognized elements are
// ignored by the XML decoder.
//
// All types are constructed during discovery and are read-only
// afterwards. They are safe for concurrent readers once the schema pass
// has completed.
package descriptor
