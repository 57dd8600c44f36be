// Package monitor streams call events from a device.
//
// The device pushes semicolon-delimited, newline-terminated text lines
// over a persistent TCP connection on port 1012 (the port must be
// enabled by dialing #96*5* from a connected phone). A Monitor owns
// that connection in a single background goroutine, reassembles lines
// regardless of how the transport fragments them, and hands complete
// events to the caller through a bounded channel returned by Start.
//
// Silence on the wire is normal, so connection health is exposed
// through IsAlive rather than through the event stream.
package monitor
