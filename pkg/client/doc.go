// Package client is the connection facade for one device.
//
// A Client composes the schema manager and the SOAP invoker behind a
// single call surface. It owns normalization of user-supplied service
// names, rejects unknown services and actions before any network I/O,
// and optionally persists the scanned API to a local snapshot so later
// sessions start without a descriptor download.
package client
