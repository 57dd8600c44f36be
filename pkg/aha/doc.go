// Package aha talks to the home-automation HTTP interface.
//
// The interface uses a session id obtained through a challenge-response
// login. Current firmware issues a PBKDF2 challenge; older firmware
// falls back to an MD5 digest over the UTF-16LE encoded secret. A
// Session keeps the id across commands and re-authenticates once,
// transparently, when the id has expired.
package aha
