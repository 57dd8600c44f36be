// Package cache stores parsed device descriptions on disk so later
// sessions can skip descriptor download and schema loading.
//
// A snapshot records the device identity (model name and system
// version) alongside the descriptions. On load the identity is checked
// against the live device; a firmware update or a different box at the
// same address invalidates the snapshot and forces a fresh scan.
package cache
