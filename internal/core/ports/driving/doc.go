// Package driving defines the inbound ports of the sync engine: the
// operations a host (web layer, CLI, scheduler) invokes.
package driving
