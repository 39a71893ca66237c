// Package connectors provides implementations of the RemoteSource
// interface. Each connector knows how to list and fetch files from one
// remote storage backend.
package connectors
