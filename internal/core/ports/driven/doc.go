// Package driven defines the outbound ports of the sync engine: the
// remote content source, the persisted record stores, the at-rest blob
// store, and the text extractor. Adapters implement these interfaces;
// the core services depend only on them.
package driven
