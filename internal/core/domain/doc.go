// Package domain contains the core entities of the content sync and
// at-rest encryption engine: remote folders, their tracked files,
// extracted text, subject mappings, and the structured reports produced
// by a sync run.
package domain
