package driven

import (
	"context"

	"github.com/l8testudy/drivevault/internal/core/domain"
)

// TextExtractor produces searchable text from document bytes.
// Implementations must never let an internal failure escape: unreadable
// documents yield Extraction{OK: false}, not an error. Returned text is
// already whitespace-normalised.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, mimeType string) domain.Extraction
}
