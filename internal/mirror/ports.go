// Package mirror defines the outbound port for replicating the current
// document somewhere outside the primary store.
package mirror

import (
	"context"

	"tempo/internal/core"
)

// DocumentMirror replicates a full document snapshot. Implementations must
// be idempotent: the worker may mirror the same state more than once.
type DocumentMirror interface {
	MirrorDocument(ctx context.Context, doc *core.Document) error
}
