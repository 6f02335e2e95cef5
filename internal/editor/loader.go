package editor

import (
	"context"
	"fmt"

	"github.com/xnapps/purchase-tracking/internal/tracking"
	pkgerrors "github.com/xnapps/purchase-tracking/pkg/errors"
)

// Loader hydrates the editor from a persisted document.
type Loader struct {
	query tracking.QueryService
}

func NewLoader(query tracking.QueryService) *Loader {
	return &Loader{query: query}
}

// Hydrate fetches document id, then loads its lines into the buffer and fires trigger.
// Nothing is touched unless the fetch succeeds and the trigger is allowed.
func (l *Loader) Hydrate(ctx context.Context, id int64, mode *ModeMachine, lines *LineBuffer, trigger Trigger) (tracking.Header, error) {
	if !mode.Can(trigger) {
		_, err := mode.Fire(trigger)
		return tracking.Header{}, err
	}
	doc, err := l.query.Document(ctx, id)
	if err != nil {
		return tracking.Header{}, pkgerrors.Normalize(err, pkgerrors.CodeDependency, fmt.Sprintf("load tracking document (id=%d)", id))
	}
	lines.Load(doc.Lines)
	if _, err := mode.Fire(trigger); err != nil {
		return tracking.Header{}, err
	}
	return doc.Header, nil
}
