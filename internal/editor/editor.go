package editor

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xnapps/purchase-tracking/internal/tracking"
	"github.com/xnapps/purchase-tracking/pkg/clock"
	"github.com/xnapps/purchase-tracking/pkg/enums"
	pkgerrors "github.com/xnapps/purchase-tracking/pkg/errors"
)

// Deps wires the editor to the tracking services and its host.
type Deps struct {
	Service   tracking.Service
	Query     tracking.QueryService
	Numbering tracking.NumberingService
	Surface   Surface
	Prompter  Prompter
	Log       DiagnosticLog
	Clock     clock.Clock

	DefaultSaveAction enums.SaveAction
}

// Editor is the controller behind one tracking document form. It is driven by a single
// UI event loop and is not safe for concurrent use.
type Editor struct {
	service   tracking.Service
	query     tracking.QueryService
	numbering tracking.NumberingService
	surface   Surface
	prompter  Prompter
	log       DiagnosticLog
	clock     clock.Clock

	loader *Loader
	mode   *ModeMachine
	lines  *LineBuffer
	header tracking.Header
}

// New opens an editor in Create mode on a blank document.
func New(ctx context.Context, deps Deps) (*Editor, error) {
	switch {
	case deps.Service == nil:
		return nil, fmt.Errorf("tracking service is required")
	case deps.Query == nil:
		return nil, fmt.Errorf("tracking query service is required")
	case deps.Numbering == nil:
		return nil, fmt.Errorf("numbering service is required")
	case deps.Surface == nil:
		return nil, fmt.Errorf("surface is required")
	case deps.Prompter == nil:
		return nil, fmt.Errorf("prompter is required")
	}
	var diag DiagnosticLog = nopLog{}
	if deps.Log != nil {
		diag = deps.Log
	}
	clk := clock.OrSystem(deps.Clock)

	e := &Editor{
		service:   deps.Service,
		query:     deps.Query,
		numbering: deps.Numbering,
		surface:   deps.Surface,
		prompter:  deps.Prompter,
		log:       diag,
		clock:     clk,
		loader:    NewLoader(deps.Query),
		mode:      NewModeMachine(deps.DefaultSaveAction),
		lines:     NewLineBuffer(clk),
	}
	if err := e.step("open", func() error {
		e.startBlank(ctx)
		return nil
	}); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Editor) Mode() Mode {
	return e.mode.Mode()
}

func (e *Editor) Header() tracking.Header {
	return e.header
}

func (e *Editor) Lines() []tracking.Line {
	return e.lines.Lines()
}

// Snapshot captures what the surface renders right now.
func (e *Editor) Snapshot() Snapshot {
	return Snapshot{
		Mode:       e.mode.Mode(),
		Header:     e.header,
		Lines:      e.lines.Lines(),
		Columns:    Columns(),
		Affordance: e.mode.Affordance(),
	}
}

// SetField edits one header field. Editing a viewed document switches to Edit.
func (e *Editor) SetField(ctx context.Context, field Field, value string) error {
	return e.step("set field "+string(field), func() error {
		if err := e.ensureMutable(); err != nil {
			return err
		}
		next, err := applyField(e.header, field, value)
		if err != nil {
			return err
		}
		e.header = next
		return e.mutated()
	})
}

// SetCell commits one grid cell. Only editable columns accept input.
func (e *Editor) SetCell(ctx context.Context, row int, column Column, value string) error {
	return e.step(fmt.Sprintf("set cell %s[%d]", column, row), func() error {
		if err := e.ensureMutable(); err != nil {
			return err
		}
		spec, ok := columnSpec(column)
		if !ok {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown column %q", column)
		}
		if !spec.Editable {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "column %s is read-only", column).
				WithDetails(map[string]any{"column": string(column), "row": row})
		}
		var err error
		switch column {
		case ColumnDescription:
			err = e.lines.CommitDescription(row, value)
		case ColumnDate:
			value = strings.TrimSpace(value)
			err = e.lines.SetStamp(row, &value, nil)
		case ColumnTime:
			value = strings.TrimSpace(value)
			err = e.lines.SetStamp(row, nil, &value)
		case ColumnStatus:
			err = e.lines.CommitStatus(row, strings.TrimSpace(value))
		}
		if err != nil {
			return err
		}
		return e.mutated()
	})
}

// InsertLine adds a blank row before index at.
func (e *Editor) InsertLine(ctx context.Context, at int) error {
	return e.step(fmt.Sprintf("insert line %d", at), func() error {
		if err := e.ensureMutable(); err != nil {
			return err
		}
		if err := e.lines.Insert(at); err != nil {
			return err
		}
		return e.mutated()
	})
}

// RemoveLine drops row and renumbers the rest.
func (e *Editor) RemoveLine(ctx context.Context, row int) error {
	return e.step(fmt.Sprintf("remove line %d", row), func() error {
		if err := e.ensureMutable(); err != nil {
			return err
		}
		if err := e.lines.Remove(row); err != nil {
			return err
		}
		return e.mutated()
	})
}

// Select handles a picker event.
func (e *Editor) Select(ctx context.Context, sel Selection) error {
	return e.step("select "+string(sel.Picker), func() error {
		switch sel.Picker {
		case PickerCounterparty, PickerSourceOrder:
			return e.selectSourceOrder(ctx, sel)
		case PickerDocument:
			id, err := selectionID(sel, ValueID)
			if err != nil {
				return err
			}
			return e.hydrate(ctx, id, TriggerDocumentSelected)
		case PickerDisplayNumber:
			number, err := selectionID(sel, ValueDisplayNumber)
			if err != nil {
				return err
			}
			id, err := e.query.FindByDisplayNumber(ctx, number)
			if err != nil {
				return err
			}
			if id == 0 {
				return pkgerrors.Newf(pkgerrors.CodeNotFound, "no tracking document numbered %d", number)
			}
			return e.hydrate(ctx, id, TriggerDocumentSelected)
		default:
			return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown picker %q", sel.Picker)
		}
	})
}

// selectSourceOrder copies the picked purchase order onto the header. An order already
// tracked by another document opens that document in View instead.
func (e *Editor) selectSourceOrder(ctx context.Context, sel Selection) error {
	if err := e.ensureMutable(); err != nil {
		return err
	}
	id, err := parseID(strings.TrimSpace(sel.Values[ValueID]))
	if err != nil {
		return err
	}
	if id > 0 {
		existing, err := e.query.FindBySourceOrder(ctx, id)
		if err != nil {
			return err
		}
		if existing > 0 && existing != e.header.ID {
			if err := e.hydrate(ctx, existing, TriggerDocumentSelected); err != nil {
				return err
			}
			e.surface.Notify(Notice{
				Level:   NoticeInfo,
				Message: fmt.Sprintf("purchase order %d is already tracked by document %d", id, e.header.DisplayNumber),
			})
			return nil
		}
	}

	number, err := parseID(strings.TrimSpace(sel.Values[ValueNumber]))
	if err != nil {
		return err
	}
	next := e.header
	next.CounterpartyCode = strings.TrimSpace(sel.Values[ValueCounterpartyCode])
	next.CounterpartyName = strings.TrimSpace(sel.Values[ValueCounterpartyName])
	if id > 0 {
		next.SourceOrderID = id
		next.SourceOrderNumber = number
		next.ExternalReference = strings.TrimSpace(sel.Values[ValueExternalReference])
		if raw, ok := sel.Values[ValueStatus]; ok {
			next.Status = enums.PurchaseOrderStatus(strings.TrimSpace(raw)).DocumentStatus()
		}
	}
	e.header = next
	return e.mutated()
}

// SetSaveAction picks the variant used by the next save in Create mode.
func (e *Editor) SetSaveAction(ctx context.Context, action enums.SaveAction) error {
	return e.step("set save action", func() error {
		return e.mode.SelectSaveAction(action)
	})
}

// NewDocument discards the buffer and starts over in Create mode.
func (e *Editor) NewDocument(ctx context.Context) error {
	return e.step("new document", func() error {
		if _, err := e.mode.Fire(TriggerNewDocument); err != nil {
			return err
		}
		e.startBlank(ctx)
		return nil
	})
}

// Save runs the primary action of the current mode. On failure the buffer and the mode
// are left as they were.
func (e *Editor) Save(ctx context.Context) error {
	return e.step("save", func() error {
		switch e.mode.Mode() {
		case ModeCreate:
			saved, err := e.persistNew(ctx)
			if err != nil {
				return err
			}
			return e.afterAdd(ctx, saved)
		case ModeEdit:
			if err := e.persistUpdate(ctx); err != nil {
				return err
			}
			e.surface.Notify(Notice{Level: NoticeInfo, Message: fmt.Sprintf("document %d updated", e.header.DisplayNumber)})
			return e.hydrateOrKeep(ctx, e.header, TriggerUpdateSaved)
		case ModeView:
			return nil
		default:
			return e.closedError()
		}
	})
}

// Cancel closes the editor. Unsaved changes are confirmed first; the clerk may save and
// close, discard and close, or stay.
func (e *Editor) Cancel(ctx context.Context) error {
	return e.step("cancel", func() error {
		if !e.mode.HasUnsavedChanges() {
			return e.close()
		}
		choice := e.prompter.ConfirmClose(e.mode.Mode())
		e.log.Log("editor cancel: clerk chose " + choice.String())
		switch choice {
		case CloseDiscard:
			return e.close()
		case CloseSaveThenClose:
			if e.mode.Mode() == ModeCreate {
				if _, err := e.persistNew(ctx); err != nil {
					return err
				}
			} else if err := e.persistUpdate(ctx); err != nil {
				return err
			}
			return e.close()
		default:
			return nil
		}
	})
}

func (e *Editor) afterAdd(ctx context.Context, saved tracking.Header) error {
	e.surface.Notify(Notice{Level: NoticeInfo, Message: fmt.Sprintf("document %d added", saved.DisplayNumber)})
	switch e.mode.SaveAction() {
	case enums.SaveActionAddView:
		return e.hydrateOrKeep(ctx, saved, TriggerSavedAddView)
	case enums.SaveActionAddClose:
		if _, err := e.mode.Fire(TriggerSavedAddClose); err != nil {
			return err
		}
		e.surface.Close()
		return nil
	default:
		if _, err := e.mode.Fire(TriggerSavedAddNew); err != nil {
			return err
		}
		e.startBlank(ctx)
		return nil
	}
}

func (e *Editor) persistNew(ctx context.Context) (tracking.Header, error) {
	header := e.header
	header.ID = 0
	header.DisplayNumber = 0
	return e.service.TryAdd(ctx, header, e.lines.Persistable())
}

func (e *Editor) persistUpdate(ctx context.Context) error {
	return e.service.TryUpdate(ctx, e.header, e.lines.Persistable())
}

// hydrateOrKeep reloads the saved document. The write already succeeded, so a failed
// reload keeps the local copy and still completes the transition.
func (e *Editor) hydrateOrKeep(ctx context.Context, saved tracking.Header, trigger Trigger) error {
	err := e.hydrate(ctx, saved.ID, trigger)
	if err == nil {
		return nil
	}
	if pkgerrors.Is(err, pkgerrors.CodeStateConflict) {
		return err
	}
	e.log.Log(fmt.Sprintf("editor reload of document %d failed, keeping local copy: %v", saved.ID, err))

	local := e.lines.Persistable()
	for i := range local {
		local[i].LineID = local[i].Order
	}
	if _, err := e.mode.Fire(trigger); err != nil {
		return err
	}
	e.header = saved
	e.lines.Load(local)
	e.surface.Notify(Notice{Level: NoticeWarning, Message: "saved, but the document could not be reloaded"})
	return nil
}

func (e *Editor) hydrate(ctx context.Context, id int64, trigger Trigger) error {
	header, err := e.loader.Hydrate(ctx, id, e.mode, e.lines, trigger)
	if err != nil {
		return err
	}
	e.header = header
	return nil
}

// startBlank resets the buffer for a new document and previews its number. The preview
// is informational; the service assigns the real number at save time.
func (e *Editor) startBlank(ctx context.Context) {
	e.lines.Reset()
	e.header = tracking.Header{
		DocumentDate: today(e.clock.Now()),
		Status:       enums.DocumentStatusOpen,
	}
	next, err := e.numbering.PeekDisplayNumber(ctx)
	if err != nil {
		e.log.Log(fmt.Sprintf("editor number preview failed: %v", err))
		return
	}
	e.header.DisplayNumber = next
}

func (e *Editor) close() error {
	if _, err := e.mode.Fire(TriggerClosed); err != nil {
		return err
	}
	e.surface.Close()
	return nil
}

func (e *Editor) mutated() error {
	_, err := e.mode.Fire(TriggerMutated)
	return err
}

func (e *Editor) ensureMutable() error {
	if !e.mode.Can(TriggerMutated) {
		return e.closedError()
	}
	return nil
}

func (e *Editor) closedError() error {
	return pkgerrors.Newf(pkgerrors.CodeStateConflict, "editor is %s", e.mode.Mode())
}

// step brackets one UI operation: the surface is frozen while the buffer changes and
// receives a single refresh afterwards. Failures are reported as a notice.
func (e *Editor) step(name string, fn func() error) (err error) {
	if e.mode.Mode() == ModeClosed {
		return e.closedError()
	}
	e.log.Log(fmt.Sprintf("editor %s: start mode=%s", name, e.mode.Mode()))
	e.surface.Freeze(true)
	defer func() {
		if err != nil {
			err = pkgerrors.Normalize(err, pkgerrors.CodeInternal, "editor "+name+" failed")
			e.log.Log(fmt.Sprintf("editor %s: failed: %v", name, err))
		} else {
			e.log.Log(fmt.Sprintf("editor %s: done mode=%s", name, e.mode.Mode()))
		}
		if e.mode.Mode() == ModeClosed {
			return
		}
		e.surface.Freeze(false)
		if err != nil {
			e.surface.Notify(noticeFor(err))
		}
		e.surface.Refresh(e.Snapshot())
	}()
	return fn()
}

func noticeFor(err error) Notice {
	typed := pkgerrors.As(err)
	if typed == nil {
		return Notice{Level: NoticeError, Message: err.Error(), Code: pkgerrors.CodeInternal}
	}
	level := NoticeError
	switch typed.Code() {
	case pkgerrors.CodeValidation, pkgerrors.CodeStateConflict, pkgerrors.CodeNotFound:
		level = NoticeWarning
	}
	return Notice{Level: level, Message: typed.Message(), Code: typed.Code()}
}

func selectionID(sel Selection, key string) (int64, error) {
	raw := strings.TrimSpace(sel.Values[key])
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "picker %s needs a positive %s", sel.Picker, key).
			WithDetails(map[string]any{"picker": string(sel.Picker), "value": raw})
	}
	return id, nil
}

func today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}
