package editor

import (
	"fmt"

	"github.com/xnapps/purchase-tracking/pkg/enums"
	pkgerrors "github.com/xnapps/purchase-tracking/pkg/errors"
)

// Mode is the editor's single authoritative state.
type Mode int

const (
	ModeCreate Mode = iota
	ModeView
	ModeEdit
	// ModeClosed is terminal: the surface is gone and no trigger leaves it.
	ModeClosed
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeView:
		return "view"
	case ModeEdit:
		return "edit"
	case ModeClosed:
		return "closed"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Trigger is an event that may move the editor between modes.
type Trigger int

const (
	TriggerSavedAddNew Trigger = iota
	TriggerSavedAddView
	TriggerSavedAddClose
	TriggerDocumentSelected
	TriggerMutated
	TriggerUpdateSaved
	TriggerNewDocument
	TriggerClosed
)

func (t Trigger) String() string {
	switch t {
	case TriggerSavedAddNew:
		return "saved_add_new"
	case TriggerSavedAddView:
		return "saved_add_view"
	case TriggerSavedAddClose:
		return "saved_add_close"
	case TriggerDocumentSelected:
		return "document_selected"
	case TriggerMutated:
		return "mutated"
	case TriggerUpdateSaved:
		return "update_saved"
	case TriggerNewDocument:
		return "new_document"
	case TriggerClosed:
		return "closed"
	default:
		return fmt.Sprintf("trigger(%d)", int(t))
	}
}

var transitions = map[Mode]map[Trigger]Mode{
	ModeCreate: {
		TriggerSavedAddNew:      ModeCreate,
		TriggerSavedAddView:     ModeView,
		TriggerSavedAddClose:    ModeClosed,
		TriggerDocumentSelected: ModeView,
		TriggerMutated:          ModeCreate,
		TriggerNewDocument:      ModeCreate,
		TriggerClosed:           ModeClosed,
	},
	ModeView: {
		TriggerDocumentSelected: ModeView,
		TriggerMutated:          ModeEdit,
		TriggerNewDocument:      ModeCreate,
		TriggerClosed:           ModeClosed,
	},
	ModeEdit: {
		TriggerDocumentSelected: ModeView,
		TriggerMutated:          ModeEdit,
		TriggerUpdateSaved:      ModeView,
		TriggerNewDocument:      ModeCreate,
		TriggerClosed:           ModeClosed,
	},
}

// AffordanceKind tells the surface which primary action to render.
type AffordanceKind string

const (
	AffordanceSaveSelector AffordanceKind = "save_selector"
	AffordanceSingle       AffordanceKind = "single"
	AffordanceNone         AffordanceKind = "none"
)

// Affordance is the primary action exposed in the current mode.
type Affordance struct {
	Kind     AffordanceKind     `json:"kind"`
	Label    string             `json:"label"`
	Options  []enums.SaveAction `json:"options,omitempty"`
	Selected enums.SaveAction   `json:"selected,omitempty"`
}

// ModeMachine owns the current mode and the save variant picked on the selector.
type ModeMachine struct {
	mode          Mode
	saveAction    enums.SaveAction
	defaultAction enums.SaveAction
}

// NewModeMachine starts in Create. An invalid default falls back to add-and-new.
func NewModeMachine(defaultAction enums.SaveAction) *ModeMachine {
	if !defaultAction.IsValid() {
		defaultAction = enums.SaveActionAddNew
	}
	return &ModeMachine{mode: ModeCreate, saveAction: defaultAction, defaultAction: defaultAction}
}

func (m *ModeMachine) Mode() Mode {
	return m.mode
}

// Can reports whether the trigger is allowed from the current mode.
func (m *ModeMachine) Can(t Trigger) bool {
	_, ok := transitions[m.mode][t]
	return ok
}

// Fire applies the trigger or returns a state conflict without changing anything.
// Entering Create restores the default save variant.
func (m *ModeMachine) Fire(t Trigger) (Mode, error) {
	next, ok := transitions[m.mode][t]
	if !ok {
		return m.mode, pkgerrors.Newf(pkgerrors.CodeStateConflict, "%s is not allowed in %s mode", t, m.mode).
			WithDetails(map[string]any{"mode": m.mode.String(), "trigger": t.String()})
	}
	if next == ModeCreate && m.mode != ModeCreate {
		m.saveAction = m.defaultAction
	}
	m.mode = next
	return next, nil
}

// HasUnsavedChanges treats every Create and Edit buffer as pending.
func (m *ModeMachine) HasUnsavedChanges() bool {
	return m.mode == ModeCreate || m.mode == ModeEdit
}

// SaveAction returns the variant used by the next save in Create.
func (m *ModeMachine) SaveAction() enums.SaveAction {
	return m.saveAction
}

// SelectSaveAction changes the variant on the Create selector.
func (m *ModeMachine) SelectSaveAction(action enums.SaveAction) error {
	if !action.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown save action %q", action)
	}
	if m.mode != ModeCreate {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "save variants are only offered in %s mode", ModeCreate)
	}
	m.saveAction = action
	return nil
}

// Affordance derives the primary action from the current mode on every call.
func (m *ModeMachine) Affordance() Affordance {
	switch m.mode {
	case ModeCreate:
		return Affordance{
			Kind:     AffordanceSaveSelector,
			Label:    "Add",
			Options:  enums.SaveActions(),
			Selected: m.saveAction,
		}
	case ModeView:
		return Affordance{Kind: AffordanceSingle, Label: "OK"}
	case ModeEdit:
		return Affordance{Kind: AffordanceSingle, Label: "Update"}
	default:
		return Affordance{Kind: AffordanceNone}
	}
}
