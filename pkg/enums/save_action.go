package enums

import (
	"fmt"
	"strings"
)

// SaveAction is the variant picked on the three-way save selector of a new document.
type SaveAction string

const (
	SaveActionAddNew   SaveAction = "add_new"
	SaveActionAddView  SaveAction = "add_view"
	SaveActionAddClose SaveAction = "add_close"
)

var validSaveActions = []SaveAction{
	SaveActionAddNew,
	SaveActionAddView,
	SaveActionAddClose,
}

// SaveActions lists the selector entries in display order.
func SaveActions() []SaveAction {
	out := make([]SaveAction, len(validSaveActions))
	copy(out, validSaveActions)
	return out
}

// String implements fmt.Stringer.
func (a SaveAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known SaveAction.
func (a SaveAction) IsValid() bool {
	for _, candidate := range validSaveActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseSaveAction converts raw input into a SaveAction.
func ParseSaveAction(value string) (SaveAction, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validSaveActions {
		if string(candidate) == trimmed {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid save action %q", value)
}
