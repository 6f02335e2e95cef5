package enums

import (
	"fmt"
	"strconv"
	"strings"
)

// DocumentStatus is the header status of a tracking document. The numeric values are
// persisted as-is.
type DocumentStatus int16

const (
	DocumentStatusOpen    DocumentStatus = 0
	DocumentStatusClosed  DocumentStatus = 1
	DocumentStatusPending DocumentStatus = 2
)

var validDocumentStatuses = []DocumentStatus{
	DocumentStatusOpen,
	DocumentStatusClosed,
	DocumentStatusPending,
}

var documentStatusNames = map[DocumentStatus]string{
	DocumentStatusOpen:    "open",
	DocumentStatusClosed:  "closed",
	DocumentStatusPending: "pending",
}

// String implements fmt.Stringer.
func (s DocumentStatus) String() string {
	if name, ok := documentStatusNames[s]; ok {
		return name
	}
	return strconv.Itoa(int(s))
}

// IsValid reports whether the value is a known DocumentStatus.
func (s DocumentStatus) IsValid() bool {
	for _, candidate := range validDocumentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDocumentStatus accepts either the status name or its numeric value.
func ParseDocumentStatus(value string) (DocumentStatus, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validDocumentStatuses {
		if candidate.String() == trimmed || strconv.Itoa(int(candidate)) == trimmed {
			return candidate, nil
		}
	}
	return 0, fmt.Errorf("invalid document status %q", value)
}
