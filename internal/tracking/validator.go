package tracking

import (
	"strings"

	pkgerrors "github.com/xnapps/purchase-tracking/pkg/errors"
)

// Validate checks a document before it is written. Rules run in a fixed order and the
// first violation is returned as a validation error; a nil return means the document
// can be persisted. Only meaningful lines are inspected.
func Validate(header Header, lines []Line) error {
	if strings.TrimSpace(header.CounterpartyCode) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "counterparty code is required").
			WithDetails(map[string]any{"field": "counterparty_code"})
	}

	meaningful := MeaningfulLines(lines)
	if len(meaningful) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one line with a description is required").
			WithDetails(map[string]any{"field": "lines"})
	}

	for _, line := range meaningful {
		if strings.TrimSpace(line.Description) == "" {
			return lineError(line, "description", "line %d: description is required")
		}
	}
	for _, line := range meaningful {
		if strings.TrimSpace(line.Status) == "" {
			return lineError(line, "status", "line %d: status is required")
		}
	}
	for _, line := range meaningful {
		if line.Order <= 0 {
			return lineError(line, "order", "line %d: order must be positive")
		}
	}

	seen := make(map[int]struct{}, len(meaningful))
	for _, line := range meaningful {
		if _, dup := seen[line.Order]; dup {
			return lineError(line, "order", "line %d: order is used by more than one line")
		}
		seen[line.Order] = struct{}{}
	}
	return nil
}

func lineError(line Line, field, format string) error {
	return pkgerrors.Newf(pkgerrors.CodeValidation, format, line.Order).
		WithDetails(map[string]any{"field": field, "line_order": line.Order})
}

// MeaningfulLines drops lines without a description, keeping the input order.
func MeaningfulLines(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, line := range lines {
		if line.Meaningful() {
			out = append(out, line)
		}
	}
	return out
}
