package editor

import (
	"strconv"

	"github.com/xnapps/purchase-tracking/internal/tracking"
	pkgerrors "github.com/xnapps/purchase-tracking/pkg/errors"
)

// Surface is the rendering host. The editor freezes it around multi-step buffer changes
// and pushes a full snapshot once the change is complete.
type Surface interface {
	Freeze(frozen bool)
	Refresh(snapshot Snapshot)
	Notify(notice Notice)
	Close()
}

// CloseChoice is the answer to the unsaved-changes question.
type CloseChoice int

const (
	CloseStay CloseChoice = iota
	CloseSaveThenClose
	CloseDiscard
)

func (c CloseChoice) String() string {
	switch c {
	case CloseSaveThenClose:
		return "save_then_close"
	case CloseDiscard:
		return "discard_and_close"
	default:
		return "stay"
	}
}

// Prompter asks the clerk what to do with unsaved changes.
type Prompter interface {
	ConfirmClose(mode Mode) CloseChoice
}

// DiagnosticLog receives best-effort diagnostic lines. Implementations must not panic;
// *logger.Logger satisfies it.
type DiagnosticLog interface {
	Log(msg string)
}

// NoticeLevel grades a message shown to the clerk.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a short message for the status bar.
type Notice struct {
	Level   NoticeLevel    `json:"level"`
	Message string         `json:"message"`
	Code    pkgerrors.Code `json:"code,omitempty"`
}

// Snapshot is everything the surface needs to render the editor.
type Snapshot struct {
	Mode       Mode            `json:"mode"`
	Header     tracking.Header `json:"header"`
	Lines      []tracking.Line `json:"lines"`
	Columns    []ColumnSpec    `json:"columns"`
	Affordance Affordance      `json:"affordance"`
}

// Picker identifies a choose-from-list control.
type Picker string

const (
	// PickerCounterparty and PickerSourceOrder both list open purchase orders.
	PickerCounterparty  Picker = "counterparty"
	PickerSourceOrder   Picker = "source_order"
	PickerDocument      Picker = "document"
	PickerDisplayNumber Picker = "display_number"
)

// Selection is the payload of a picker event: the chosen entity's field values.
type Selection struct {
	Picker Picker
	Values map[string]string
}

// Keys of the purchase order picker payload.
const (
	ValueID                = "id"
	ValueNumber            = "number"
	ValueCounterpartyCode  = "counterparty_code"
	ValueCounterpartyName  = "counterparty_name"
	ValueExternalReference = "external_reference"
	ValueDate              = "date"
	ValueStatus            = "status"
	ValueDisplayNumber     = "display_number"
)

// SourceOrderSelection builds the payload a purchase order picker emits for order.
func SourceOrderSelection(picker Picker, order tracking.SourceOrder) Selection {
	return Selection{
		Picker: picker,
		Values: map[string]string{
			ValueID:                strconv.FormatInt(order.ID, 10),
			ValueNumber:            strconv.FormatInt(order.Number, 10),
			ValueCounterpartyCode:  order.CounterpartyCode,
			ValueCounterpartyName:  order.CounterpartyName,
			ValueExternalReference: order.ExternalReference,
			ValueDate:              order.Date.Format(tracking.DateLayout),
			ValueStatus:            order.Status.String(),
		},
	}
}

type nopLog struct{}

func (nopLog) Log(string) {}
