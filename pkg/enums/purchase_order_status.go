package enums

import "fmt"

// PurchaseOrderStatus is the document status of a source purchase order.
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusOpen   PurchaseOrderStatus = "O"
	PurchaseOrderStatusClosed PurchaseOrderStatus = "C"
)

var validPurchaseOrderStatuses = []PurchaseOrderStatus{
	PurchaseOrderStatusOpen,
	PurchaseOrderStatusClosed,
}

// String implements fmt.Stringer.
func (p PurchaseOrderStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PurchaseOrderStatus.
func (p PurchaseOrderStatus) IsValid() bool {
	for _, candidate := range validPurchaseOrderStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// DocumentStatus maps the purchase order status onto the tracking header status.
// Anything that is neither open nor closed is tracked as pending.
func (p PurchaseOrderStatus) DocumentStatus() DocumentStatus {
	switch p {
	case PurchaseOrderStatusOpen:
		return DocumentStatusOpen
	case PurchaseOrderStatusClosed:
		return DocumentStatusClosed
	default:
		return DocumentStatusPending
	}
}

// ParsePurchaseOrderStatus converts raw input into a PurchaseOrderStatus.
func ParsePurchaseOrderStatus(value string) (PurchaseOrderStatus, error) {
	for _, candidate := range validPurchaseOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid purchase order status %q", value)
}
