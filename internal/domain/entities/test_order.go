package entities

import "time"

// TestOrderStatus represents the status of a requested test
type TestOrderStatus string

const (
	TestOrderStatusPending   TestOrderStatus = "Pending"
	TestOrderStatusReady     TestOrderStatus = "Ready For Testing"
	TestOrderStatusTesting   TestOrderStatus = "Testing"
	TestOrderStatusComplete  TestOrderStatus = "Testing Complete"
	TestOrderStatusReported  TestOrderStatus = "Reported"
	TestOrderStatusCancelled TestOrderStatus = "Cancelled"
	TestOrderStatusAbandoned TestOrderStatus = "Abandoned"
)

// PanelRef identifies the panel order a test order belongs to
type PanelRef struct {
	ID           string `json:"id"`
	PanelCode    string `json:"panelCode"`
	PanelName    string `json:"panelName"`
	PanelVersion int    `json:"panelVersion"`
}

// TestOrder is a single requested test as returned flat by the LIMS API
type TestOrder struct {
	ID                   string          `json:"id"`
	AccessionID          string          `json:"accessionId,omitempty"`
	TestID               string          `json:"testId"`
	TestCode             string          `json:"testCode"`
	TestName             string          `json:"testName"`
	Status               TestOrderStatus `json:"status"`
	IsPartOfPanel        bool            `json:"isPartOfPanel"`
	Panel                *PanelRef       `json:"panel"`
	IsStat               bool            `json:"isStat"`
	DueDate              *time.Time      `json:"dueDate,omitempty"`
	CancellationReason   *string         `json:"cancellationReason,omitempty"`
	CancellationComments *string         `json:"cancellationComments,omitempty"`
	CancelledAt          *time.Time      `json:"cancelledAt,omitempty"`
}

// IsCancelled reports whether the order carries cancellation metadata
func (o TestOrder) IsCancelled() bool {
	return o.Status == TestOrderStatusCancelled || o.CancelledAt != nil
}

// PanelOrderGroup is a panel order with its member tests, derived from flat
// test orders for display. It is never persisted.
type PanelOrderGroup struct {
	ID           string      `json:"id"`
	PanelCode    string      `json:"panelCode"`
	PanelName    string      `json:"panelName"`
	PanelVersion int         `json:"panelVersion"`
	TestOrders   []TestOrder `json:"testOrders"`
}

// TestOrderCancellation is the payload for cancelling a test order
type TestOrderCancellation struct {
	Reason   string `json:"reason"`
	Comments string `json:"comments"`
}
