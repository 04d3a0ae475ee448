package model

import "errors"

// Recipient is one dispatch target handed to the gateway.
type Recipient struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
	ID    int64  `json:"id"`
}

// SendResult is the per-recipient outcome of one dispatch request. Produced
// fresh per request, never persisted.
type SendResult struct {
	Phone        string `json:"phone"`
	CustomerName string `json:"customer_name"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
}

// DispatchSummary aggregates one dispatch request. SkippedCount covers
// recipients rejected before the gateway call (invalid or zero phone number),
// FailedCount covers gateway-reported failures.
type DispatchSummary struct {
	Success        bool         `json:"success"`
	Message        string       `json:"message"`
	DispatchID     string       `json:"dispatch_id"`
	TotalCustomers int          `json:"total_customers"`
	SentCount      int          `json:"sent_count"`
	FailedCount    int          `json:"failed_count"`
	SkippedCount   int          `json:"skipped_count"`
	Results        []SendResult `json:"results"`
}

// SendNotificationRequest drives /api/send/notification and
// /api/send/by-odp/{odp}. All fields are optional; nil NoticeID means
// "latest active notice", empty CustomerIDs means "all active customers".
type SendNotificationRequest struct {
	NoticeID      *int64  `json:"notice_id"`
	CustomerIDs   []int64 `json:"customer_ids"`
	CustomMessage string  `json:"custom_message"`
}

type SendCustomMessageRequest struct {
	Message     string  `json:"message"`
	CustomerIDs []int64 `json:"customer_ids"`
}

func (r SendCustomMessageRequest) Validate() error {
	if r.Message == "" {
		return errors.New("message is required")
	}
	return nil
}

type SendToPhoneRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (r SendToPhoneRequest) Validate() error {
	if r.Phone == "" {
		return errors.New("phone is required")
	}
	if r.Message == "" {
		return errors.New("message is required")
	}
	return nil
}
