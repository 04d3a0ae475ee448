package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	gateway "github.com/rumahkitanet/wa-notify/internal/gateways"
	"github.com/rumahkitanet/wa-notify/internal/model"
	"github.com/rumahkitanet/wa-notify/internal/repository"
	"github.com/rumahkitanet/wa-notify/internal/util"
	"github.com/rumahkitanet/wa-notify/pkg/logger"
	"github.com/rumahkitanet/wa-notify/pkg/prom"
)

var (
	// ErrNoticeNotFound means an explicitly requested notice does not exist.
	ErrNoticeNotFound = errors.New("notice not found")
	// ErrNoActiveNotice means a request relied on the latest-active default
	// and nothing is active.
	ErrNoActiveNotice = errors.New("no active notice")
	// ErrMessageRequired means a by-ODP request supplied neither a notice id
	// nor a custom message.
	ErrMessageRequired = errors.New("notice_id or custom_message is required")
)

// ReasonInvalidPhone marks recipients rejected before the gateway call. The
// dispatch summary counts these as skipped, not failed; the distinction is
// tracked structurally, this string is only the rendered reason.
const ReasonInvalidPhone = "invalid or zero phone number"

type CustomerRepository interface {
	Get(ctx context.Context, id int64) (*model.Customer, error)
	List(ctx context.Context, f model.CustomerFilter) ([]*model.Customer, error)
}

type NoticeRepository interface {
	Get(ctx context.Context, id int64) (*model.NetworkNotice, error)
	List(ctx context.Context, activeOnly bool) ([]*model.NetworkNotice, error)
	LatestActive(ctx context.Context) (*model.NetworkNotice, error)
}

type WhatsAppGateway interface {
	Send(ctx context.Context, phone, message string) gateway.AckResult
	SendBulk(ctx context.Context, recipients []model.Recipient, message string) gateway.BulkResult
}

// NotifyService resolves dispatch requests to a recipient set and a message
// text, then hands the batch to the gateway. Each request performs at most
// one customer query sequence and at most one gateway round trip.
type NotifyService struct {
	customers CustomerRepository
	notices   NoticeRepository
	wa        WhatsAppGateway
}

func NewNotifyService(customers CustomerRepository, notices NoticeRepository, wa WhatsAppGateway) *NotifyService {
	return &NotifyService{
		customers: customers,
		notices:   notices,
		wa:        wa,
	}
}

/* ------------------------------ read paths ------------------------------- */

func (s *NotifyService) ListNotices(ctx context.Context, activeOnly bool) ([]*model.NetworkNotice, error) {
	return s.notices.List(ctx, activeOnly)
}

func (s *NotifyService) GetNotice(ctx context.Context, id int64) (*model.NetworkNotice, error) {
	n, err := s.notices.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoticeNotFound) {
			return nil, ErrNoticeNotFound
		}
		return nil, err
	}
	return n, nil
}

func (s *NotifyService) ListCustomers(ctx context.Context, activeOnly bool, odp string) ([]*model.Customer, error) {
	f := model.CustomerFilter{ActiveOnly: activeOnly}
	if odp != "" {
		f.ODP = &odp
	}
	return s.customers.List(ctx, f)
}

/* ----------------------------- dispatch paths ----------------------------- */

// SendNotification dispatches a notice to its target customers. Without a
// notice_id the latest active notice is used; without customer_ids the target
// set follows the notice's affected_odp list, or every active customer.
func (s *NotifyService) SendNotification(ctx context.Context, req model.SendNotificationRequest) (*model.DispatchSummary, error) {
	notice, err := s.resolveNotice(ctx, req.NoticeID)
	if err != nil {
		return nil, err
	}

	message := req.CustomMessage
	if message == "" {
		message = FormatNoticeMessage(notice)
	}

	filter := model.CustomerFilter{ActiveOnly: true}
	if len(req.CustomerIDs) > 0 {
		filter.IDs = req.CustomerIDs
	} else if odps := notice.AffectedODPList(); len(odps) > 0 {
		filter.ODPIn = odps
	}

	customers, err := s.customers.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return s.dispatchTo(ctx, customers, message, fmt.Sprintf("notice %d", notice.ID)), nil
}

// SendCustom dispatches a verbatim message to the given customers, or to all
// active customers. The gateway substitutes {name}/{nama} placeholders.
func (s *NotifyService) SendCustom(ctx context.Context, req model.SendCustomMessageRequest) (*model.DispatchSummary, error) {
	filter := model.CustomerFilter{ActiveOnly: true}
	if len(req.CustomerIDs) > 0 {
		filter.IDs = req.CustomerIDs
	}

	customers, err := s.customers.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return s.dispatchTo(ctx, customers, req.Message, "custom message"), nil
}

// SendByODP dispatches to the active customers of one ODP. The notice-level
// affected_odp list is ignored here: the path parameter is the target. A
// message source is mandatory, so a request without notice_id must carry a
// custom message; that is validated before any customer query runs.
func (s *NotifyService) SendByODP(ctx context.Context, odp string, req model.SendNotificationRequest) (*model.DispatchSummary, error) {
	var message string
	if req.NoticeID != nil {
		notice, err := s.GetNotice(ctx, *req.NoticeID)
		if err != nil {
			return nil, err
		}
		message = req.CustomMessage
		if message == "" {
			message = FormatNoticeMessage(notice)
		}
	} else {
		if req.CustomMessage == "" {
			return nil, ErrMessageRequired
		}
		message = req.CustomMessage
	}

	customers, err := s.customers.List(ctx, model.CustomerFilter{ActiveOnly: true, ODP: &odp})
	if err != nil {
		return nil, err
	}

	return s.dispatchTo(ctx, customers, message, "odp "+odp), nil
}

// SendToPhone delivers one message to one arbitrary number, bypassing the
// customer store. Used by operators to test the gateway session.
func (s *NotifyService) SendToPhone(ctx context.Context, req model.SendToPhoneRequest) gateway.AckResult {
	if !util.IsValidPhone(req.Phone) {
		return gateway.AckResult{Success: false, Phone: req.Phone, Error: ReasonInvalidPhone}
	}
	return s.wa.Send(ctx, req.Phone, req.Message)
}

// Dispatch partitions recipients by phone validity, forwards the valid subset
// to the gateway in one batch and synthesizes failure rows when the gateway
// reports a batch-level error instead of per-recipient results. Invalid
// recipients come first in the output, keeping their relative order. The
// returned count is the number of skipped (invalid) recipients.
func (s *NotifyService) Dispatch(ctx context.Context, recipients []model.Recipient, message string) ([]model.SendResult, int) {
	if len(recipients) == 0 {
		return []model.SendResult{}, 0
	}

	results := make([]model.SendResult, 0, len(recipients))
	valid := make([]model.Recipient, 0, len(recipients))

	for _, r := range recipients {
		if !util.IsValidPhone(r.Phone) {
			results = append(results, model.SendResult{
				Phone:        r.Phone,
				CustomerName: r.Name,
				Success:      false,
				Error:        ReasonInvalidPhone,
			})
			continue
		}
		valid = append(valid, r)
	}
	skipped := len(results)

	if len(valid) > 0 {
		res := s.wa.SendBulk(ctx, valid, message)
		switch {
		case len(res.Results) > 0:
			results = append(results, res.Results...)
		case res.Error != "":
			for _, r := range valid {
				results = append(results, model.SendResult{
					Phone:        r.Phone,
					CustomerName: r.Name,
					Success:      false,
					Error:        res.Error,
				})
			}
		}
	}

	return results, skipped
}

/* -------------------------------- helpers --------------------------------- */

func (s *NotifyService) resolveNotice(ctx context.Context, noticeID *int64) (*model.NetworkNotice, error) {
	if noticeID != nil {
		return s.GetNotice(ctx, *noticeID)
	}
	n, err := s.notices.LatestActive(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveNotice) {
			return nil, ErrNoActiveNotice
		}
		return nil, err
	}
	return n, nil
}

// dispatchTo runs the bulk dispatch for a resolved customer set and builds
// the summary. An empty customer set short-circuits without a gateway call.
func (s *NotifyService) dispatchTo(ctx context.Context, customers []*model.Customer, message, subject string) *model.DispatchSummary {
	dispatchID := uuid.NewString()

	if len(customers) == 0 {
		logger.Info("dispatch skipped, no target customers", "dispatch_id", dispatchID, "subject", subject)
		return &model.DispatchSummary{
			Success:    true,
			Message:    "no customers to notify",
			DispatchID: dispatchID,
			Results:    []model.SendResult{},
		}
	}

	recipients := make([]model.Recipient, len(customers))
	for i, c := range customers {
		recipients[i] = model.Recipient{Phone: c.Phone, Name: c.Name, ID: c.ID}
	}

	results, skipped := s.Dispatch(ctx, recipients, message)

	sent := 0
	for _, r := range results {
		if r.Success {
			sent++
		}
	}
	failed := len(results) - sent - skipped

	prom.CountDispatchResult(prom.OutcomeSent, sent)
	prom.CountDispatchResult(prom.OutcomeFailed, failed)
	prom.CountDispatchResult(prom.OutcomeSkipped, skipped)

	logger.Info("dispatch processed",
		"dispatch_id", dispatchID,
		"subject", subject,
		"total", len(customers),
		"sent", sent,
		"failed", failed,
		"skipped", skipped,
	)

	return &model.DispatchSummary{
		Success:        true,
		Message:        fmt.Sprintf("notification processed for %d customers", len(customers)),
		DispatchID:     dispatchID,
		TotalCustomers: len(customers),
		SentCount:      sent,
		FailedCount:    failed,
		SkippedCount:   skipped,
		Results:        results,
	}
}
