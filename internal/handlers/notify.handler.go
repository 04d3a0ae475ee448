package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/fasthttp/router"
	gateway "github.com/rumahkitanet/wa-notify/internal/gateways"
	"github.com/rumahkitanet/wa-notify/internal/model"
	"github.com/rumahkitanet/wa-notify/internal/services"
	xhttp "github.com/rumahkitanet/wa-notify/pkg/http"
)

type NotifyService interface {
	ListNotices(ctx context.Context, activeOnly bool) ([]*model.NetworkNotice, error)
	GetNotice(ctx context.Context, id int64) (*model.NetworkNotice, error)
	ListCustomers(ctx context.Context, activeOnly bool, odp string) ([]*model.Customer, error)
	SendNotification(ctx context.Context, req model.SendNotificationRequest) (*model.DispatchSummary, error)
	SendCustom(ctx context.Context, req model.SendCustomMessageRequest) (*model.DispatchSummary, error)
	SendByODP(ctx context.Context, odp string, req model.SendNotificationRequest) (*model.DispatchSummary, error)
	SendToPhone(ctx context.Context, req model.SendToPhoneRequest) gateway.AckResult
}

type NotifyHandler struct {
	svc NotifyService
}

func RegisterNotifyRoutes(e *router.Group, h *NotifyHandler) {
	e.GET("/notices", h.ListNotices)
	e.GET("/notices/{id}", h.GetNotice)
	e.GET("/customers", h.ListCustomers)
	e.POST("/send/notification", h.SendNotification)
	e.POST("/send/custom", h.SendCustom)
	e.POST("/send/phone", h.SendToPhone)
	e.POST("/send/by-odp/{odp}", h.SendByODP)
}

func NewNotifyHandler(svc NotifyService) *NotifyHandler {
	return &NotifyHandler{
		svc: svc,
	}
}

/* --------------------------------- Routes ----------------------------------- */

func (h *NotifyHandler) ListNotices(ctx *xhttp.RequestCtx) {
	notices, err := h.svc.ListNotices(ctx, boolQuery(ctx, "active_only", true))
	if err != nil {
		writeError(ctx, xhttp.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(ctx, xhttp.StatusOK, notices)
}

func (h *NotifyHandler) GetNotice(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid notice id")
		return
	}

	notice, err := h.svc.GetNotice(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, notice)
}

func (h *NotifyHandler) ListCustomers(ctx *xhttp.RequestCtx) {
	customers, err := h.svc.ListCustomers(ctx, boolQuery(ctx, "active_only", true), query(ctx, "odp"))
	if err != nil {
		writeError(ctx, xhttp.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(ctx, xhttp.StatusOK, customers)
}

func (h *NotifyHandler) SendNotification(ctx *xhttp.RequestCtx) {
	var req model.SendNotificationRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	summary, err := h.svc.SendNotification(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, summary)
}

func (h *NotifyHandler) SendCustom(ctx *xhttp.RequestCtx) {
	var req model.SendCustomMessageRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.svc.SendCustom(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, summary)
}

// SendToPhone returns the gateway acknowledgement as-is. An invalid phone is
// a failed acknowledgement, not an HTTP error.
func (h *NotifyHandler) SendToPhone(ctx *xhttp.RequestCtx) {
	var req model.SendToPhoneRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}

	writeJSON(ctx, xhttp.StatusOK, h.svc.SendToPhone(ctx, req))
}

func (h *NotifyHandler) SendByODP(ctx *xhttp.RequestCtx) {
	odp, ok := ctx.UserValue("odp").(string)
	if !ok || odp == "" {
		writeError(ctx, xhttp.StatusBadRequest, "odp is required")
		return
	}

	var req model.SendNotificationRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	summary, err := h.svc.SendByODP(ctx, odp, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, summary)
}

/* -------------------------------- helpers ---------------------------------- */

func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, services.ErrNoticeNotFound), errors.Is(err, services.ErrNoActiveNotice):
		writeError(ctx, xhttp.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrMessageRequired):
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
	default:
		writeError(ctx, xhttp.StatusInternalServerError, err.Error())
	}
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

// boolQuery reads a boolean query parameter, falling back to def when the
// parameter is absent or unparseable.
func boolQuery(ctx *xhttp.RequestCtx, key string, def bool) bool {
	v := query(ctx, key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func pathInt64(ctx *xhttp.RequestCtx, name string) (int64, error) {
	s, _ := ctx.UserValue(name).(string)
	return strconv.ParseInt(s, 10, 64)
}
