package handlers

import (
	"context"
	"fmt"

	"github.com/fasthttp/router"
	gateway "github.com/rumahkitanet/wa-notify/internal/gateways"
	xhttp "github.com/rumahkitanet/wa-notify/pkg/http"
)

type GatewayControlService interface {
	Status(ctx context.Context) gateway.StatusResult
	QR(ctx context.Context) gateway.QRResult
	Restart(ctx context.Context) gateway.AckResult
	Logout(ctx context.Context) gateway.AckResult
}

// WhatsAppHandler exposes the gateway session controls. Every call that
// touches /status also refreshes the shared status cache, the same cell the
// health endpoint reports from.
type WhatsAppHandler struct {
	gw    GatewayControlService
	cache *gateway.StatusCache
}

func RegisterWhatsAppRoutes(e *router.Group, h *WhatsAppHandler) {
	e.GET("/whatsapp/status", h.GetStatus)
	e.GET("/whatsapp/qr", h.GetQR)
	e.POST("/whatsapp/connect", h.Connect)
	e.POST("/whatsapp/restart", h.Restart)
	e.POST("/whatsapp/logout", h.Logout)
}

func NewWhatsAppHandler(gw GatewayControlService, cache *gateway.StatusCache) *WhatsAppHandler {
	return &WhatsAppHandler{
		gw:    gw,
		cache: cache,
	}
}

type statusResponse struct {
	Connected   bool   `json:"connected"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Message     string `json:"message"`
}

type connectResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *WhatsAppHandler) GetStatus(ctx *xhttp.RequestCtx) {
	st := h.gw.Status(ctx)
	h.cache.Update(st)

	var message string
	switch {
	case st.Ready:
		message = fmt.Sprintf("WhatsApp terhubung sebagai %s", st.Phone)
	case st.HasQR:
		message = "WhatsApp belum login. Scan QR code di /api/whatsapp/qr"
	case st.Error != "":
		message = st.Error
	default:
		message = "Menunggu WhatsApp Gateway..."
	}

	writeJSON(ctx, xhttp.StatusOK, statusResponse{
		Connected:   st.Ready,
		PhoneNumber: st.Phone,
		Message:     message,
	})
}

// GetQR hands the gateway's QR payload through untouched so the login page
// keeps working whatever encoding the gateway uses.
func (h *WhatsAppHandler) GetQR(ctx *xhttp.RequestCtx) {
	qr := h.gw.QR(ctx)
	if qr.Error != "" {
		writeError(ctx, xhttp.StatusOK, qr.Error)
		return
	}
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(xhttp.StatusOK)
	ctx.Response.SetBodyRaw(qr.Payload)
}

func (h *WhatsAppHandler) Connect(ctx *xhttp.RequestCtx) {
	st := h.gw.Status(ctx)
	h.cache.Update(st)

	resp := connectResponse{}
	switch {
	case st.Ready:
		resp.Success = true
		resp.Message = fmt.Sprintf("WhatsApp terhubung sebagai %s", st.Phone)
	case st.HasQR:
		resp.Message = "WhatsApp belum login. Silakan scan QR code di /api/whatsapp/qr"
	case st.Error != "":
		resp.Message = st.Error
	default:
		resp.Message = "WhatsApp Gateway tidak tersedia"
	}

	writeJSON(ctx, xhttp.StatusOK, resp)
}

func (h *WhatsAppHandler) Restart(ctx *xhttp.RequestCtx) {
	writeJSON(ctx, xhttp.StatusOK, h.gw.Restart(ctx))
}

func (h *WhatsAppHandler) Logout(ctx *xhttp.RequestCtx) {
	writeJSON(ctx, xhttp.StatusOK, h.gw.Logout(ctx))
}
