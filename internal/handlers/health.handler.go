package handlers

import (
	"context"

	"github.com/fasthttp/router"
	gateway "github.com/rumahkitanet/wa-notify/internal/gateways"
	xhttp "github.com/rumahkitanet/wa-notify/pkg/http"
)

type GatewayStatusService interface {
	Status(ctx context.Context) gateway.StatusResult
	BaseURL() string
}

type HealthHandler struct {
	gw    GatewayStatusService
	cache *gateway.StatusCache
}

func RegisterHealthRoutes(r *router.Router, h *HealthHandler) {
	r.GET("/health", h.GetHealth)
}

func NewHealthHandler(gw GatewayStatusService, cache *gateway.StatusCache) *HealthHandler {
	return &HealthHandler{
		gw:    gw,
		cache: cache,
	}
}

type healthResponse struct {
	Status   string               `json:"status"`
	WhatsApp healthWhatsAppStatus `json:"whatsapp"`
}

type healthWhatsAppStatus struct {
	Connected   bool   `json:"connected"`
	PhoneNumber string `json:"phone_number,omitempty"`
	HasQR       bool   `json:"has_qr"`
	Error       string `json:"error,omitempty"`
	GatewayURL  string `json:"gateway_url"`
}

// GetHealth reports process liveness plus the gateway's current session
// state. The API is healthy even when the gateway is down; the body says so.
func (h *HealthHandler) GetHealth(ctx *xhttp.RequestCtx) {
	st := h.gw.Status(ctx)
	h.cache.Update(st)

	writeJSON(ctx, xhttp.StatusOK, healthResponse{
		Status: "healthy",
		WhatsApp: healthWhatsAppStatus{
			Connected:   st.Ready,
			PhoneNumber: st.Phone,
			HasQR:       st.HasQR,
			Error:       st.Error,
			GatewayURL:  h.gw.BaseURL(),
		},
	})
}
