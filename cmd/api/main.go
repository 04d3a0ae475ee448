package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rumahkitanet/wa-notify/internal/config"
	gateway "github.com/rumahkitanet/wa-notify/internal/gateways"
	"github.com/rumahkitanet/wa-notify/internal/handlers"
	"github.com/rumahkitanet/wa-notify/internal/repository"
	"github.com/rumahkitanet/wa-notify/internal/services"
	xhttp "github.com/rumahkitanet/wa-notify/pkg/http"
	"github.com/rumahkitanet/wa-notify/pkg/logger"
	"github.com/rumahkitanet/wa-notify/pkg/pg"
	"github.com/rumahkitanet/wa-notify/pkg/prom"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	// transport
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.CORSMiddleware(config.Get().CORSOrigin))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	// no global timeout middleware: bulk dispatch holds the request open for
	// the whole paced gateway batch
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	wa, err := gateway.NewClient(&gateway.Config{
		BaseURL:        config.Get().WaGatewayURL,
		RequestTimeout: time.Duration(config.Get().WaRequestTimeoutMs) * time.Millisecond,
		BulkDelay:      time.Duration(config.Get().WaBulkDelayMs) * time.Millisecond,
	})
	if err != nil {
		logger.Error("failed creating whatsapp gateway client", "error", err)
		return
	}

	if err := prom.Create(config.Get().PromNamespace); err != nil {
		logger.Error("failed registering metrics", "error", err)
		return
	}

	statusCache := gateway.NewStatusCache()
	probeGateway(wa, statusCache)

	customerRepo := repository.NewCustomerRepository(db)
	noticeRepo := repository.NewNoticeRepository(db)

	// services
	notifyService := services.NewNotifyService(customerRepo, noticeRepo, wa)

	// handlers
	notifyHandler := handlers.NewNotifyHandler(notifyService)
	whatsappHandler := handlers.NewWhatsAppHandler(wa, statusCache)
	healthHandler := handlers.NewHealthHandler(wa, statusCache)

	handlers.RegisterHealthRoutes(s.Router, healthHandler)
	s.Router.GET("/metrics", prom.MetricsHandler())

	g := s.Router.Group("/api")
	handlers.RegisterNotifyRoutes(g, notifyHandler)
	handlers.RegisterWhatsAppRoutes(g, whatsappHandler)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, os.Kill)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	logger.Info("wa-notify api started",
		"addr", config.Get().HttpListenAddr,
		"gateway", config.Get().WaGatewayURL,
		"version", version,
		"commit", commit,
		"built", date,
	)

	select {
	case <-c:
		s.Shutdown()
	}
}

// probeGateway checks the WhatsApp session once at boot so the operator sees
// the login state in the startup log instead of discovering it on the first
// dispatch.
func probeGateway(wa *gateway.Client, cache *gateway.StatusCache) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	st := wa.Status(ctx)
	cache.Update(st)

	switch {
	case st.Ready:
		logger.Info("WhatsApp terhubung sebagai " + st.Phone)
	case st.HasQR:
		logger.Info("WhatsApp Gateway siap. Scan QR code di /api/whatsapp/qr")
	default:
		logger.Warn("WhatsApp Gateway belum tersedia, notifications will fail until it is up",
			"gateway", wa.BaseURL(),
			"error", st.Error,
		)
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
