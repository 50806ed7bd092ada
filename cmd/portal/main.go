package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal/internal/gateway"
	"github.com/noah-isme/internship-portal/internal/handler"
	"github.com/noah-isme/internship-portal/internal/middleware"
	"github.com/noah-isme/internship-portal/internal/server"
	"github.com/noah-isme/internship-portal/internal/service"
	"github.com/noah-isme/internship-portal/internal/session"
	"github.com/noah-isme/internship-portal/pkg/config"
	"github.com/noah-isme/internship-portal/pkg/export"
	"github.com/noah-isme/internship-portal/pkg/logger"
	"github.com/noah-isme/internship-portal/pkg/response"
	"github.com/noah-isme/internship-portal/pkg/validation"
	"github.com/noah-isme/internship-portal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	templates, err := response.LoadTemplates(web.Templates(), handler.TemplateFuncs())
	if err != nil {
		logr.Fatal("failed to parse templates", zap.Error(err))
	}

	store, err := session.NewStore(cfg)
	if err != nil {
		logr.Fatal("failed to open session store", zap.Error(err), zap.String("store", cfg.Session.Store))
	}
	defer store.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	validate := validation.New()

	client := gateway.NewClient(gateway.ClientConfig{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
		Logger:  logr,
		Metrics: metrics,
	})
	authGW := gateway.NewAuthGateway(client)
	metadataGW := gateway.NewMetadataGateway(client)
	internshipGW := gateway.NewInternshipGateway(client)
	studentGW := gateway.NewStudentGateway(client)
	teacherGW := gateway.NewTeacherGateway(client)
	reportGW := gateway.NewReportGateway(client)

	sessions := session.NewManager(store, authGW, studentGW, teacherGW, metadataGW, validate, logr, metrics, session.Config{TTL: cfg.Session.TTL})

	guard := service.NewInflightGuard(metrics)
	internshipSvc := service.NewInternshipService(internshipGW, studentGW, reportGW, guard, validate, logr)
	studentSvc := service.NewStudentService(studentGW, internshipGW, metadataGW, guard, validate, logr)
	teacherSvc := service.NewTeacherService(teacherGW, internshipGW, guard, validate, logr)
	reportSvc := service.NewReportService(reportGW, internshipGW, guard, validate, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Internships: internshipGW,
		Students:    studentGW,
		Teachers:    teacherGW,
		Reports:     reportGW,
		Metrics:     metrics,
		Logger:      logr,
	})
	exportSvc := service.NewExportService(internshipSvc, service.ExportConfig{Title: cfg.Export.Title}, logr, export.NewCSVExporter(), export.NewPDFExporter())

	cookie := middleware.Cookie{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure}
	if cfg.Session.CSRFSecret == "" {
		logr.Warn("SESSION_CSRF_SECRET is empty, using a random key")
	}
	csrfKey, err := middleware.CSRFKey(cfg.Session.CSRFSecret)
	if err != nil {
		logr.Fatal("failed to derive csrf key", zap.Error(err))
	}
	metadataHandler := handler.NewMetadataHandler(metadataGW, logr)

	r := server.NewRouter(server.Handlers{
		Auth:      handler.NewAuthHandler(sessions, metadataGW, cookie, logr),
		Dashboard: handler.NewDashboardHandler(dashboardSvc),
		Internships: handler.NewInternshipHandler(handler.InternshipHandlerParams{
			Internships: internshipSvc,
			Export:      exportSvc,
			Students:    studentSvc,
			Teachers:    teacherSvc,
			Metadata:    metadataGW,
			Logger:      logr,
		}),
		Students: handler.NewStudentHandler(studentSvc, metadataHandler),
		Teachers: handler.NewTeacherHandler(teacherSvc, metadataGW, logr),
		Reports:  handler.NewReportHandler(reportSvc),
		Metadata: metadataHandler,
		Health:   handler.NewHealthHandler(metadataGW, metrics),
	}, server.Options{
		Sessions:       sessions,
		Cookie:         cookie,
		Templates:      templates,
		Static:         http.FS(web.Static()),
		Metrics:        metrics,
		MetricsEnabled: cfg.Metrics,
		CSRFKey:        csrfKey,
		Logger:         logr,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "backend", cfg.Backend.BaseURL, "session_store", cfg.Session.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
