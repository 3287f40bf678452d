package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rmrobinson/trainroute/services/planner"
	"github.com/rmrobinson/trainroute/services/rail"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	portEnvVar                 = "PORT"
	grpcPortEnvVar             = "GRPC_PORT"
	timezoneEnvVar             = "TIMEZONE"
	upstreamURLEnvVar          = "UPSTREAM_URL"
	upstreamAPIKeyEnvVar       = "UPSTREAM_API_KEY"
	upstreamTimeoutEnvVar      = "UPSTREAM_TIMEOUT"
	stationsURLEnvVar          = "STATIONS_URL"
	stationsRefreshEnvVar      = "STATIONS_REFRESH"
	minDepartureGapEnvVar      = "MIN_DEPARTURE_GAP"
	maxArrivalDiffEnvVar       = "MAX_ARRIVAL_DIFF"
	legacyMaxArrivalDiffEnvVar = "LEGACY_MAX_ARRIVAL_DIFF"
	letsEncryptHostEnvVar      = "LETSENCRYPT_HOST"
	debugEnvVar                = "DEBUG"

	shutdownTimeout = time.Second * 15
)

func main() {
	viper.SetEnvPrefix("TRP")
	for _, envVar := range []string{
		portEnvVar,
		grpcPortEnvVar,
		timezoneEnvVar,
		upstreamURLEnvVar,
		upstreamAPIKeyEnvVar,
		upstreamTimeoutEnvVar,
		stationsURLEnvVar,
		stationsRefreshEnvVar,
		minDepartureGapEnvVar,
		maxArrivalDiffEnvVar,
		legacyMaxArrivalDiffEnvVar,
		letsEncryptHostEnvVar,
		debugEnvVar,
	} {
		viper.BindEnv(envVar)
	}
	viper.SetDefault(portEnvVar, 8080)
	viper.SetDefault(grpcPortEnvVar, 10110)
	viper.SetDefault(timezoneEnvVar, planner.DefaultTimezone)
	viper.SetDefault(upstreamURLEnvVar, rail.DefaultBaseURL)
	viper.SetDefault(upstreamTimeoutEnvVar, time.Second*15)
	viper.SetDefault(stationsRefreshEnvVar, "@daily")
	viper.SetDefault(minDepartureGapEnvVar, planner.DefaultMinDepartureGap)
	viper.SetDefault(maxArrivalDiffEnvVar, planner.DefaultMaxArrivalDiff)
	viper.SetDefault(legacyMaxArrivalDiffEnvVar, planner.DefaultMaxArrivalDiff)

	var logger *zap.Logger
	var err error
	if viper.GetBool(debugEnvVar) {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	loc, err := planner.LoadReferenceZone(viper.GetString(timezoneEnvVar))
	if err != nil {
		logger.Fatal("error loading timezone",
			zap.String("timezone", viper.GetString(timezoneEnvVar)),
			zap.Error(err),
		)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthSvc := health.NewServer()
	healthSvc.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	registry := rail.NewRegistry(logger)
	if err := registry.LoadDefault(); err != nil {
		logger.Fatal("error loading bundled station table",
			zap.Error(err),
		)
	}

	stationsURL := viper.GetString(stationsURLEnvVar)
	var refresher *cron.Cron
	if len(stationsURL) > 0 {
		refresh := func() {
			if err := registry.LoadFromURL(ctx, stationsURL); err != nil {
				logger.Warn("error refreshing station table, keeping previous",
					zap.String("url", stationsURL),
					zap.Error(err),
				)
			}
		}
		refresh()

		refresher = cron.New()
		if _, err := refresher.AddFunc(viper.GetString(stationsRefreshEnvVar), refresh); err != nil {
			logger.Fatal("error scheduling station refresh",
				zap.String("schedule", viper.GetString(stationsRefreshEnvVar)),
				zap.Error(err),
			)
		}
		refresher.Start()
	}
	healthSvc.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	client := rail.NewClient(logger,
		registry,
		viper.GetString(upstreamURLEnvVar),
		viper.GetString(upstreamAPIKeyEnvVar),
		viper.GetDuration(upstreamTimeoutEnvVar),
	)
	p := planner.NewPlanner(logger, client, loc)
	api := planner.NewAPI(logger,
		p,
		registry,
		planner.Defaults{
			MinDepartureGapMins: viper.GetInt(minDepartureGapEnvVar),
			MaxArrivalDiffMins:  viper.GetInt(maxArrivalDiffEnvVar),
		},
		planner.Defaults{
			MinDepartureGapMins: viper.GetInt(minDepartureGapEnvVar),
			MaxArrivalDiffMins:  viper.GetInt(legacyMaxArrivalDiffEnvVar),
		},
	)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", viper.GetInt(grpcPortEnvVar)))
	if err != nil {
		logger.Fatal("failed to listen",
			zap.Error(err),
		)
	}
	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSvc)
	go func() {
		logger.Info("listening for health checks",
			zap.String("local_addr", lis.Addr().String()),
		)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Warn("grpc server stopped",
				zap.Error(err),
			)
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", viper.GetInt(portEnvVar)),
		Handler:           api.Handler(),
		ReadHeaderTimeout: time.Second * 5,
		ReadTimeout:       time.Second * 15,
		WriteTimeout:      viper.GetDuration(upstreamTimeoutEnvVar) + time.Second*15,
		IdleTimeout:       time.Second * 60,
	}

	serverErrors := make(chan error, 1)
	letsEncryptHost := viper.GetString(letsEncryptHostEnvVar)
	if len(letsEncryptHost) > 0 {
		certManager := autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(letsEncryptHost),
			Cache:      autocert.DirCache("certs"),
		}
		srv.Addr = ":https"
		srv.TLSConfig = &tls.Config{
			GetCertificate: certManager.GetCertificate,
		}

		// The HTTP listener is used by LetsEncrypt to validate the domain
		go http.ListenAndServe(":http", certManager.HTTPHandler(nil))

		go func() {
			logger.Info("listening for requests",
				zap.String("local_addr", srv.Addr),
				zap.String("host", letsEncryptHost),
			)
			serverErrors <- srv.ListenAndServeTLS("", "")
		}()
	} else {
		go func() {
			logger.Info("listening for requests",
				zap.String("local_addr", srv.Addr),
			)
			serverErrors <- srv.ListenAndServe()
		}()
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed",
				zap.Error(err),
			)
		}
	case sig := <-shutdown:
		logger.Info("shutting down",
			zap.String("signal", sig.String()),
		)
	}

	healthSvc.Shutdown()
	if refresher != nil {
		<-refresher.Stop().Done()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error shutting down http server",
			zap.Error(err),
		)
	}
	grpcServer.GracefulStop()
}
