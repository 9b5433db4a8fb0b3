package cmd

import (
	"go/types"

	"github.com/spf13/cobra"
	"github.com/stellar/go-stellar-sdk/support/config"
	"github.com/stellar/go-stellar-sdk/support/log"

	cmdUtils "github.com/stellar/stellar-verify-sender/cmd/utils"
	"github.com/stellar/stellar-verify-sender/internal/crashtracker"
	"github.com/stellar/stellar-verify-sender/internal/monitor"
	"github.com/stellar/stellar-verify-sender/internal/serve"
	"github.com/stellar/stellar-verify-sender/internal/verify"
)

type ServeCommand struct{}

type ServerServiceInterface interface {
	StartServe(opts serve.ServeOptions, httpServer serve.HTTPServerInterface)
	StartMetricsServe(opts serve.MetricsServeOptions, httpServer serve.HTTPServerInterface)
}

type ServerService struct{}

// Making sure that ServerService implements ServerServiceInterface
var _ ServerServiceInterface = (*ServerService)(nil)

func (s *ServerService) StartServe(opts serve.ServeOptions, httpServer serve.HTTPServerInterface) {
	err := serve.Serve(opts, httpServer)
	if err != nil {
		log.Fatalf("Error starting server: %s", err.Error())
	}
}

func (s *ServerService) StartMetricsServe(opts serve.MetricsServeOptions, httpServer serve.HTTPServerInterface) {
	err := serve.MetricsServe(opts, httpServer)
	if err != nil {
		log.Fatalf("Error starting metrics server: %s", err.Error())
	}
}

func (c *ServeCommand) Command(serverService ServerServiceInterface, monitorService monitor.MonitorServiceInterface) *cobra.Command {
	serveOpts := serve.ServeOptions{}
	metricsServeOpts := serve.MetricsServeOptions{}
	twilioOpts := cmdUtils.TwilioVerifyOptions{}
	crashTrackerOptions := crashtracker.CrashTrackerOptions{}

	configOpts := config.ConfigOptions{
		{
			Name:        "port",
			Usage:       "Port where the server will be listening on",
			OptType:     types.Int,
			ConfigKey:   &serveOpts.Port,
			FlagDefault: 8000,
			Required:    true,
		},
		{
			Name:        "metrics-port",
			Usage:       "Port where the metrics server will be listening on",
			OptType:     types.Int,
			ConfigKey:   &metricsServeOpts.Port,
			FlagDefault: 8002,
			Required:    true,
		},
		{
			Name:        "rate-limit-per-minute",
			Usage:       "Maximum number of verification requests accepted from a single IP address per minute",
			OptType:     types.Int,
			ConfigKey:   &serveOpts.RateLimitPerMinute,
			FlagDefault: serve.DefaultRateLimitPerMinute,
			Required:    false,
		},
		{
			Name:        "trust-proxy-headers",
			Usage:       "Take the client IP from the X-Forwarded-For and X-Real-IP headers. Only enable it behind a proxy that sets them",
			OptType:     types.Bool,
			ConfigKey:   &serveOpts.TrustProxyHeaders,
			FlagDefault: false,
			Required:    false,
		},
		{
			Name:           "cors-allowed-origins",
			Usage:          `Origins allowed to call the API from a browser, separated by ",". CORS is disabled when empty.`,
			OptType:        types.String,
			CustomSetValue: cmdUtils.SetConfigOptionCorsAllowedOrigins,
			ConfigKey:      &serveOpts.CorsAllowedOrigins,
			Required:       false,
		},
	}
	configOpts = append(configOpts, cmdUtils.TwilioVerifyConfigOptions(&twilioOpts)...)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Verify Sender API",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmdUtils.PropagatePersistentPreRun(cmd, args)

			// Validate & ingest input parameters
			configOpts.Require()
			err := configOpts.SetValues()
			if err != nil {
				log.Fatalf("Error setting values of config options: %s", err.Error())
			}
			if err = twilioOpts.ValidateFlags(); err != nil {
				log.Fatalf("Error validating Twilio Verify options: %s", err.Error())
			}

			// Initializing monitor service
			err = monitorService.Start(globalOptions.MetricOptions())
			if err != nil {
				log.Fatalf("Error creating monitor service: %s", err.Error())
			}

			// Inject crash tracker options dependencies
			crashTrackerOptions.Tags = map[string]string{"service": serve.ServiceID}
			globalOptions.PopulateCrashTrackerOptions(&crashTrackerOptions)

			// Inject server dependencies
			serveOpts.Environment = globalOptions.Environment
			serveOpts.GitCommit = globalOptions.GitCommit
			serveOpts.Version = globalOptions.Version
			serveOpts.MonitorService = monitorService

			// Inject metrics server dependencies
			metricsServeOpts.MonitorService = monitorService
			metricsServeOpts.Environment = globalOptions.Environment
			metricsServeOpts.MetricType = globalOptions.MetricType
		},
		Run: func(cmd *cobra.Command, _ []string) {
			ctx := cmd.Context()

			crashTrackerClient, err := crashtracker.GetClient(ctx, crashTrackerOptions)
			if err != nil {
				log.Ctx(ctx).Fatalf("error creating crash tracker client: %s", err.Error())
			}
			serveOpts.CrashTrackerClient = crashTrackerClient

			serveOpts.VerifySender, err = verify.NewVerifySender(twilioOpts.VerifySenderOptions(monitorService))
			if err != nil {
				log.Ctx(ctx).Fatalf("error creating verify sender: %s", err.Error())
			}

			defer crashTrackerClient.Recover()

			// Starting Metrics Server (background job). Sentry hubs are not safe to share across goroutines.
			log.Ctx(ctx).Info("Starting Metrics Server...")
			metricsCrashTracker := crashTrackerClient.Clone()
			go func() {
				defer metricsCrashTracker.Recover()
				serverService.StartMetricsServe(metricsServeOpts, &serve.HTTPServer{})
			}()

			// Starting Application Server
			log.Ctx(ctx).Info("Starting Application Server...")
			serverService.StartServe(serveOpts, &serve.HTTPServer{})
		},
	}
	err := configOpts.Init(cmd)
	if err != nil {
		log.Fatalf("Error initializing a config option: %s", err.Error())
	}

	return cmd
}
