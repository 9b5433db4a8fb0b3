package cmd

import (
	"context"
	"fmt"
	"go/types"
	"time"

	"github.com/spf13/cobra"
	"github.com/stellar/go-stellar-sdk/support/config"
	"github.com/stellar/go-stellar-sdk/support/log"

	cmdUtils "github.com/stellar/stellar-verify-sender/cmd/utils"
	"github.com/stellar/stellar-verify-sender/internal/crashtracker"
	"github.com/stellar/stellar-verify-sender/internal/monitor"
	"github.com/stellar/stellar-verify-sender/internal/serve/validators"
	"github.com/stellar/stellar-verify-sender/internal/verify"
)

type VerifyCommand struct{}

type VerifyServiceInterface interface {
	GetVerifySender(opts cmdUtils.TwilioVerifyOptions, monitorService monitor.MonitorServiceInterface) (verify.VerifySenderInterface, error)
	GetCrashTrackerClient(ctx context.Context, opts crashtracker.CrashTrackerOptions) (crashtracker.CrashTrackerClient, error)
}

type VerifyService struct{}

var _ VerifyServiceInterface = (*VerifyService)(nil)

func (s *VerifyService) GetVerifySender(opts cmdUtils.TwilioVerifyOptions, monitorService monitor.MonitorServiceInterface) (verify.VerifySenderInterface, error) {
	return verify.NewVerifySender(opts.VerifySenderOptions(monitorService))
}

func (s *VerifyService) GetCrashTrackerClient(ctx context.Context, opts crashtracker.CrashTrackerOptions) (crashtracker.CrashTrackerClient, error) {
	return crashtracker.GetClient(ctx, opts)
}

// verifyCommandDeps are resolved by the verify command and shared with its subcommands.
type verifyCommandDeps struct {
	sender             verify.VerifySenderInterface
	crashTrackerClient crashtracker.CrashTrackerClient
}

func (c *VerifyCommand) Command(verifyService VerifyServiceInterface, monitorService monitor.MonitorServiceInterface) *cobra.Command {
	twilioOpts := cmdUtils.TwilioVerifyOptions{}
	configOpts := config.ConfigOptions(cmdUtils.TwilioVerifyConfigOptions(&twilioOpts))
	deps := &verifyCommandDeps{}

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Twilio Verify related commands",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmdUtils.PropagatePersistentPreRun(cmd, args)
			ctx := cmd.Context()

			configOpts.Require()
			err := configOpts.SetValues()
			if err != nil {
				log.Ctx(ctx).Fatalf("Error setting values of config options: %s", err.Error())
			}
			if err = twilioOpts.ValidateFlags(); err != nil {
				log.Ctx(ctx).Fatalf("Error validating Twilio Verify options: %s", err.Error())
			}

			if err = monitorService.Start(globalOptions.MetricOptions()); err != nil {
				log.Ctx(ctx).Fatalf("Error creating monitor service: %s", err.Error())
			}

			crashTrackerOptions := crashtracker.CrashTrackerOptions{Tags: map[string]string{"command": cmd.Name()}}
			globalOptions.PopulateCrashTrackerOptions(&crashTrackerOptions)
			deps.crashTrackerClient, err = verifyService.GetCrashTrackerClient(ctx, crashTrackerOptions)
			if err != nil {
				log.Ctx(ctx).Fatalf("Error creating crash tracker client: %s", err.Error())
			}

			deps.sender, err = verifyService.GetVerifySender(twilioOpts, monitorService)
			if err != nil {
				log.Ctx(ctx).Fatalf("Error creating verify sender: %s", err.Error())
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			err := cmd.Help()
			if err != nil {
				log.Ctx(cmd.Context()).Fatalf("Error calling help command: %s", err.Error())
			}
		},
	}
	err := configOpts.Init(verifyCmd)
	if err != nil {
		log.Fatalf("Error initializing verifyCmd config option: %s", err.Error())
	}

	verifyCmd.AddCommand(c.sendCommand(deps))
	verifyCmd.AddCommand(c.approveCommand(deps))

	return verifyCmd
}

func (c *VerifyCommand) sendCommand(deps *verifyCommandDeps) *cobra.Command {
	req := validators.SendVerificationRequest{}
	var channel verify.Channel
	configOpts := config.ConfigOptions{
		{
			Name:      "phone-number",
			Usage:     "The phone number that will receive the verification code, in E.164",
			OptType:   types.String,
			ConfigKey: &req.PhoneNumber,
			Required:  true,
		},
		{
			Name:      "code",
			Usage:     "The verification code to deliver, between 4 and 10 digits",
			OptType:   types.String,
			ConfigKey: &req.Code,
			Required:  true,
		},
		{
			Name:           "channel",
			Usage:          `The delivery channel. Options: "sms", "call"`,
			OptType:        types.String,
			CustomSetValue: cmdUtils.SetConfigOptionVerificationChannel,
			ConfigKey:      &channel,
			FlagDefault:    string(verify.ChannelSMS),
			Required:       true,
		},
		{
			Name:      "client-type",
			Usage:     `A hint of the requesting client, e.g. "android-2021-03". Android clients get the app hash appended.`,
			OptType:   types.String,
			ConfigKey: &req.ClientType,
			Required:  false,
		},
		{
			Name:      "locales",
			Usage:     `The preferred languages of the user, in Accept-Language format, e.g. "pt-BR,pt;q=0.9,en;q=0.5"`,
			OptType:   types.String,
			ConfigKey: &req.Locales,
			Required:  false,
		},
	}

	sendCmd := &cobra.Command{
		Use:          "send",
		Short:        "Send a verification code and print the verification sid",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmdUtils.PropagatePersistentPreRun(cmd, args)

			configOpts.Require()
			err := configOpts.SetValues()
			if err != nil {
				log.Ctx(cmd.Context()).Fatalf("Error setting values of config options: %s", err.Error())
			}
			req.Channel = string(channel)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			defer deps.crashTrackerClient.FlushEvents(2 * time.Second)

			v := validators.NewVerificationValidator()
			vr := v.ValidateSendRequest(&req)
			if v.HasErrors() {
				return fmt.Errorf("invalid verification request: %v", v.Errors)
			}

			result := deps.sender.SendCode(ctx, vr)
			sid, ok := result.VerificationSID()
			if !ok {
				err := sendFailureError(result)
				deps.crashTrackerClient.LogAndReportErrors(ctx, err, "sending verification code")
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), sid)
			return nil
		},
	}
	err := configOpts.Init(sendCmd)
	if err != nil {
		log.Fatalf("Error initializing a sendCmd option: %s", err.Error())
	}

	return sendCmd
}

func sendFailureError(result verify.VerificationResult) error {
	switch result.Kind {
	case verify.ResultKindTransportError:
		return fmt.Errorf("verification request could not be delivered: %w", result.Err)
	case verify.ResultKindFailure:
		vr := verify.VerifyResponse{Failure: result.Failure}
		return fmt.Errorf("verification request was rejected with code=%d status=%d", vr.FailureErrorCode(), vr.FailureStatusCode())
	default:
		return fmt.Errorf("verification response did not include a verification sid")
	}
}

func (c *VerifyCommand) approveCommand(deps *verifyCommandDeps) *cobra.Command {
	var verificationSID, userAgent string
	req := validators.ApproveVerificationRequest{}
	configOpts := config.ConfigOptions{
		{
			Name:      "verification-sid",
			Usage:     "The sid of the verification to mark as approved",
			OptType:   types.String,
			ConfigKey: &verificationSID,
			Required:  true,
		},
		{
			Name:      "user-agent",
			Usage:     "The user agent of the client that completed the verification, used to tag the metrics by platform",
			OptType:   types.String,
			ConfigKey: &userAgent,
			Required:  false,
		},
		{
			Name:      "context",
			Usage:     `Where the verification was completed, e.g. "registration"`,
			OptType:   types.String,
			ConfigKey: &req.Context,
			Required:  false,
		},
	}

	approveCmd := &cobra.Command{
		Use:          "approve",
		Short:        "Report a verification as approved to Twilio",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmdUtils.PropagatePersistentPreRun(cmd, args)

			configOpts.Require()
			err := configOpts.SetValues()
			if err != nil {
				log.Ctx(cmd.Context()).Fatalf("Error setting values of config options: %s", err.Error())
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			defer deps.crashTrackerClient.FlushEvents(2 * time.Second)

			v := validators.NewVerificationValidator()
			v.ValidateApproveRequest(verificationSID, &req)
			if v.HasErrors() {
				return fmt.Errorf("invalid approval request: %v", v.Errors)
			}

			if !deps.sender.ReportVerificationSucceeded(ctx, verificationSID, userAgent, req.Context) {
				deps.crashTrackerClient.LogAndReportMessages(ctx, fmt.Sprintf("verification %s was not approved", verificationSID))
				return fmt.Errorf("verification %s was not approved", verificationSID)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "approved")
			return nil
		},
	}
	err := configOpts.Init(approveCmd)
	if err != nil {
		log.Fatalf("Error initializing an approveCmd option: %s", err.Error())
	}

	return approveCmd
}
