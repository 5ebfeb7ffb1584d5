package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/aikocorp/aiko-events-go/aiko"
	aikofasthttp "github.com/aikocorp/aiko-events-go/fasthttp"
	"github.com/aikocorp/aiko-events-go/nethttp"
	"github.com/aikocorp/aiko-events-go/transport"
)

const (
	envMonitorURL = "AIKO_MONITOR_URL"
	envToken      = "AIKO_MONITOR_TOKEN"
)

// GlobalFlags are shared by every subcommand.
type GlobalFlags struct {
	MonitorURL string
	Token      string
	Transport  string
	EnvFile    string
	Redact     bool
	Debug      bool
}

// NewRootCmd builds the aiko-event command tree.
func NewRootCmd() *cobra.Command {
	flags := &GlobalFlags{}
	rootCmd := &cobra.Command{
		Use:           "aiko-event",
		Short:         "Report task status events to an Aiko monitor",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&flags.MonitorURL, "url", "", "Monitor base URL (default $"+envMonitorURL+")")
	rootCmd.PersistentFlags().StringVar(&flags.Token, "token", "", "API token (default $"+envToken+")")
	rootCmd.PersistentFlags().StringVar(&flags.Transport, "transport", "nethttp", "HTTP transport: nethttp or fasthttp")
	rootCmd.PersistentFlags().StringVar(&flags.EnvFile, "env-file", "", "Load environment variables from a dotenv file")
	rootCmd.PersistentFlags().BoolVar(&flags.Redact, "redact", false, "Mask sensitive keys in --data before sending")
	rootCmd.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(NewSendCmd(flags, aiko.StatusOK))
	rootCmd.AddCommand(NewSendCmd(flags, aiko.StatusWarn))
	rootCmd.AddCommand(NewSendCmd(flags, aiko.StatusError))
	rootCmd.AddCommand(NewVersionCmd())
	return rootCmd
}

// NewClient resolves configuration from flags and environment.
func (flags *GlobalFlags) NewClient() (*aiko.Client, *zap.Logger, error) {
	if flags.EnvFile != "" {
		if err := godotenv.Load(flags.EnvFile); err != nil {
			return nil, nil, fmt.Errorf("load env file: %w", err)
		}
	}

	monitorURL := flags.MonitorURL
	if monitorURL == "" {
		monitorURL = os.Getenv(envMonitorURL)
	}
	token := flags.Token
	if token == "" {
		token = os.Getenv(envToken)
	}

	logger := zap.NewNop()
	if flags.Debug {
		dev, err := zap.NewDevelopment()
		if err != nil {
			return nil, nil, fmt.Errorf("create logger: %w", err)
		}
		logger = dev
	}

	sender, err := newSender(flags.Transport)
	if err != nil {
		return nil, nil, err
	}

	client, err := aiko.New(aiko.Config{
		MonitorURL:    monitorURL,
		Token:         token,
		Sender:        sender,
		Logger:        logger,
		RedactPayload: flags.Redact,
	})
	if err != nil {
		return nil, nil, err
	}
	return client, logger, nil
}

func newSender(name string) (transport.Sender, error) {
	switch name {
	case "", "nethttp":
		return nethttp.New(nil), nil
	case "fasthttp":
		return aikofasthttp.New(&fasthttp.Client{Name: "aiko-event"}), nil
	default:
		return nil, fmt.Errorf("unknown transport %q, expected nethttp or fasthttp", name)
	}
}
