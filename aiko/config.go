package aiko

import (
	"errors"
	"time"

	"github.com/aikocorp/aiko-events-go/transport"
	"go.uber.org/zap"
)

// Config describes the monitoring target a Client reports to.
type Config struct {
	MonitorURL string
	Token      string

	// Sender defaults to a net/http sender with a 10s timeout.
	Sender transport.Sender
	Logger *zap.Logger

	// RedactPayload masks sensitive keys and PII in Structured messages
	// before they leave the process.
	RedactPayload bool

	Now func() time.Time
}

// validateConfig only requires a monitor URL to be present. Any scheme is
// accepted since the Sender decides how to reach it.
func validateConfig(monitorURL string) error {
	if monitorURL == "" {
		return errors.New("monitorURL is required")
	}
	return nil
}
