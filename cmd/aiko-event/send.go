package main

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/aikocorp/aiko-events-go/aiko"
)

// SendCmd holds the flags of the ok, warn and error commands.
type SendCmd struct {
	*GlobalFlags

	Status  aiko.Status
	TaskID  int64
	Message string
	Data    string
}

// NewSendCmd creates the command that reports an event with the given status.
func NewSendCmd(flags *GlobalFlags, status aiko.Status) *cobra.Command {
	cmd := &SendCmd{GlobalFlags: flags, Status: status}
	sendCmd := &cobra.Command{
		Use:   string(status),
		Short: fmt.Sprintf("Report a %q event for a task", status),
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			return cmd.Run(cobraCmd.Context(), cobraCmd)
		},
	}

	sendCmd.Flags().Int64Var(&cmd.TaskID, "task-id", 0, "ID of the task being reported")
	sendCmd.Flags().StringVarP(&cmd.Message, "message", "m", "", "Text message")
	sendCmd.Flags().StringVar(&cmd.Data, "data", "", "JSON object sent instead of --message")
	_ = sendCmd.MarkFlagRequired("task-id")
	sendCmd.MarkFlagsMutuallyExclusive("message", "data")
	return sendCmd
}

// Run sends the event and prints the decoded response as JSON.
func (cmd *SendCmd) Run(ctx context.Context, cobraCmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	msg, err := cmd.message()
	if err != nil {
		return err
	}

	client, logger, err := cmd.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	result, err := client.Log(ctx, cmd.TaskID, msg, cmd.Status)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	_, err = fmt.Fprintln(cobraCmd.OutOrStdout(), string(out))
	return err
}

func (cmd *SendCmd) message() (aiko.Message, error) {
	if cmd.Data == "" {
		return aiko.Text(cmd.Message), nil
	}

	value, err := aiko.Decode([]byte(cmd.Data), false)
	if err != nil {
		return nil, fmt.Errorf("parse --data: %w", err)
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parse --data: expected a JSON object, got %T", value)
	}
	return aiko.Structured(obj), nil
}
