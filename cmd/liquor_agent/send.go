package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Jmoney1214/liquormarketingagent/internal/messaging"
	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Dry-run the messages a campaign plan would send",
	Long:  "Renders email and SMS copy for the first sends of a CampaignPlan JSON file and prints them. Nothing is delivered.",
	RunE:  runSend,
}

var (
	sendPlan   string
	sendMode   string
	sendLimit  int
	sendOutput string
)

func init() {
	sendCmd.Flags().StringVarP(&sendPlan, "plan", "p", "", "Path to input CampaignPlan JSON file (required)")
	sendCmd.Flags().StringVar(&sendMode, "mode", string(messaging.ModeEmail), "Channels to render: email, sms or both")
	sendCmd.Flags().IntVar(&sendLimit, "limit", messaging.DefaultDispatchLimit, "Number of sends to render")
	sendCmd.Flags().StringVarP(&sendOutput, "out", "o", "", "Optional path to write the rendered messages as JSON")

	if err := sendCmd.MarkFlagRequired("plan"); err != nil {
		panic(fmt.Sprintf("failed to mark plan flag as required: %v", err))
	}

	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	mode, err := messaging.ParseMode(sendMode)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var plan types.CampaignPlan
	if err := readJSONFile(sendPlan, "campaign plan", &plan); err != nil {
		return err
	}

	disclaimers := messaging.Disclaimers{
		Email: cfg.Messaging.LegalDisclaimer,
		SMS:   cfg.Messaging.LegalDisclaimerSMS,
	}
	summary, sent, err := dryRunSend(ctx, plan, mode, sendLimit, disclaimers, newLogger(cfg))
	if err != nil {
		return err
	}

	printMessages(os.Stdout, sent)

	if sendOutput != "" {
		if err := writeJSONOutput(sendOutput, sent, "", "messages"); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintf(os.Stdout, "Dry run complete: %d sends considered, %d emails, %d sms, %d skipped\n",
		summary.Considered, summary.Emails, summary.SMS, summary.Skipped)
	return nil
}

// dryRunSend renders the plan through a recording sender
func dryRunSend(ctx context.Context, plan types.CampaignPlan, mode messaging.Mode, limit int, disclaimers messaging.Disclaimers, logger *slog.Logger) (messaging.Summary, []messaging.Message, error) {
	renderer, err := messaging.NewRenderer(disclaimers)
	if err != nil {
		return messaging.Summary{}, nil, fmt.Errorf("failed to load message templates: %w", err)
	}

	sender := messaging.NewDryRunSender(logger)
	summary, err := messaging.NewDispatcher(renderer, sender).Dispatch(ctx, plan, mode, limit)
	if err != nil {
		return summary, sender.Sent(), fmt.Errorf("dry run failed: %w", err)
	}
	return summary, sender.Sent(), nil
}

func printMessages(w io.Writer, messages []messaging.Message) {
	for _, msg := range messages {
		_, _ = fmt.Fprintf(w, "[%s] to %s on %s\n", msg.Channel, msg.To, msg.Date)
		if msg.Subject != "" {
			_, _ = fmt.Fprintf(w, "Subject: %s\n", msg.Subject)
		}
		_, _ = fmt.Fprintf(w, "%s\n---\n", msg.Body)
	}
}
