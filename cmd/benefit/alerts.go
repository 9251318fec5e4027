package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundcu/benefit-engine/internal/cli"
	"github.com/soundcu/benefit-engine/internal/model"
)

func alertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Inspect and act on savings alerts",
	}
	cmd.AddCommand(alertsListCmd())
	cmd.AddCommand(alertsActCmd())
	cmd.AddCommand(alertsSweepCmd())
	return cmd
}

func alertsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <member-id>",
		Short: "List a member's alerts, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			days, _ := cmd.Flags().GetInt("days")
			since := time.Now().UTC().AddDate(0, 0, -days)

			alerts, err := eng.Alerts(ctx, args[0], since)
			if err != nil {
				return err
			}
			if len(alerts) == 0 {
				fmt.Println(cli.FormatInfo("No alerts in this window."))
				return nil
			}

			fmt.Println(cli.TitleStyle.Render("Savings Alerts"))
			for _, alert := range alerts {
				fmt.Printf("%s [%s] %s\n", cli.AlertIcon,
					renderAlertStatus(alert.Status), alert.Suggestion)
				detail := fmt.Sprintf("   %s  %s", alert.ID, alert.CreatedAt.Format("2006-01-02"))
				if alert.EstimatedSavingsMinorUnits > 0 {
					detail += fmt.Sprintf("  est. %s", cli.FormatCents(alert.EstimatedSavingsMinorUnits))
				}
				fmt.Println(cli.SubtleStyle.Render(detail))
			}
			return nil
		},
	}
	cmd.Flags().Int("days", 30, "how many days back to list")
	return cmd
}

func alertsActCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "act <alert-id>",
		Short: "Mark an alert as acted on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := eng.ActOnAlert(ctx, args[0], time.Now().UTC()); err != nil {
				return fmt.Errorf("failed to act on alert: %w", err)
			}
			fmt.Println(cli.FormatSuccess("Alert marked as acted"))
			return nil
		},
	}
}

func alertsSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Expire pending alerts older than the action window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			swept, err := eng.SweepAlerts(ctx, time.Now().UTC())
			if err != nil {
				return fmt.Errorf("sweep failed: %w", err)
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Expired %d alerts", swept)))
			return nil
		},
	}
}

func renderAlertStatus(status model.AlertStatus) string {
	switch status {
	case model.StatusActed:
		return cli.SuccessStyle.Render(string(status))
	case model.StatusMissed:
		return cli.ErrorStyle.Render(string(status))
	default:
		return cli.WarningStyle.Render(string(status))
	}
}
