package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/soundcu/benefit-engine/internal/cli"
	"github.com/soundcu/benefit-engine/internal/model"
)

func perksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "perks",
		Short: "Manage the perk catalog and usage log",
	}
	cmd.AddCommand(perksAddCmd())
	cmd.AddCommand(perksUnusedCmd())
	cmd.AddCommand(perksUseCmd())
	cmd.AddCommand(perksRetireCmd())
	return cmd
}

func perksAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <member-id> <title>",
		Short: "Add a perk to a member's catalog",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			source, _ := cmd.Flags().GetString("source")
			sourceName, _ := cmd.Flags().GetString("source-name")
			category, _ := cmd.Flags().GetString("category")
			low, _ := cmd.Flags().GetInt64("value-low")
			high, _ := cmd.Flags().GetInt64("value-high")

			perk := model.Perk{
				ID:                  uuid.NewString(),
				MemberID:            args[0],
				Title:               args[1],
				SourceName:          sourceName,
				Source:              model.PerkSource(source),
				Category:            model.Category(category),
				ValueLowMinorUnits:  low,
				ValueHighMinorUnits: high,
				CreatedAt:           time.Now().UTC(),
			}
			if category != "" && !perk.Category.Valid() {
				return fmt.Errorf("unknown category %q", category)
			}

			if err := store.SavePerk(ctx, &perk); err != nil {
				return fmt.Errorf("failed to save perk: %w", err)
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added perk %s (%s)", perk.Title, perk.ID)))
			return nil
		},
	}
	cmd.Flags().String("source", string(model.PerkSourceMembership), "perk source (CARD or MEMBERSHIP)")
	cmd.Flags().String("source-name", "", "human name of the card or membership tier")
	cmd.Flags().String("category", "", "spend category the perk applies to")
	cmd.Flags().Int64("value-low", 0, "low end of the value range, in cents")
	cmd.Flags().Int64("value-high", 0, "high end of the value range, in cents")
	return cmd
}

func perksUnusedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unused <member-id>",
		Short: "List perks the member has not used recently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			staleAfter, _ := cmd.Flags().GetDuration("stale-after")
			perks, err := eng.UnusedPerks(ctx, args[0], time.Now().UTC(), staleAfter)
			if err != nil {
				return err
			}
			if len(perks) == 0 {
				fmt.Println(cli.FormatInfo("No unused perks. Nice work."))
				return nil
			}

			fmt.Println(cli.TitleStyle.Render("Unused Perks"))
			for _, perk := range perks {
				value := cli.FormatCents(perk.ValueLowMinorUnits)
				if perk.ValueHighMinorUnits > perk.ValueLowMinorUnits {
					value = fmt.Sprintf("%s-%s", value, cli.FormatCents(perk.ValueHighMinorUnits))
				}
				fmt.Printf("%s %s (%s, worth %s)\n", cli.PerkIcon,
					cli.BoldStyle.Render(perk.Title), perk.SourceName, value)
			}
			return nil
		},
	}
	cmd.Flags().Duration("stale-after", 0, "staleness window, e.g. 720h (default: configured value)")
	return cmd
}

func perksUseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use <perk-id>",
		Short: "Record that a perk was used",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txnID, _ := cmd.Flags().GetString("transaction")
			if err := eng.RecordPerkUsage(ctx, args[0], time.Now().UTC(), txnID); err != nil {
				return fmt.Errorf("failed to record perk usage: %w", err)
			}
			fmt.Println(cli.FormatSuccess("Perk usage recorded"))
			return nil
		},
	}
	cmd.Flags().String("transaction", "", "transaction ID the usage applies to")
	return cmd
}

func perksRetireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retire <perk-id>",
		Short: "Retire a perk so it no longer counts or alerts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.RetirePerk(ctx, args[0], time.Now().UTC()); err != nil {
				return fmt.Errorf("failed to retire perk: %w", err)
			}
			fmt.Println(cli.FormatSuccess("Perk retired"))
			return nil
		},
	}
}
