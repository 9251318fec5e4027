package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundcu/benefit-engine/internal/cli"
	"github.com/soundcu/benefit-engine/internal/model"
)

func cardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Manage card products and member card links",
	}
	cmd.AddCommand(cardsListCmd())
	cmd.AddCommand(cardsLinkCmd())
	cmd.AddCommand(cardsCompareCmd())
	return cmd
}

func cardsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the card products in the reward registry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := initRegistry()
			if err != nil {
				return err
			}

			fmt.Println(cli.TitleStyle.Render("Card Products"))
			for _, product := range registry.Products() {
				fmt.Printf("%s %s (%s)\n", cli.CardIcon, cli.BoldStyle.Render(product.Name), product.ID)
				fmt.Printf("   base rate %s, annual fee %s\n",
					formatBasisPoints(product.BaseRateBasisPoints),
					cli.FormatCents(product.AnnualFeeMinorUnits))
				for category, rule := range product.Rules {
					fmt.Printf("   %-18s %s\n", category, formatBasisPoints(rule.RateBasisPoints))
				}
			}
			return nil
		},
	}
}

func cardsLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link <member-id> <card-id>",
		Short: "Link a card product to a member's wallet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			defaultFor, _ := cmd.Flags().GetString("default-for")
			card := model.MemberCard{
				MemberID:        args[0],
				CardID:          args[1],
				DefaultCategory: model.Category(defaultFor),
				LinkedAt:        time.Now().UTC(),
			}
			if defaultFor != "" && !card.DefaultCategory.Valid() {
				return fmt.Errorf("unknown category %q", defaultFor)
			}

			if err := store.LinkCard(ctx, &card); err != nil {
				return fmt.Errorf("failed to link card: %w", err)
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Linked %s to %s", args[1], args[0])))
			return nil
		},
	}
	cmd.Flags().String("default-for", "", "designate this card as the member's default for a category")
	return cmd
}

func cardsCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <member-id>",
		Short: "Rank card products by effective cost over the member's recent spend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			comparisons, err := eng.CompareCards(ctx, args[0], time.Now().UTC())
			if err != nil {
				return err
			}

			fmt.Println(cli.TitleStyle.Render("Card Comparison"))
			fmt.Println(cli.TableHeaderStyle.Render(
				fmt.Sprintf("%-24s %12s %12s %12s", "Card", "Rewards", "Fee", "Effective")))
			for _, c := range comparisons {
				fmt.Printf("%-24s %12s %12s %12s\n",
					c.CardName,
					cli.FormatCents(c.RewardsEarnedMinorUnits),
					cli.FormatCents(c.AnnualFeeMinorUnits),
					cli.FormatCents(c.EffectiveCostMinorUnits))
			}
			return nil
		},
	}
}

func formatBasisPoints(bps int64) string {
	return fmt.Sprintf("%d.%02d%%", bps/100, bps%100)
}
