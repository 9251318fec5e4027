package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundcu/benefit-engine/internal/cli"
)

func recommendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recommend <member-id>",
		Short: "Show the best card for each of the member's spend categories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			results, err := eng.Recommend(ctx, args[0], time.Now().UTC())
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println(cli.FormatInfo("No spend in the recommendation window yet."))
				return nil
			}

			fmt.Println(cli.TitleStyle.Render("Card Recommendations"))
			var totalDelta int64
			for i := range results {
				r := &results[i]
				if r.Optimized() {
					fmt.Printf("%s %-18s already on the best card (%s)\n",
						cli.SuccessIcon, r.Category, r.RecommendedCardName)
					continue
				}
				totalDelta += r.DeltaMinorUnits()
				fmt.Printf("%s %-18s switch to %s to earn %s more on %s of spend\n",
					cli.CardIcon, r.Category,
					cli.BoldStyle.Render(r.RecommendedCardName),
					cli.FormatCents(r.DeltaMinorUnits()),
					cli.FormatCents(r.MonthlySpendMinorUnits))
			}
			if totalDelta > 0 {
				fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf(
					"Total missed rewards this window: %s", cli.FormatCents(totalDelta))))
			}
			return nil
		},
	}
}
