package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundcu/benefit-engine/internal/cli"
	"github.com/soundcu/benefit-engine/internal/model"
)

func scoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <member-id>",
		Short: "Show the member's SoundScore and its breakdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			snapshot, err := eng.Score(ctx, args[0], time.Now().UTC())
			if err != nil {
				return err
			}

			fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("%s SoundScore: %d (%s)",
				cli.ChartIcon, snapshot.Score, snapshot.Grade)))
			for _, dim := range snapshot.Breakdown {
				fmt.Printf("%-20s %3d/%d  %s\n",
					dim.Name, dim.Points, dim.MaxPoints, renderStatus(dim.Status))
			}
			if snapshot.RecoveredSavingsMinorUnits > 0 {
				fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf(
					"Recovered savings this window: %s",
					cli.FormatCents(snapshot.RecoveredSavingsMinorUnits))))
			}
			return nil
		},
	}
}

func renderStatus(status model.DimensionStatus) string {
	switch status {
	case model.StatusGreat:
		return cli.SuccessStyle.Render("great")
	case model.StatusGood:
		return cli.InfoStyle.Render("good")
	default:
		return cli.WarningStyle.Render("needs work")
	}
}
