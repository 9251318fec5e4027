package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/soundcu/benefit-engine/internal/cli"
	"github.com/soundcu/benefit-engine/internal/model"
	"github.com/soundcu/benefit-engine/internal/ofx"
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [file...]",
		Short: "Ingest transactions from CSV or OFX/QFX files",
		Long: `Ingest transactions from normalized CSV exports or OFX/QFX statement
files. Each transaction is classified, stored, and checked for missed
savings. Re-ingesting the same file is safe; duplicates are dropped.

CSV columns: id,date,member_id,merchant_name,merchant_location,card_id,amount
with an optional category column carrying an upstream category hint.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIngest,
	}
	cmd.Flags().String("member", "", "member ID to attribute OFX transactions to")
	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	memberID, _ := cmd.Flags().GetString("member")

	bar := progressbar.NewOptions(len(args),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Ingesting files..."),
	)

	var totalNew, totalDup, totalAlerts int
	for _, path := range args {
		txns, err := loadTransactionFile(ctx, path, memberID)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}

		stats, err := eng.IngestTransactions(ctx, txns)
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", path, err)
		}
		totalNew += stats.NewlyIngested
		totalDup += stats.Duplicates
		totalAlerts += stats.AlertsEmitted
		_ = bar.Add(1)
	}
	fmt.Fprintln(os.Stderr)

	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"Ingested %d new transactions (%d duplicates dropped, %d alerts raised)",
		totalNew, totalDup, totalAlerts)))
	return nil
}

func loadTransactionFile(ctx context.Context, path, memberID string) ([]model.Transaction, error) {
	f, err := os.Open(path) //nolint:gosec // user-supplied import path
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ofx", ".qfx":
		if memberID == "" {
			return nil, fmt.Errorf("--member is required for OFX files")
		}
		return ofx.NewParser().ParseFile(ctx, f, memberID)
	case ".csv":
		return parseCSV(f, memberID)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

// parseCSV reads the normalized CSV export format. A header row is
// required; the member_id column may be overridden by the --member flag.
func parseCSV(r io.Reader, memberOverride string) ([]model.Transaction, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"id", "date", "merchant_name", "card_id", "amount"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("CSV is missing required column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var txns []model.Transaction
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		date, err := parseDate(field(record, "date"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		amount, err := parseAmount(field(record, "amount"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		memberID := field(record, "member_id")
		if memberOverride != "" {
			memberID = memberOverride
		}
		if memberID == "" {
			return nil, fmt.Errorf("line %d: member_id is required", line)
		}

		txn := model.Transaction{
			ID:               field(record, "id"),
			Date:             date,
			MemberID:         memberID,
			MerchantName:     field(record, "merchant_name"),
			MerchantLocation: field(record, "merchant_location"),
			CardID:           field(record, "card_id"),
			RawCategoryHint:  field(record, "category"),
			AmountMinorUnits: amount,
		}
		txn.Hash = txn.GenerateHash()
		txns = append(txns, txn)
	}
	return txns, nil
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02", "01/02/2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// parseAmount converts a decimal dollar string to absolute cents without
// going through floating point.
func parseAmount(raw string) (int64, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "$"))
	raw = strings.TrimPrefix(raw, "-")
	if raw == "" {
		return 0, fmt.Errorf("amount is required")
	}

	whole, frac, _ := strings.Cut(raw, ".")
	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}

	var cents int64
	switch len(frac) {
	case 0:
	case 1:
		cents, err = strconv.ParseInt(frac, 10, 64)
		cents *= 10
	case 2:
		cents, err = strconv.ParseInt(frac, 10, 64)
	default:
		return 0, fmt.Errorf("amount %q has sub-cent precision", raw)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}

	return dollars*100 + cents, nil
}
