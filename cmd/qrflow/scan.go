package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ltanh/qrflow/internal/classify"
	"github.com/ltanh/qrflow/internal/cli"
	"github.com/ltanh/qrflow/internal/model"
	"github.com/ltanh/qrflow/internal/scanner"
	qrsync "github.com/ltanh/qrflow/internal/sync"
)

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [payload...]",
		Short: "Classify scanned code payloads",
		Long: `Classify QR and barcode payloads the way the camera pipeline does.

Payloads come from arguments, from a file with one payload per line, or
from stdin when neither is given.

Examples:
  qrflow scan "WIFI:S:CoffeeShop;T:WPA;P:secret;;"
  qrflow scan --file payloads.txt
  cat payloads.txt | qrflow scan
  qrflow scan --save --user 1b4e28ba-... "00020101021138..."`,
		RunE: runScan,
	}

	// Flags
	cmd.Flags().StringP("file", "f", "", "File with one payload per line")
	cmd.Flags().Bool("save", false, "Persist savable classifications as records")
	cmd.Flags().StringP("user", "u", "", "Owner user id for saved records")

	_ = viper.BindPFlag("scan.file", cmd.Flags().Lookup("file"))
	_ = viper.BindPFlag("scan.save", cmd.Flags().Lookup("save"))
	_ = viper.BindPFlag("scan.user", cmd.Flags().Lookup("user"))

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	file := viper.GetString("scan.file")
	save := viper.GetBool("scan.save")
	userID := viper.GetString("scan.user")

	if save && userID == "" {
		return fmt.Errorf("--save requires --user")
	}

	payloads, err := collectPayloads(args, file)
	if err != nil {
		return err
	}
	if len(payloads) == 0 {
		return fmt.Errorf("no payloads to scan")
	}

	// Every payload is a frame; no stride sampling in batch mode.
	cfg := scanner.DefaultConfig()
	cfg.FrameStride = 1
	cfg.QuickScan = false

	session := scanner.NewSession(classify.New(), nil, cfg)
	defer session.Close()

	var results []model.ClassificationResult
	session.OnChange(func(snap scanner.Snapshot) {
		if snap.State == scanner.StateHighlighted {
			results = append(results, snap.Result)
		}
	})

	var editor *qrsync.Editor
	if save {
		store, storeErr := initStorage(ctx)
		if storeErr != nil {
			return fmt.Errorf("failed to open database: %w", storeErr)
		}
		defer func() { _ = store.Close() }()
		editor = qrsync.NewEditor(store)
	}

	var bar *progressbar.ProgressBar
	if len(payloads) > 10 {
		bar = scanProgressBar(len(payloads))
	}

	fmt.Println(cli.FormatTitle("Scan results"))
	for _, payload := range payloads {
		session.HandleFrame(ctx, model.Frame{Payload: payload})
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	for i, result := range results {
		fmt.Println(cli.FormatClassification(result))
		if editor != nil {
			if err := saveScan(ctx, editor, payloads[i], result, userID); err != nil {
				return err
			}
		}
	}

	return nil
}

func collectPayloads(args []string, file string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	reader := os.Stdin
	if file != "" {
		f, err := os.Open(file) // #nosec G304 -- user-supplied input path
		if err != nil {
			return nil, fmt.Errorf("failed to open payload file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	}

	var payloads []string
	lines := bufio.NewScanner(reader)
	for lines.Scan() {
		line := strings.TrimSpace(lines.Text())
		if line != "" {
			payloads = append(payloads, line)
		}
	}
	if err := lines.Err(); err != nil {
		return nil, fmt.Errorf("failed to read payloads: %w", err)
	}
	return payloads, nil
}

// saveScan persists one classified payload as a record owned by userID.
func saveScan(ctx context.Context, editor *qrsync.Editor, payload string, result model.ClassificationResult, userID string) error {
	recordType, ok := recordTypeFor(result.Kind)
	if !ok {
		slog.Debug("Skipping unsavable payload", "kind", result.Kind)
		return nil
	}

	rec := model.QRRecord{
		ID:           uuid.New().String(),
		UserID:       userID,
		Type:         recordType,
		Code:         payload,
		MetadataType: model.MetadataQR,
		AccountName:  result.DisplayLabel,
	}

	if err := editor.Apply(ctx, rec); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	fmt.Println(cli.FormatSuccess("saved " + rec.ID))
	return nil
}

// recordTypeFor maps a classification to a storable record type. WiFi and
// unknown payloads have nothing to persist.
func recordTypeFor(kind model.CodeKind) (model.RecordType, bool) {
	switch kind {
	case model.KindBank, model.KindCard:
		return model.RecordTypeBank, true
	case model.KindEwallet:
		return model.RecordTypeEwallet, true
	case model.KindURL:
		return model.RecordTypeStore, true
	default:
		return "", false
	}
}

func scanProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Classifying payloads...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
