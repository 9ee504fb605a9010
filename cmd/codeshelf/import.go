package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codeshelf/Codeshelf-sub002/internal/commissioning/aisleimport"
	"github.com/codeshelf/Codeshelf-sub002/internal/infrastructure/influxdb"
	"github.com/codeshelf/Codeshelf-sub002/internal/infrastructure/mqtt"
	"github.com/codeshelf/Codeshelf-sub002/internal/lighting"
)

// sourceCLI prefixes the import source recorded for command-line imports.
const sourceCLI = "cli"

type importOptions struct {
	facility string
	publish  bool
	json     bool
}

func newImportCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import location definitions",
	}
	cmd.AddCommand(newImportAislesCmd(opts))
	return cmd
}

func newImportAislesCmd(opts *globalOptions) *cobra.Command {
	iopts := &importOptions{}
	cmd := &cobra.Command{
		Use:   "aisles <file.csv>",
		Short: "Apply an aisle definition file to a facility",
		Long: `Import aisles reads an aisle definition CSV (or "-" for standard input),
builds or updates the aisles, bays, tiers and slots it describes, and assigns
LED ranges along each tier.

Existing locations the file no longer names are kept and reported as
retained. Row problems are reported as warnings; aisles that stopped on an
error are listed and make the command exit non-zero.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			return a.importAisles(cmd.Context(), cmd.OutOrStdout(), args[0], cmd.InOrStdin(), iopts)
		},
	}
	cmd.Flags().StringVarP(&iopts.facility, "facility", "f", "", "facility domain ID (default facility.id from the config)")
	cmd.Flags().BoolVar(&iopts.publish, "publish", false, "send the resulting LED maps to controllers over MQTT")
	cmd.Flags().BoolVar(&iopts.json, "json", false, "print the import result as JSON")
	return cmd
}

// importAisles imports one aisle file and prints the result to out.
func (a *app) importAisles(ctx context.Context, out io.Writer, path string, stdin io.Reader, opts *importOptions) error {
	facility := opts.facility
	if facility == "" {
		facility = a.cfg.Facility.ID
	}

	in, source, err := openAisleFile(path, stdin)
	if err != nil {
		return err
	}
	defer in.Close()

	db, err := a.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			a.log.Error("error closing database", "error", closeErr)
		}
	}()

	importer := a.newImporter(db, a.newStore(db))

	if a.cfg.InfluxDB.Enabled {
		influxClient, err := influxdb.Connect(a.cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer influxClient.Close()
		importer.AddRecorder(&telemetry{influx: influxClient})
	}

	if opts.publish {
		if !a.cfg.MQTT.Enabled {
			return fmt.Errorf("--publish needs mqtt.enabled in the configuration")
		}
		mqttClient, err := mqtt.Connect(a.cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer mqttClient.Close()
		mqttClient.SetLogger(a.log.Component("mqtt"))

		publisher := lighting.NewPublisher(mqttClient, mqttClient.Topics())
		publisher.SetLogger(a.log.Component("lighting"))
		importer.SetPublisher(publisher)
	}

	res, err := importer.ImportCSV(ctx, facility, source, in)
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
	} else {
		printImportResult(out, res)
	}

	if len(res.Failed) > 0 {
		return fmt.Errorf("%d aisle(s) failed: %s", len(res.Failed), strings.Join(res.Failed, ", "))
	}
	return nil
}

// openAisleFile opens path, or stdin when path is "-", and names the
// import source after it.
func openAisleFile(path string, stdin io.Reader) (io.ReadCloser, string, error) {
	if path == "-" {
		return io.NopCloser(stdin), sourceCLI + ":stdin", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening aisle file: %w", err)
	}
	return f, sourceCLI + ":" + filepath.Base(path), nil
}

// levelOrder lists location levels top-down for printing counts.
var levelOrder = []string{"Aisle", "Bay", "Tier", "Slot"}

func printImportResult(w io.Writer, res *aisleimport.ImportResult) {
	fmt.Fprintf(w, "Import %s into %s from %s\n", res.ImportID, res.Facility, res.Source)
	fmt.Fprintf(w, "  rows:      %d (%d discarded)\n", res.Rows, res.Discarded)
	fmt.Fprintf(w, "  created:   %s\n", formatCounts(res.Created))
	fmt.Fprintf(w, "  updated:   %s\n", formatCounts(res.Updated))
	fmt.Fprintf(w, "  aisles:    %s\n", listOrNone(res.Aisles))
	if len(res.Failed) > 0 {
		fmt.Fprintf(w, "  failed:    %s\n", strings.Join(res.Failed, ", "))
	}
	if len(res.Retained) > 0 {
		fmt.Fprintf(w, "  retained:  %s\n", strings.Join(res.Retained, ", "))
	}
	if len(res.Controllers) > 0 {
		fmt.Fprintf(w, "  controllers: %s\n", strings.Join(res.Controllers, ", "))
	}
	if len(res.Warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "  warnings:\n")
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "    row %d [%s] %s\n", warn.Row, warn.Code, warn.Message)
	}
}

// formatCounts renders per-level counts as "Aisle=1 Bay=2", known levels
// first.
func formatCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	var parts []string
	seen := make(map[string]bool, len(levelOrder))
	for _, level := range levelOrder {
		seen[level] = true
		if n := counts[level]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", level, n))
		}
	}
	var rest []string
	for level, n := range counts {
		if !seen[level] && n > 0 {
			rest = append(rest, fmt.Sprintf("%s=%d", level, n))
		}
	}
	sort.Strings(rest)
	parts = append(parts, rest...)
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
