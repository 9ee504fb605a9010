package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeshelf/Codeshelf-sub002/internal/api"
	"github.com/codeshelf/Codeshelf-sub002/internal/commissioning/aisleimport"
	"github.com/codeshelf/Codeshelf-sub002/internal/infrastructure/logging"
	"github.com/codeshelf/Codeshelf-sub002/internal/lighting"
	"github.com/codeshelf/Codeshelf-sub002/internal/receipt"
)

// receiptRecorder writes an import receipt for every run, successful or not.
type receiptRecorder struct {
	repo receipt.Repository
	log  *logging.Logger
}

// RecordImport implements aisleimport.Recorder.
func (r *receiptRecorder) RecordImport(ctx context.Context, res *aisleimport.ImportResult, _ []lighting.AisleMap) {
	status := receipt.StatusCompleted
	if len(res.Failed) > 0 {
		status = receipt.StatusPartial
	}
	r.create(ctx, &receipt.Receipt{
		Facility: res.Facility,
		Source:   res.Source,
		Subject:  api.SubjectFromContext(ctx),
		Status:   status,
		Rows:     res.Rows,
		Created:  res.TotalCreated(),
		Updated:  res.TotalUpdated(),
		Retained: len(res.Retained),
		Warnings: len(res.Warnings),
		Aisles:   res.Aisles,
		Failed:   res.Failed,
		Duration: res.Duration,
		Received: res.StartedAt,
	})
}

// RecordImportFailure implements aisleimport.FailureRecorder.
func (r *receiptRecorder) RecordImportFailure(ctx context.Context, facilityID, source string, err error) {
	r.create(ctx, &receipt.Receipt{
		Facility: facilityID,
		Source:   source,
		Subject:  api.SubjectFromContext(ctx),
		Status:   receipt.StatusFailed,
		Error:    err.Error(),
	})
}

// create stores rc even when the request that caused it was cancelled.
func (r *receiptRecorder) create(ctx context.Context, rc *receipt.Receipt) {
	if err := r.repo.Create(context.WithoutCancel(ctx), rc); err != nil {
		r.log.Warn("import receipt not stored", "facility", rc.Facility, "error", err)
	}
}

type receiptListOptions struct {
	facility string
	status   string
	limit    int
	json     bool
}

func newReceiptsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipts",
		Short: "Review or purge the import history",
	}
	cmd.AddCommand(newReceiptsListCmd(opts))
	cmd.AddCommand(newReceiptsPurgeCmd(opts))
	return cmd
}

func newReceiptsListCmd(opts *globalOptions) *cobra.Command {
	lopts := &receiptListOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent import receipts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			return a.listReceipts(cmd.Context(), cmd.OutOrStdout(), lopts)
		},
	}
	cmd.Flags().StringVarP(&lopts.facility, "facility", "f", "", "only this facility")
	cmd.Flags().StringVar(&lopts.status, "status", "", "only completed, partial or failed runs")
	cmd.Flags().IntVarP(&lopts.limit, "limit", "n", 20, "maximum receipts to show (max 200)")
	cmd.Flags().BoolVar(&lopts.json, "json", false, "print the receipts as JSON")
	return cmd
}

func (a *app) listReceipts(ctx context.Context, out io.Writer, opts *receiptListOptions) error {
	status := receipt.Status(opts.status)
	switch status {
	case "", receipt.StatusCompleted, receipt.StatusPartial, receipt.StatusFailed:
	default:
		return fmt.Errorf("unknown status %q", opts.status)
	}

	db, err := a.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			a.log.Error("error closing database", "error", closeErr)
		}
	}()

	res, err := receipt.NewSQLiteRepository(db.DB).List(ctx, receipt.Filter{
		Facility: opts.facility,
		Status:   status,
		Limit:    opts.limit,
	})
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	if len(res.Receipts) == 0 {
		fmt.Fprintln(out, "no import receipts")
		return nil
	}
	for _, rc := range res.Receipts {
		fmt.Fprintf(out, "%s  %-9s %-6s %-20s rows=%d created=%d updated=%d warnings=%d",
			rc.Received.Local().Format(time.DateTime), rc.Status, rc.Facility, rc.Source,
			rc.Rows, rc.Created, rc.Updated, rc.Warnings)
		if len(rc.Failed) > 0 {
			fmt.Fprintf(out, " failed=%s", strings.Join(rc.Failed, ","))
		}
		if rc.Error != "" {
			fmt.Fprintf(out, " error=%q", rc.Error)
		}
		fmt.Fprintln(out)
	}
	if res.Total > len(res.Receipts) {
		fmt.Fprintf(out, "(%d of %d shown)\n", len(res.Receipts), res.Total)
	}
	return nil
}

func newReceiptsPurgeCmd(opts *globalOptions) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete import receipts older than a cutoff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			return a.purgeReceipts(cmd.Context(), cmd.OutOrStdout(), time.Now().Add(-olderThan))
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "age of the oldest receipt to keep")
	return cmd
}

func (a *app) purgeReceipts(ctx context.Context, out io.Writer, before time.Time) error {
	db, err := a.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			a.log.Error("error closing database", "error", closeErr)
		}
	}()

	n, err := receipt.NewSQLiteRepository(db.DB).Purge(ctx, before)
	if err != nil {
		return err
	}
	a.log.Info("import receipts purged", "count", n, "before", before)
	fmt.Fprintf(out, "purged %d receipt(s)\n", n)
	return nil
}
