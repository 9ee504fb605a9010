package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/codeshelf/Codeshelf-sub002/internal/lighting"
	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

type locateOptions struct {
	position float64
	json     bool
}

// locateResult describes one resolved location.
type locateResult struct {
	Facility   string            `json:"facility"`
	Location   string            `json:"location"`
	Level      string            `json:"level"`
	Active     bool              `json:"active"`
	Controller string            `json:"controller"`
	Channel    string            `json:"channel"`
	Range      lighting.LedRange `json:"range"`
	Leds       lighting.LedRange `json:"leds"`
	Position   float64           `json:"position,omitempty"`
	PosAlong   *float64          `json:"pos_along_path,omitempty"`
}

func newLocateCmd(opts *globalOptions) *cobra.Command {
	lopts := &locateOptions{}
	cmd := &cobra.Command{
		Use:   "locate <facility> <location>",
		Short: "Show a location's LEDs and controller",
		Long: `Locate resolves a location by alias or dotted ID (for example A1.B2.T1.S3)
and prints its LED range, the LEDs to light for an item at --position metres
from the anchor, and the controller and channel driving it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if lopts.position < 0 {
				return fmt.Errorf("--position must not be negative")
			}
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			return a.locate(cmd.Context(), cmd.OutOrStdout(), args[0], args[1], lopts)
		},
	}
	cmd.Flags().Float64Var(&lopts.position, "position", 0, "item position in metres from the anchor (0 lights the whole range)")
	cmd.Flags().BoolVar(&lopts.json, "json", false, "print the result as JSON")
	return cmd
}

func (a *app) locate(ctx context.Context, out io.Writer, facility, id string, opts *locateOptions) error {
	db, err := a.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			a.log.Error("error closing database", "error", closeErr)
		}
	}()

	var res locateResult
	err = a.newStore(db).View(ctx, facility, func(f *location.Facility) error {
		loc := f.FindLocation(id)
		if loc == nil || loc.Level == location.LevelFacility {
			return fmt.Errorf("%w: %s", location.ErrNotFound, id)
		}
		res = locateResult{
			Facility:   f.DomainID,
			Location:   loc.NominalLocationID(),
			Level:      loc.Level.String(),
			Active:     loc.Active,
			Controller: loc.LedControllerUI(),
			Channel:    loc.LedChannelUI(),
			Range:      lighting.LocationRange(loc),
			Leds:       lighting.LedsForPosition(loc, opts.position),
			Position:   opts.position,
			PosAlong:   loc.PosAlongPath,
		}
		return nil
	})
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintf(out, "%s %s in %s\n", res.Level, res.Location, res.Facility)
	if !res.Active {
		fmt.Fprintf(out, "  inactive\n")
	}
	fmt.Fprintf(out, "  range:      %s\n", orDash(res.Range.String()))
	fmt.Fprintf(out, "  light:      %s\n", orDash(res.Leds.String()))
	fmt.Fprintf(out, "  controller: %s\n", orDash(res.Controller))
	fmt.Fprintf(out, "  channel:    %s\n", orDash(res.Channel))
	if res.PosAlong != nil {
		fmt.Fprintf(out, "  path:       %.2f m\n", *res.PosAlong)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
