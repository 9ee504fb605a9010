package aisleimport

import (
	"strings"
	"time"

	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

// Row kinds accepted in the binType column.
const (
	KindAisle = "aisle"
	KindBay   = "bay"
	KindTier  = "tier"
)

// Row is one tokenized line of an aisle definition file. All fields are
// kept as text; the Interpreter parses them so that a bad value becomes a
// warning rather than a decode failure.
type Row struct {
	// Line is the 1-based source line, 0 when the row did not come from a file.
	Line int `json:"line,omitempty"`

	BinType         string `json:"binType"`
	NominalDomainID string `json:"nominalDomainId"`

	// LengthCm is the bay length, or a Clone(<name>) directive on Aisle
	// and Bay rows.
	LengthCm       string `json:"lengthCm,omitempty"`
	SlotsInTier    string `json:"slotsInTier,omitempty"`
	LedCountInTier string `json:"ledCountInTier,omitempty"`
	TierFloorCm    string `json:"tierFloorCm,omitempty"`

	// ControllerLED is the lighting pattern on Aisle rows and the LED
	// offset on Bay rows. Tier rows ignore it.
	ControllerLED string `json:"controllerLED,omitempty"`

	AnchorX    string `json:"anchorX,omitempty"`
	AnchorY    string `json:"anchorY,omitempty"`
	OrientXorY string `json:"orientXorY,omitempty"`
	DepthCm    string `json:"depthCm,omitempty"`
}

// Kind returns the lower-cased, trimmed binType.
func (r Row) Kind() string {
	return strings.ToLower(strings.TrimSpace(r.BinType))
}

// Name returns the trimmed nominal domain ID.
func (r Row) Name() string {
	return strings.TrimSpace(r.NominalDomainID)
}

// Warning is a non-fatal problem found while interpreting rows.
type Warning struct {
	Code    string `json:"code"`
	Row     int    `json:"row"`
	Aisle   string `json:"aisle,omitempty"`
	Message string `json:"message"`
}

// ImportResult summarises one interpretation run.
type ImportResult struct {
	// ImportID is a unique identifier for this run.
	ImportID string `json:"import_id"`

	// Facility is the facility domain ID the rows were applied to.
	Facility string `json:"facility"`

	// Source names where the rows came from, such as a file name or "mqtt".
	Source string `json:"source,omitempty"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	// Rows counts every row read; Discarded counts those skipped because
	// their aisle had already failed.
	Rows      int `json:"rows"`
	Discarded int `json:"discarded"`

	// Created and Updated count locations per level name ("Aisle", "Bay",
	// "Tier", "Slot"). A location touched twice in one run counts once.
	Created map[string]int `json:"created"`
	Updated map[string]int `json:"updated"`

	// Retained lists locations under the imported aisles that these rows
	// no longer name. They are kept as they were.
	Retained []string `json:"retained,omitempty"`

	// Aisles lists the aisles that were finalized, in input order.
	Aisles []string `json:"aisles"`

	// Failed lists the aisles whose rows stopped on an error.
	Failed []string `json:"failed,omitempty"`

	// Controllers lists placeholder controllers created for new strips.
	Controllers []string `json:"controllers,omitempty"`

	Warnings []Warning `json:"warnings"`
}

func newImportResult(facility string) *ImportResult {
	return &ImportResult{
		ImportID:  generateImportID(),
		Facility:  facility,
		StartedAt: time.Now().UTC(),
		Created:   make(map[string]int),
		Updated:   make(map[string]int),
		Aisles:    []string{},
		Warnings:  []Warning{},
	}
}

// TotalCreated sums Created over all levels.
func (r *ImportResult) TotalCreated() int {
	return sumCounts(r.Created)
}

// TotalUpdated sums Updated over all levels.
func (r *ImportResult) TotalUpdated() int {
	return sumCounts(r.Updated)
}

// HasWarning reports whether any warning carries code.
func (r *ImportResult) HasWarning(code string) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// WarningCodes returns the code of every warning, in order.
func (r *ImportResult) WarningCodes() []string {
	codes := make([]string, len(r.Warnings))
	for i, w := range r.Warnings {
		codes[i] = w.Code
	}
	return codes
}

func sumCounts(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

// Limits bounds and defaults the numeric fields of tier and bay rows.
type Limits struct {
	MaxSlotsPerTier    int
	MaxLedsPerTier     int
	DefaultBayLengthCm int
	DefaultSlotCount   int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxSlotsPerTier:    30,
		MaxLedsPerTier:     400,
		DefaultBayLengthCm: 122,
		DefaultSlotCount:   5,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxSlotsPerTier <= 0 {
		l.MaxSlotsPerTier = d.MaxSlotsPerTier
	}
	if l.MaxLedsPerTier <= 0 {
		l.MaxLedsPerTier = d.MaxLedsPerTier
	}
	if l.DefaultBayLengthCm <= 0 {
		l.DefaultBayLengthCm = d.DefaultBayLengthCm
	}
	if l.DefaultSlotCount <= 0 {
		l.DefaultSlotCount = d.DefaultSlotCount
	}
	return l
}

// levelKey is the map key used in ImportResult counts.
func levelKey(l location.Level) string {
	return l.String()
}
