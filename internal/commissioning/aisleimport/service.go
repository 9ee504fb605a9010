package aisleimport

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/codeshelf/Codeshelf-sub002/internal/lighting"
	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

// MapPublisher sends LED maps to controllers. *lighting.Publisher
// satisfies it.
type MapPublisher interface {
	PublishAisleMap(m lighting.AisleMap) error
	PublishControllerMap(m lighting.ControllerMap) error
}

// Recorder receives every finished import together with the LED maps of
// the aisles it finalized.
type Recorder interface {
	RecordImport(ctx context.Context, res *ImportResult, aisles []lighting.AisleMap)
}

// FailureRecorder is implemented by recorders that also want imports that
// returned an error instead of a result.
type FailureRecorder interface {
	RecordImportFailure(ctx context.Context, facilityID, source string, err error)
}

// Service runs aisle imports against a location.Store and fans the results
// out to publishers, recorders and import listeners.
type Service struct {
	store     *location.Store
	limits    Limits
	publisher MapPublisher
	recorders []Recorder
	listeners []func(*ImportResult)
	logger    Logger
}

// NewService returns a service importing into store.
func NewService(store *location.Store, limits Limits) *Service {
	return &Service{
		store:  store,
		limits: limits.withDefaults(),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for import events.
func (s *Service) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	s.logger = logger
}

// SetPublisher sets where LED maps go after each import. Nil disables
// publishing.
func (s *Service) SetPublisher(p MapPublisher) {
	s.publisher = p
}

// AddRecorder registers a recorder for finished imports.
func (s *Service) AddRecorder(r Recorder) {
	s.recorders = append(s.recorders, r)
}

// OnImport registers fn to be called after every successful import.
func (s *Service) OnImport(fn func(*ImportResult)) {
	s.listeners = append(s.listeners, fn)
}

// ImportCSV decodes an aisle file and imports it.
//
// Parameters:
//   - ctx: Context for the store update
//   - facilityID: Facility domain ID; created when it does not exist
//   - source: Free-form origin recorded on the result, such as a file name
//   - r: CSV input of at most MaxImportSize bytes
//
// Returns:
//   - *ImportResult: What changed, including row warnings
//   - error: If the input cannot be decoded or the facility cannot be saved
func (s *Service) ImportCSV(ctx context.Context, facilityID, source string, r io.Reader) (*ImportResult, error) {
	rows, err := readCSV(r)
	if err != nil {
		s.recordFailure(ctx, facilityID, source, err)
		return nil, err
	}
	return s.ImportRows(ctx, facilityID, source, rows)
}

func readCSV(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImportSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading aisle file: %w", err)
	}
	if len(data) > MaxImportSize {
		return nil, ErrFileTooLarge
	}
	return DecodeCSV(bytes.NewReader(data))
}

// ImportRows interprets rows against the facility, adds placeholder LED
// controllers for new strips, and saves the facility. LED maps of the
// finalized aisles are then published and the result recorded.
// Publishing failures are logged and do not fail the import.
func (s *Service) ImportRows(ctx context.Context, facilityID, source string, rows []Row) (*ImportResult, error) {
	var (
		res         *ImportResult
		aisleMaps   []lighting.AisleMap
		controllers []lighting.ControllerMap
	)

	err := s.store.Update(ctx, facilityID, func(f *location.Facility) error {
		in := NewInterpreter(f, s.limits)
		in.SetLogger(s.logger)
		res = in.Interpret(rows)
		res.Source = source

		for _, c := range f.EnsureLedControllers() {
			res.Controllers = append(res.Controllers, c.DomainID)
		}

		// Maps are built under the store lock; nothing from f escapes.
		for _, id := range res.Aisles {
			if aisle := f.Aisle(id); aisle != nil {
				aisleMaps = append(aisleMaps, lighting.BuildAisleMap(f.DomainID, aisle))
			}
		}
		for _, c := range f.Controllers() {
			if m := lighting.BuildControllerMap(f, c); len(m.Tiers) > 0 {
				controllers = append(controllers, m)
			}
		}
		return nil
	})
	if err != nil {
		err = fmt.Errorf("importing aisles into %s: %w", facilityID, err)
		s.recordFailure(ctx, facilityID, source, err)
		return nil, err
	}

	s.logger.Info("aisle import finished",
		"import_id", res.ImportID,
		"facility", facilityID,
		"source", source,
		"rows", res.Rows,
		"created", res.TotalCreated(),
		"updated", res.TotalUpdated(),
		"retained", len(res.Retained),
		"warnings", len(res.Warnings),
		"duration", res.Duration,
	)

	s.publish(aisleMaps, controllers)
	for _, r := range s.recorders {
		r.RecordImport(ctx, res, aisleMaps)
	}
	for _, fn := range s.listeners {
		fn(res)
	}
	return res, nil
}

func (s *Service) recordFailure(ctx context.Context, facilityID, source string, err error) {
	s.logger.Warn("aisle import failed", "facility", facilityID, "source", source, "error", err)
	for _, r := range s.recorders {
		if fr, ok := r.(FailureRecorder); ok {
			fr.RecordImportFailure(ctx, facilityID, source, err)
		}
	}
}

func (s *Service) publish(aisles []lighting.AisleMap, controllers []lighting.ControllerMap) {
	if s.publisher == nil {
		return
	}
	for _, m := range aisles {
		if err := s.publisher.PublishAisleMap(m); err != nil {
			s.logger.Warn("aisle LED map not published", "aisle", m.Aisle, "error", err)
		}
	}
	for _, m := range controllers {
		if err := s.publisher.PublishControllerMap(m); err != nil {
			s.logger.Warn("controller map not published", "controller", m.Controller, "error", err)
		}
	}
}
