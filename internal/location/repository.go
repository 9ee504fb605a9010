package location

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Repository persists whole facilities. A facility is always saved and
// loaded as one unit so the hierarchy, paths and controllers stay consistent.
type Repository interface {
	SaveFacility(ctx context.Context, f *Facility) error
	LoadFacility(ctx context.Context, domainID string) (*Facility, error)
	ListFacilities(ctx context.Context) ([]string, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed location repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// SaveFacility replaces the stored copy of f in a single transaction.
func (r *SQLiteRepository) SaveFacility(ctx context.Context, f *Facility) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback is no-op after commit

	const upsert = `INSERT INTO facilities (id, domain_id, network) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET domain_id = excluded.domain_id, network = excluded.network,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`
	if _, err := tx.ExecContext(ctx, upsert, f.ID, f.DomainID, f.Network); err != nil {
		return fmt.Errorf("upserting facility %s: %w", f.DomainID, err)
	}

	for _, table := range []string{"location_aliases", "vertices", "locations", "path_segments", "paths", "led_controllers"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE facility_id = ?", f.ID); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if err := saveControllers(ctx, tx, f); err != nil {
		return err
	}
	if err := savePaths(ctx, tx, f); err != nil {
		return err
	}
	if err := saveLocations(ctx, tx, f); err != nil {
		return err
	}
	if err := saveAliases(ctx, tx, f); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing facility %s: %w", f.DomainID, err)
	}
	return nil
}

func saveControllers(ctx context.Context, tx *sql.Tx, f *Facility) error {
	const query = `INSERT INTO led_controllers (id, facility_id, domain_id, device_guid, network)
		VALUES (?, ?, ?, ?, ?)`
	for _, c := range f.controllers {
		if _, err := tx.ExecContext(ctx, query, c.ID, f.ID, c.DomainID, c.DeviceGUID, c.Network); err != nil {
			return fmt.Errorf("inserting controller %s: %w", c.DomainID, err)
		}
	}
	return nil
}

func savePaths(ctx context.Context, tx *sql.Tx, f *Facility) error {
	const pathQuery = `INSERT INTO paths (id, facility_id, domain_id, description) VALUES (?, ?, ?, ?)`
	const segQuery = `INSERT INTO path_segments (id, facility_id, path_id, seg_order,
		start_x, start_y, start_z, end_x, end_y, end_z, start_pos_along_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, p := range f.paths {
		if _, err := tx.ExecContext(ctx, pathQuery, p.ID, f.ID, p.DomainID, p.Description); err != nil {
			return fmt.Errorf("inserting path %s: %w", p.DomainID, err)
		}
		for _, s := range p.segments {
			if _, err := tx.ExecContext(ctx, segQuery, s.ID, f.ID, p.ID, s.Order,
				s.Start.X, s.Start.Y, s.Start.Z, s.End.X, s.End.Y, s.End.Z, s.StartPosAlongPath); err != nil {
				return fmt.Errorf("inserting segment %d of path %s: %w", s.Order, p.DomainID, err)
			}
		}
	}
	return nil
}

func saveLocations(ctx context.Context, tx *sql.Tx, f *Facility) error {
	const locQuery = `INSERT INTO locations (id, facility_id, parent_id, level, domain_id, sort_order, active,
		anchor_type, anchor_x, anchor_y, anchor_z, pick_face_end_x, pick_face_end_y, pick_face_end_z,
		first_led, last_led, lower_led_near_anchor, controller_id, channel, pos_along_path, path_segment_id,
		indicator_first_led, indicator_last_led, pattern, orientation, depth_m,
		led_offset, clone_source, led_count, slot_count, floor_m)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	const vertexQuery = `INSERT INTO vertices (id, facility_id, location_id, domain_id, draw_order, x, y, z)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	var walkErr error
	var insert func(l *Location, order int)
	insert = func(l *Location, order int) {
		if walkErr != nil {
			return
		}
		var parentID sql.NullString
		if l.parent != nil {
			parentID = sql.NullString{String: l.parent.ID, Valid: true}
		}
		var first, last sql.NullInt64
		if l.ledsSet {
			first = sql.NullInt64{Int64: int64(l.firstLed), Valid: true}
			last = sql.NullInt64{Int64: int64(l.lastLed), Valid: true}
		}
		var segID sql.NullString
		if l.pathSegment != nil {
			segID = sql.NullString{String: l.pathSegment.ID, Valid: true}
		}
		_, err := tx.ExecContext(ctx, locQuery,
			l.ID, f.ID, parentID, int(l.Level), l.DomainID, order, l.Active,
			l.Anchor.Type.String(), l.Anchor.X, l.Anchor.Y, l.Anchor.Z,
			l.PickFaceEnd.X, l.PickFaceEnd.Y, l.PickFaceEnd.Z,
			first, last, l.LowerLedNearAnchor, nullString(l.ControllerID), nullInt(l.Channel),
			nullFloat(l.PosAlongPath), segID,
			l.indicatorFirst, l.indicatorLast, string(l.Pattern), l.Orientation.String(), l.DepthM,
			l.LedOffset, l.CloneSource, l.LedCount, l.SlotCount, l.FloorM)
		if err != nil {
			walkErr = fmt.Errorf("inserting location %s: %w", l, err)
			return
		}
		for _, v := range l.Vertices {
			if _, err := tx.ExecContext(ctx, vertexQuery, v.ID, f.ID, l.ID, v.DomainID, v.DrawOrder,
				v.Point.X, v.Point.Y, v.Point.Z); err != nil {
				walkErr = fmt.Errorf("inserting vertex %s of %s: %w", v.DomainID, l, err)
				return
			}
		}
		for i, c := range l.children {
			insert(c, i)
		}
	}
	insert(f.Location, 0)
	return walkErr
}

func saveAliases(ctx context.Context, tx *sql.Tx, f *Facility) error {
	const query = `INSERT INTO location_aliases (id, facility_id, alias, active, location_id)
		VALUES (?, ?, ?, ?, ?)`
	for _, a := range f.aliases {
		if _, err := tx.ExecContext(ctx, query, a.ID, f.ID, a.Name, a.Active, a.location.ID); err != nil {
			return fmt.Errorf("inserting alias %s: %w", a.Name, err)
		}
	}
	return nil
}

// LoadFacility reads a facility and everything it owns.
func (r *SQLiteRepository) LoadFacility(ctx context.Context, domainID string) (*Facility, error) {
	var id, network string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, network FROM facilities WHERE domain_id = ?`, domainID).Scan(&id, &network)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrFacilityNotFound, domainID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying facility %s: %w", domainID, err)
	}

	f := NewFacility(domainID, network)
	f.ID = id

	if err := r.loadControllers(ctx, f); err != nil {
		return nil, err
	}
	segments, err := r.loadPaths(ctx, f)
	if err != nil {
		return nil, err
	}
	byID, err := r.loadLocations(ctx, f, segments)
	if err != nil {
		return nil, err
	}
	if err := r.loadVertices(ctx, f, byID); err != nil {
		return nil, err
	}
	if err := r.loadAliases(ctx, f, byID); err != nil {
		return nil, err
	}
	return f, nil
}

// ListFacilities returns the domain IDs of every stored facility.
func (r *SQLiteRepository) ListFacilities(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT domain_id FROM facilities ORDER BY domain_id`)
	if err != nil {
		return nil, fmt.Errorf("listing facilities: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning facility: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) loadControllers(ctx context.Context, f *Facility) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, domain_id, device_guid, network FROM led_controllers WHERE facility_id = ? ORDER BY rowid`, f.ID)
	if err != nil {
		return fmt.Errorf("querying controllers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c := &Controller{}
		if err := rows.Scan(&c.ID, &c.DomainID, &c.DeviceGUID, &c.Network); err != nil {
			return fmt.Errorf("scanning controller: %w", err)
		}
		f.controllers = append(f.controllers, c)
	}
	return rows.Err()
}

func (r *SQLiteRepository) loadPaths(ctx context.Context, f *Facility) (map[string]*PathSegment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, domain_id, description FROM paths WHERE facility_id = ? ORDER BY rowid`, f.ID)
	if err != nil {
		return nil, fmt.Errorf("querying paths: %w", err)
	}
	byID := make(map[string]*Path)
	for rows.Next() {
		p := &Path{}
		if err := rows.Scan(&p.ID, &p.DomainID, &p.Description); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning path: %w", err)
		}
		f.paths = append(f.paths, p)
		byID[p.ID] = p
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating paths: %w", err)
	}

	segRows, err := r.db.QueryContext(ctx, `SELECT id, path_id, seg_order,
		start_x, start_y, start_z, end_x, end_y, end_z, start_pos_along_path
		FROM path_segments WHERE facility_id = ? ORDER BY path_id, seg_order`, f.ID)
	if err != nil {
		return nil, fmt.Errorf("querying path segments: %w", err)
	}
	defer segRows.Close()

	segments := make(map[string]*PathSegment)
	for segRows.Next() {
		s := &PathSegment{}
		var pathID string
		var sx, sy, sz, ex, ey, ez float64
		if err := segRows.Scan(&s.ID, &pathID, &s.Order, &sx, &sy, &sz, &ex, &ey, &ez, &s.StartPosAlongPath); err != nil {
			return nil, fmt.Errorf("scanning path segment: %w", err)
		}
		p, ok := byID[pathID]
		if !ok {
			continue
		}
		s.Start = NewPoint(PositionTypeAbsolute, sx, sy, sz)
		s.End = NewPoint(PositionTypeAbsolute, ex, ey, ez)
		s.path = p
		p.segments = append(p.segments, s)
		segments[s.ID] = s
	}
	return segments, segRows.Err()
}

func (r *SQLiteRepository) loadLocations(ctx context.Context, f *Facility, segments map[string]*PathSegment) (map[string]*Location, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, parent_id, level, domain_id, active,
		anchor_type, anchor_x, anchor_y, anchor_z, pick_face_end_x, pick_face_end_y, pick_face_end_z,
		first_led, last_led, lower_led_near_anchor, controller_id, channel, pos_along_path, path_segment_id,
		indicator_first_led, indicator_last_led, pattern, orientation, depth_m,
		led_offset, clone_source, led_count, slot_count, floor_m
		FROM locations WHERE facility_id = ? ORDER BY level, sort_order`, f.ID)
	if err != nil {
		return nil, fmt.Errorf("querying locations: %w", err)
	}
	defer rows.Close()

	byID := map[string]*Location{f.ID: f.Location}
	for rows.Next() {
		var (
			l                    Location
			parentID, segID      sql.NullString
			controllerID         sql.NullString
			level                int
			anchorType, orient   string
			pattern              string
			first, last, channel sql.NullInt64
			pos                  sql.NullFloat64
			anchor, pickFaceEnd  Point
		)
		err := rows.Scan(&l.ID, &parentID, &level, &l.DomainID, &l.Active,
			&anchorType, &anchor.X, &anchor.Y, &anchor.Z, &pickFaceEnd.X, &pickFaceEnd.Y, &pickFaceEnd.Z,
			&first, &last, &l.LowerLedNearAnchor, &controllerID, &channel, &pos, &segID,
			&l.indicatorFirst, &l.indicatorLast, &pattern, &orient, &l.DepthM,
			&l.LedOffset, &l.CloneSource, &l.LedCount, &l.SlotCount, &l.FloorM)
		if err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}

		if Level(level) == LevelFacility {
			root := f.Location
			root.Active = l.Active
			continue
		}

		loc := &l
		loc.Level = Level(level)
		anchor.Type = ParsePositionType(anchorType)
		loc.Anchor = anchor
		loc.PickFaceEnd = pickFaceEnd
		loc.Pattern = Pattern(pattern)
		loc.Orientation = ParseOrientation(orient)
		loc.ControllerID = controllerID.String
		loc.Channel = int(channel.Int64)
		if first.Valid && last.Valid {
			loc.SetLeds(int(first.Int64), int(last.Int64))
		}
		if pos.Valid {
			p := pos.Float64
			loc.PosAlongPath = &p
		}
		if seg, ok := segments[segID.String]; ok && segID.Valid {
			loc.pathSegment = seg
			seg.locations = append(seg.locations, loc)
		}

		parent, ok := byID[parentID.String]
		if !ok {
			return nil, fmt.Errorf("location %s: parent %s not loaded", loc.DomainID, parentID.String)
		}
		loc.parent = parent
		parent.children = append(parent.children, loc)
		byID[loc.ID] = loc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating locations: %w", err)
	}
	return byID, nil
}

func (r *SQLiteRepository) loadVertices(ctx context.Context, f *Facility, byID map[string]*Location) error {
	rows, err := r.db.QueryContext(ctx, `SELECT id, location_id, domain_id, draw_order, x, y, z
		FROM vertices WHERE facility_id = ? ORDER BY location_id, draw_order`, f.ID)
	if err != nil {
		return fmt.Errorf("querying vertices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v := &Vertex{Point: Point{Type: PositionTypeParent}}
		var locID string
		if err := rows.Scan(&v.ID, &locID, &v.DomainID, &v.DrawOrder, &v.Point.X, &v.Point.Y, &v.Point.Z); err != nil {
			return fmt.Errorf("scanning vertex: %w", err)
		}
		if loc, ok := byID[locID]; ok {
			loc.Vertices = append(loc.Vertices, v)
		}
	}
	return rows.Err()
}

func (r *SQLiteRepository) loadAliases(ctx context.Context, f *Facility, byID map[string]*Location) error {
	rows, err := r.db.QueryContext(ctx, `SELECT id, alias, active, location_id
		FROM location_aliases WHERE facility_id = ? ORDER BY rowid`, f.ID)
	if err != nil {
		return fmt.Errorf("querying aliases: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		a := &Alias{}
		var locID string
		if err := rows.Scan(&a.ID, &a.Name, &a.Active, &locID); err != nil {
			return fmt.Errorf("scanning alias: %w", err)
		}
		loc, ok := byID[locID]
		if !ok {
			continue
		}
		a.location = loc
		loc.aliases = append(loc.aliases, a)
		f.aliases[normalizeAlias(a.Name)] = a
	}
	return rows.Err()
}

// nullString converts an empty string to a NULL column.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullInt converts zero to a NULL column.
func nullInt(n int) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
