// Package location models a warehouse facility as a hierarchy of storage
// locations (Facility > Aisle > Bay > Tier > Slot) together with the pick
// paths, LED controllers and aliases addressed facility-wide.
//
// Geometry is stored parent-relative and composed on demand, so absolute
// positions always reflect the current hierarchy. Path positions are
// projections of a location's anchor and pick-face end onto its associated
// path segment.
//
// The model itself is not safe for concurrent use. Store serialises access
// per facility and persists through a Repository.
package location
