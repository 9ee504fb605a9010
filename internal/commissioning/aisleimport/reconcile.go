package aisleimport

import (
	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

// tracker records which locations an import run has named, so that
// repeated imports update in place and report what they left alone.
// Nothing is ever removed or deactivated.
type tracker struct {
	seen   map[*location.Location]bool
	result *ImportResult
}

func newTracker(result *ImportResult) *tracker {
	return &tracker{seen: make(map[*location.Location]bool), result: result}
}

// ensure finds parent's child by name or creates it, counting it once per
// run as created or updated.
func (t *tracker) ensure(parent *location.Location, name string) (*location.Location, error) {
	child, created, err := parent.EnsureChild(name)
	if err != nil {
		return nil, err
	}
	if !t.seen[child] {
		t.seen[child] = true
		if created {
			t.result.Created[levelKey(child.Level)]++
		} else {
			t.result.Updated[levelKey(child.Level)]++
		}
	}
	return child, nil
}

// retained lists, by nominal ID, the locations under aisles that the run
// did not name.
func (t *tracker) retained(aisles []*location.Location) []string {
	var out []string
	for _, aisle := range aisles {
		for _, loc := range aisle.Descendants() {
			if !t.seen[loc] {
				out = append(out, loc.NominalLocationID())
			}
		}
	}
	return out
}
