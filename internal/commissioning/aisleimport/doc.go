// Package aisleimport builds aisles, bays, tiers and slots from aisle
// definition files.
//
// An aisle file is a CSV table with one row per Aisle, Bay or Tier. Rows
// are read in order by an Interpreter, a small state machine that creates
// or updates locations in place:
//
//	binType,nominalDomainId,lengthCm,slotsInTier,ledCountInTier,tierFloorCm,controllerLED,anchorX,anchorY,orientXorY,depthCm
//	Aisle,A9,,,,,tierB1S1Side,12.85,43.45,X,120
//	Bay,B1,244,,,,,,,,
//	Tier,T1,,8,80,0,,,,,
//	Bay,B2,Clone(B1),,,,3,,,,
//
// A Clone(<name>) in lengthCm copies another aisle's bays or another bay's
// tiers. On Bay rows controllerLED is a LED offset; on Aisle rows it names
// the lighting pattern.
//
// A bad row stops only its own aisle: the remaining rows of that aisle are
// discarded and the next Aisle row starts fresh. Every problem is reported
// as a Warning on the ImportResult. When an aisle's rows end it is laid
// out, its LEDs are allocated, and its path positions are refreshed.
//
// Re-importing a file updates locations in place and never deletes.
// Locations a newer file no longer names are listed in
// ImportResult.Retained and keep their place in the LED layout.
//
// Service wraps the Interpreter with a location.Store, publishing LED
// maps and recording each import once the facility is saved.
package aisleimport
