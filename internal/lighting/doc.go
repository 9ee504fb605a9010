// Package lighting assigns pick-face LED numbers to warehouse locations.
//
// Each aisle carries a strip of addressable LEDs per tier row. The
// Allocator numbers every tier and slot of an aisle according to the
// aisle's pattern:
//
//   - tierB1S1Side / tierNotB1S1Side: each tier level is its own strip,
//     numbered from 1 starting at bay 1 or at the last bay;
//   - zigzagB1S1Side / zigzagNotB1S1Side: one strip snakes through the
//     aisle from the top tier row down, reversing on every row.
//
// A tier's LEDs are shared between its slots with the proportional guard
// layout in slots.go. SetSlotTierLeds bypasses that layout for endcaps,
// OffsetTierLeds shifts an existing tier, and InferPattern recovers a
// pattern from a finished layout.
//
// LedRange and ComputeLedsToLight choose which LEDs to light for a
// location or a position within it. Publisher sends aisle and controller
// LED maps to the message bus.
//
// This package mutates location trees but never locks them; callers run
// it inside location.Store.Update.
package lighting
