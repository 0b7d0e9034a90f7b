/*
Copyright © 2019 the mitpost authors.
This file is part of mitpost.

mitpost is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

mitpost is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with mitpost.  If not, see <http://www.gnu.org/licenses/>.
*/

package mitpost

import (
	"fmt"
	"math"

	"github.com/BurntSushi/toml"
	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// Bounds is an axis-aligned lon/lat box, in the [-180,180) convention
// unless noted otherwise.
type Bounds struct {
	LonMin, LonMax float64
	LatMin, LatMax float64
}

func (b Bounds) contains(lon, lat float64) bool {
	return lon >= b.LonMin && lon <= b.LonMax && lat >= b.LatMin && lat <= b.LatMax
}

// shifted returns the box re-expressed for a grid normalized into the
// given window: bounds specified in [-180,180) must move up by 360 when
// the grid longitudes live in [0,360).
func (b Bounds) shifted(split int) Bounds {
	if split != Split0 {
		return b
	}
	out := b
	if out.LonMin < 0 {
		out.LonMin += 360
	}
	if out.LonMax < 0 {
		out.LonMax += 360
	}
	return out
}

// geomBounds converts to the geom representation for callers doing
// geometric set operations.
func (b Bounds) geomBounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: b.LonMin, Y: b.LatMin},
		Max: geom.Point{X: b.LonMax, Y: b.LatMax},
	}
}

// RegionConfig holds the geographic constants that parameterize the
// named region masks. It is plain data: construct one (or load it from
// TOML), then treat it as immutable.
type RegionConfig struct {
	// FRIS is the overall bounding box of the Filchner-Ronne ice
	// shelf complex. The shelf is C-shaped, so the box alone
	// over-selects; it is split at FRISSplitLon into two boxes with
	// separate northern cutoffs tracing the coastline.
	FRIS           Bounds
	FRISSplitLon   float64
	FRISCutoffWest float64 // northern latitude cutoff west of the split
	FRISCutoffEast float64 // northern latitude cutoff east of the split

	// EWed bounds the Eastern Weddell ice shelves.
	EWed Bounds

	// SWSShelf bounds the Southern Weddell Sea continental shelf,
	// delineated by bathymetry no deeper than SWSShelfH0 [m].
	SWSShelf   Bounds
	SWSShelfH0 float64
	// SWSShelfLine divides the inner shelf (toward the ice front,
	// below the line) from the outer shelf.
	SWSShelfLine [2]geom.Point

	// A23A bounds the search region for the grounded iceberg A-23A,
	// excluded from coast masks by default.
	A23A Bounds

	// BerknerIsland bounds Berkner Island.
	BerknerIsland Bounds
}

// DefaultRegionConfig returns the standard Weddell Sea region bounds.
func DefaultRegionConfig() RegionConfig {
	return RegionConfig{
		FRIS:           Bounds{LonMin: -85, LonMax: -29, LatMin: -84, LatMax: -74},
		FRISSplitLon:   -45,
		FRISCutoffWest: -74.7,
		FRISCutoffEast: -77.85,
		EWed:           Bounds{LonMin: -30, LonMax: 40, LatMin: -77, LatMax: -65},
		SWSShelf:       Bounds{LonMin: -70, LonMax: -30, LatMin: -79, LatMax: -72},
		SWSShelfH0:     -1250,
		SWSShelfLine: [2]geom.Point{
			{X: -70, Y: -72},
			{X: -15, Y: -80},
		},
		A23A:          Bounds{LonMin: -47, LonMax: -38, LatMin: -77, LatMax: -75},
		BerknerIsland: Bounds{LonMin: -55, LonMax: -41, LatMin: -81, LatMax: -77},
	}
}

// LoadRegionConfig reads a RegionConfig from a TOML file. Fields absent
// from the file keep their default values.
func LoadRegionConfig(path string) (RegionConfig, error) {
	rc := DefaultRegionConfig()
	if _, err := toml.DecodeFile(path, &rc); err != nil {
		return RegionConfig{}, fmt.Errorf("mitpost: reading region config %s: %v", path, err)
	}
	return rc, nil
}

// buildFRISMask selects the FRIS ice-shelf points: the union of two
// boxes split at rc.FRISSplitLon, each with its own northern cutoff,
// intersected with the ice mask.
func buildFRISMask(iceMask, lon, lat *sparse.DenseArray, rc *RegionConfig, split int) *sparse.DenseArray {
	boxes := [2]Bounds{
		{LonMin: rc.FRIS.LonMin, LonMax: rc.FRISSplitLon, LatMin: rc.FRIS.LatMin, LatMax: rc.FRISCutoffWest},
		{LonMin: rc.FRISSplitLon, LonMax: rc.FRIS.LonMax, LatMin: rc.FRIS.LatMin, LatMax: rc.FRISCutoffEast},
	}
	mask := sparse.ZerosDense(iceMask.Shape...)
	for _, box := range boxes {
		box = box.shifted(split)
		for i, m := range iceMask.Elements {
			if m != 0 && box.contains(lon.Elements[i], lat.Elements[i]) {
				mask.Elements[i] = 1
			}
		}
	}
	return mask
}

// buildBoxIceMask selects the ice-shelf points inside one box.
func buildBoxIceMask(iceMask, lon, lat *sparse.DenseArray, box Bounds, split int) *sparse.DenseArray {
	box = box.shifted(split)
	mask := sparse.ZerosDense(iceMask.Shape...)
	for i, m := range iceMask.Elements {
		if m != 0 && box.contains(lon.Elements[i], lat.Elements[i]) {
			mask.Elements[i] = 1
		}
	}
	return mask
}

// buildSWSShelfMask selects the Southern Weddell Sea continental shelf:
// open-ocean points in the box with bathymetry at or above the
// threshold depth, then splits it into inner and outer parts about the
// dividing line.
func buildSWSShelfMask(landMask, iceMask, bathy, lon, lat *sparse.DenseArray, rc *RegionConfig, split int) (shelf, inner, outer *sparse.DenseArray) {
	box := rc.SWSShelf.shifted(split)
	p0, p1 := rc.SWSShelfLine[0], rc.SWSShelfLine[1]
	if split == Split0 {
		if p0.X < 0 {
			p0.X += 360
		}
		if p1.X < 0 {
			p1.X += 360
		}
	}

	shelf = sparse.ZerosDense(landMask.Shape...)
	inner = sparse.ZerosDense(landMask.Shape...)
	outer = sparse.ZerosDense(landMask.Shape...)
	slope := (p1.Y - p0.Y) / (p1.X - p0.X)
	for i := range landMask.Elements {
		if landMask.Elements[i] != 0 || iceMask.Elements[i] != 0 {
			continue
		}
		if bathy.Elements[i] < rc.SWSShelfH0 {
			continue
		}
		if !box.contains(lon.Elements[i], lat.Elements[i]) {
			continue
		}
		shelf.Elements[i] = 1
		// Latitude of the dividing line at this longitude.
		limit := slope*(lon.Elements[i]-p0.X) + p0.Y
		if lat.Elements[i] <= limit {
			inner.Elements[i] = 1
		} else {
			outer.Elements[i] = 1
		}
	}
	return shelf, inner, outer
}

// MaskBox writes maskVal into data at every point inside the box.
func MaskBox(data, lon, lat *sparse.DenseArray, box Bounds, maskVal float64) *sparse.DenseArray {
	out := data.Copy()
	for i := range out.Elements {
		if box.contains(lon.Elements[i], lat.Elements[i]) {
			out.Elements[i] = maskVal
		}
	}
	return out
}

// MaskAboveLine writes maskVal into data at every point north of the
// line segment from p0 to p1 (within the segment's longitude range).
func MaskAboveLine(data, lon, lat *sparse.DenseArray, p0, p1 geom.Point, maskVal float64) *sparse.DenseArray {
	return maskLine(data, lon, lat, p0, p1, true, maskVal)
}

// MaskBelowLine writes maskVal into data at every point south of the
// line segment from p0 to p1.
func MaskBelowLine(data, lon, lat *sparse.DenseArray, p0, p1 geom.Point, maskVal float64) *sparse.DenseArray {
	return maskLine(data, lon, lat, p0, p1, false, maskVal)
}

func maskLine(data, lon, lat *sparse.DenseArray, p0, p1 geom.Point, above bool, maskVal float64) *sparse.DenseArray {
	west := math.Min(p0.X, p1.X)
	east := math.Max(p0.X, p1.X)
	slope := (p1.Y - p0.Y) / (p1.X - p0.X)
	out := data.Copy()
	for i := range out.Elements {
		x := lon.Elements[i]
		if x < west || x > east {
			continue
		}
		limit := slope*(x-p0.X) + p0.Y
		if (above && lat.Elements[i] >= limit) || (!above && lat.Elements[i] <= limit) {
			out.Elements[i] = maskVal
		}
	}
	return out
}

// MaskIceShelfBox writes maskVal into omask at the ice-shelf points
// (imask set) inside the box.
func MaskIceShelfBox(omask, imask, lon, lat *sparse.DenseArray, box Bounds, maskVal float64) *sparse.DenseArray {
	out := omask.Copy()
	for i := range out.Elements {
		if imask.Elements[i] != 0 && box.contains(lon.Elements[i], lat.Elements[i]) {
			out.Elements[i] = maskVal
		}
	}
	return out
}
