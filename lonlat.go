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

	"github.com/ctessum/sparse"
)

// Longitude windows. A grid normalized into [-180,180) has split 180;
// a grid normalized into [0,360) has split 0.
const (
	Split180 = 180
	Split0   = 0
)

// FixLonRange returns a copy of lon with every value shifted by a
// multiple of 360 so that it lies in the half-open window
// [maxLon-360, maxLon).
func FixLonRange(lon []float64, maxLon float64) []float64 {
	out := make([]float64, len(lon))
	for i, v := range lon {
		for v >= maxLon {
			v -= 360
		}
		for v < maxLon-360 {
			v += 360
		}
		out[i] = v
	}
	return out
}

// FixLonRange2D is FixLonRange for a 2D longitude field.
func FixLonRange2D(lon *sparse.DenseArray, maxLon float64) *sparse.DenseArray {
	out := lon.Copy()
	for i, v := range out.Elements {
		for v >= maxLon {
			v -= 360
		}
		for v < maxLon-360 {
			v += 360
		}
		out.Elements[i] = v
	}
	return out
}

// AutoMaxLon chooses the canonical longitude window for a raw axis.
// If the axis contains values both below and above 180 the domain
// straddles the antimeridian and [0,360) is chosen (maxLon 360);
// otherwise [-180,180) is chosen (maxLon 180).
func AutoMaxLon(lon []float64) float64 {
	var below, above bool
	for _, v := range lon {
		if v < 180 {
			below = true
		}
		if v > 180 {
			above = true
		}
	}
	if below && above {
		return 360
	}
	return 180
}

// splitFromMaxLon converts a window upper bound into the split indicator
// stored on a Grid.
func splitFromMaxLon(maxLon float64) int {
	if maxLon == 360 {
		return Split0
	}
	return Split180
}

func maxLonFromSplit(split int) float64 {
	if split == Split0 {
		return 360
	}
	return 180
}

// checkIncreasing verifies that axis is strictly increasing. A
// longitude axis that fails this after normalization describes a domain
// straddling the window boundary, which cannot be represented as a
// simple non-periodic 1D axis.
func checkIncreasing(name string, axis []float64) error {
	for i := 1; i < len(axis); i++ {
		if axis[i] <= axis[i-1] {
			return fmt.Errorf("mitpost: %s axis is not strictly increasing at index %d (%g then %g); "+
				"the domain straddles the longitude window boundary", name, i, axis[i-1], axis[i])
		}
	}
	return nil
}

// checkDecreasing verifies that a depth axis is strictly decreasing
// (depths are non-positive, decreasing downward).
func checkDecreasing(name string, axis []float64) error {
	for i := 1; i < len(axis); i++ {
		if axis[i] >= axis[i-1] {
			return fmt.Errorf("mitpost: %s axis is not strictly decreasing at index %d (%g then %g)",
				name, i, axis[i-1], axis[i])
		}
	}
	return nil
}

// SplitLongitudeAxis rotates a 1D axis about the given pivot, so that
// the array becomes values[split:] followed by values[:split].
func SplitLongitudeAxis(axis []float64, split int) []float64 {
	out := make([]float64, len(axis))
	n := copy(out, axis[split:])
	copy(out[n:], axis[:split])
	return out
}

// SplitLongitude rotates an array about the given pivot along its last
// (longitude) axis. This re-orders a periodic global field so that the
// longitude axis is strictly increasing after a window change.
func SplitLongitude(data *sparse.DenseArray, split int) *sparse.DenseArray {
	out := sparse.ZerosDense(data.Shape...)
	nx := data.Shape[len(data.Shape)-1]
	nrows := len(data.Elements) / nx
	for r := 0; r < nrows; r++ {
		row := data.Elements[r*nx : (r+1)*nx]
		orow := out.Elements[r*nx : (r+1)*nx]
		n := copy(orow, row[split:])
		copy(orow[n:], row[:split])
	}
	return out
}

// AxisEdges converts an axis of cell-centre positions into the nx+1
// positions of the cell boundaries, extrapolating the outermost edges.
func AxisEdges(x []float64) []float64 {
	n := len(x)
	edges := make([]float64, n+1)
	for i := 1; i < n; i++ {
		edges[i] = 0.5 * (x[i-1] + x[i])
	}
	if n >= 3 {
		edges[0] = 2*edges[1] - edges[2]
		edges[n] = 2*edges[n-1] - edges[n-2]
	} else {
		// Too few centres to extrapolate from midpoints; assume
		// uniform spacing.
		dx := x[n-1] - x[0]
		edges[0] = x[0] - dx/2
		edges[n] = x[n-1] + dx/2
	}
	return edges
}
