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

	"github.com/ctessum/sparse"
)

// Bdry selects which boundary of the water column an operation applies to.
type Bdry string

// The two column boundaries: the seafloor and the ice-shelf base.
const (
	BdryBathy Bdry = "bathy"
	BdryDraft Bdry = "draft"
)

// CalcHFac computes the 3D partial-cell fraction from 2D bathymetry and
// ice-shelf draft on the tracer grid (both signed depths, bathymetry at
// or below draft) and the vertical cell-interface axis zEdges (length
// nz+1, non-positive, decreasing downward), without needing the full
// grid. hFacMin is the minimum open fraction and hFacMinDr the minimum
// open thickness [m]; fractions below half the resulting floor close
// completely and fractions between half the floor and the floor snap up
// to it. For the u and v grids, bathymetry and draft are first moved to
// the western/southern cell edges by taking the shallower bathymetry
// and deeper draft of the two adjacent tracer cells (one-sided at the
// domain edge), then draft is re-clamped to not exceed bathymetry.
func CalcHFac(bathy, draft *sparse.DenseArray, zEdges []float64, hFacMin, hFacMinDr float64, gtype GridType) (*sparse.DenseArray, error) {
	if len(bathy.Shape) != 2 || len(draft.Shape) != 2 {
		return nil, fmt.Errorf("mitpost: CalcHFac: bathymetry and draft must be 2D")
	}
	if bathy.Shape[0] != draft.Shape[0] || bathy.Shape[1] != draft.Shape[1] {
		return nil, fmt.Errorf("mitpost: CalcHFac: bathymetry shape %v does not match draft shape %v",
			bathy.Shape, draft.Shape)
	}
	switch gtype {
	case TGrid:
	case UGrid, VGrid:
		bathy, draft = stagBdry(bathy, draft, gtype)
	default:
		return nil, fmt.Errorf("mitpost: CalcHFac: no hfac exists for the %q grid", gtype)
	}

	nz := len(zEdges) - 1
	ny := bathy.Shape[0]
	nx := bathy.Shape[1]
	hfac := sparse.ZerosDense(nz, ny, nx)
	for k := 0; k < nz; k++ {
		zAbove := zEdges[k]
		zBelow := zEdges[k+1]
		dz := math.Abs(zBelow - zAbove)
		// Minimum-fraction floor for this level.
		limit := math.Max(hFacMin, math.Min(hFacMinDr/dz, 1))
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				b := bathy.Get(j, i)
				d := draft.Get(j, i)
				// Open fraction of the cell: overlap of
				// [bathy, draft] with [zBelow, zAbove].
				var frac float64
				switch {
				case zBelow >= b && zAbove <= d:
					frac = 1 // fully open
				case zBelow < b && zAbove <= d:
					frac = (zAbove - b) / dz // seafloor intrudes
				case zBelow >= b && zAbove > d:
					frac = (d - zBelow) / dz // ice shelf intrudes
				default:
					frac = (d - b) / dz // both intrude
				}
				switch {
				case frac < limit/2:
					frac = 0
				case frac < limit:
					frac = limit
				}
				hfac.Set(frac, k, j, i)
			}
		}
	}
	return hfac, nil
}

// stagBdry moves tracer-grid bathymetry and draft to the western (u) or
// southern (v) edges of each cell.
func stagBdry(bathy, draft *sparse.DenseArray, gtype GridType) (b, d *sparse.DenseArray) {
	ny := bathy.Shape[0]
	nx := bathy.Shape[1]
	b = sparse.ZerosDense(ny, nx)
	d = sparse.ZerosDense(ny, nx)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			jn, in := j, i
			if gtype == UGrid && i > 0 {
				in = i - 1
			} else if gtype == VGrid && j > 0 {
				jn = j - 1
			}
			// Shallower of the two adjacent bathymetries,
			// deeper of the two adjacent drafts.
			b.Set(math.Max(bathy.Get(j, i), bathy.Get(jn, in)), j, i)
			d.Set(math.Min(draft.Get(j, i), draft.Get(jn, in)), j, i)
		}
	}
	// A draft deeper than the bathymetry would imply negative water
	// column thickness.
	for i, bv := range b.Elements {
		if d.Elements[i] < bv {
			d.Elements[i] = bv
		}
	}
	return b, d
}

// BdryFromHFac reconstructs a 2D boundary field (bathymetry or ice
// draft) from a 3D partial-cell array and the vertical interface axis.
// Each column is scanned from the appropriate end (bottom-up for
// bathymetry, top-down for draft); the boundary is placed at the far
// interface of the first wet cell, offset into the cell by its open
// fraction. Columns with no wet cell get boundary value 0.
func BdryFromHFac(option Bdry, hfac *sparse.DenseArray, zEdges []float64) (*sparse.DenseArray, error) {
	if len(hfac.Shape) != 3 {
		return nil, fmt.Errorf("mitpost: BdryFromHFac: hfac must be 3D, got shape %v", hfac.Shape)
	}
	nz := hfac.Shape[0]
	ny := hfac.Shape[1]
	nx := hfac.Shape[2]
	if len(zEdges) != nz+1 {
		return nil, fmt.Errorf("mitpost: BdryFromHFac: have %d interface depths for %d levels", len(zEdges), nz)
	}

	var kVals []int
	switch option {
	case BdryBathy:
		for k := nz - 1; k >= 0; k-- {
			kVals = append(kVals, k)
		}
	case BdryDraft:
		for k := 0; k < nz; k++ {
			kVals = append(kVals, k)
		}
	default:
		return nil, fmt.Errorf("mitpost: BdryFromHFac: invalid option %q", option)
	}

	bdry := sparse.ZerosDense(ny, nx)
	assigned := make([]bool, ny*nx)
	for _, k := range kVals {
		dz := zEdges[k] - zEdges[k+1]
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				if assigned[j*nx+i] {
					continue
				}
				h := hfac.Get(k, j, i)
				if h == 0 {
					continue
				}
				assigned[j*nx+i] = true
				if option == BdryBathy {
					bdry.Set(zEdges[k]-dz*h, j, i)
				} else {
					bdry.Set(zEdges[k]-dz*(1-h), j, i)
				}
			}
		}
	}
	// Unassigned columns are land; their boundary is 0 by convention.
	return bdry, nil
}

// ModelBdry returns the bathymetry or ice-shelf draft that the model
// discretization actually sees: the input boundary quantized through
// the partial-cell fractions, including minimum-thickness adjustments.
func ModelBdry(option Bdry, bathy, draft *sparse.DenseArray, zEdges []float64, hFacMin, hFacMinDr float64) (*sparse.DenseArray, error) {
	hfac, err := CalcHFac(bathy, draft, zEdges, hFacMin, hFacMinDr, TGrid)
	if err != nil {
		return nil, err
	}
	return BdryFromHFac(option, hfac, zEdges)
}

// buildLandMask marks columns with no wet cells.
func buildLandMask(hfac *sparse.DenseArray) *sparse.DenseArray {
	ny := hfac.Shape[1]
	nx := hfac.Shape[2]
	mask := sparse.ZerosDense(ny, nx)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			if columnSum(hfac, j, i) == 0 {
				mask.Set(1, j, i)
			}
		}
	}
	return mask
}

// buildIceMask marks columns that are wet somewhere but closed at the
// surface, i.e. covered by an ice shelf.
func buildIceMask(hfac *sparse.DenseArray) *sparse.DenseArray {
	ny := hfac.Shape[1]
	nx := hfac.Shape[2]
	mask := sparse.ZerosDense(ny, nx)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			if columnSum(hfac, j, i) != 0 && hfac.Get(0, j, i) == 0 {
				mask.Set(1, j, i)
			}
		}
	}
	return mask
}

func columnSum(hfac *sparse.DenseArray, j, i int) float64 {
	var sum float64
	for k := 0; k < hfac.Shape[0]; k++ {
		sum += hfac.Get(k, j, i)
	}
	return sum
}
