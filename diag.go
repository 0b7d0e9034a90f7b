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

// Linearized in-situ freezing point coefficients.
const (
	tFreezeA = -0.0575  // [degC/psu]
	tFreezeB = -7.61e-4 // [degC/m]
	tFreezeC = 0.0901   // [degC]
)

// TFreeze returns the in-situ freezing point [degC] of seawater of the
// given salinity [psu] at depth z [m, negative downward], using the
// linearization of the Gibbs function.
func TFreeze(salt, z float64) float64 {
	return tFreezeA*salt + tFreezeB*math.Abs(z) + tFreezeC
}

// TMinusTF returns temperature minus the local in-situ freezing point
// for 3D temperature and salinity fields, the thermal driving that
// controls ice-shelf basal melting.
func TMinusTF(temp, salt *sparse.DenseArray, z []float64) (*sparse.DenseArray, error) {
	if len(temp.Shape) != 3 {
		return nil, fmt.Errorf("mitpost: TMinusTF: temperature must be 3D, got shape %v", temp.Shape)
	}
	if len(z) != temp.Shape[0] {
		return nil, fmt.Errorf("mitpost: TMinusTF: %d depth levels for temperature shape %v", len(z), temp.Shape)
	}
	nz := temp.Shape[0]
	ny := temp.Shape[1]
	nx := temp.Shape[2]
	out := sparse.ZerosDense(nz, ny, nx)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				t := temp.Get(k, j, i)
				out.Set(t-TFreeze(salt.Get(k, j, i), z[k]), k, j, i)
			}
		}
	}
	return out, nil
}

// ConvertISMR converts an ice-shelf freshwater flux [kg/m2/s, negative
// for melting] into an ice-shelf melt rate [m/y of freshwater, positive
// for melting].
func ConvertISMR(shifwflx *sparse.DenseArray) *sparse.DenseArray {
	out := shifwflx.Copy()
	for i, v := range out.Elements {
		out.Elements[i] = -v / rhoFW * secPerYear
	}
	return out
}

// TotalMelt integrates an ice-shelf melt rate [m/y] over the cells
// selected by mask. result "massloss" is the basal mass loss [Gt/y];
// result "meltrate" is the area-averaged melt rate [m/y].
func TotalMelt(g *Grid, ismr, mask *sparse.DenseArray, result string) (float64, error) {
	var melt, area float64
	for j := 0; j < g.NY; j++ {
		for i := 0; i < g.NX; i++ {
			if mask.Get(j, i) == 0 {
				continue
			}
			da := g.DA.Get(j, i)
			melt += ismr.Get(j, i) * da
			area += da
		}
	}
	switch result {
	case "massloss":
		return melt * rhoIce * 1e-12, nil
	case "meltrate":
		if area == 0 {
			return 0, fmt.Errorf("mitpost: TotalMelt: mask selects no cells")
		}
		return melt / area, nil
	default:
		return 0, fmt.Errorf("mitpost: TotalMelt: result must be massloss or meltrate, got %q", result)
	}
}
