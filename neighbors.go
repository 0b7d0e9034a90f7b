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

// NeighbourCount returns, for each cell of a 2D 0/1 mask, the number of
// its 4-connected neighbours that are set. Cells on the domain edge
// only count the neighbours that exist.
func NeighbourCount(mask *sparse.DenseArray) *sparse.DenseArray {
	ny := mask.Shape[0]
	nx := mask.Shape[1]
	count := sparse.ZerosDense(ny, nx)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			var n float64
			if i > 0 && mask.Get(j, i-1) != 0 {
				n++
			}
			if i < nx-1 && mask.Get(j, i+1) != 0 {
				n++
			}
			if j > 0 && mask.Get(j-1, i) != 0 {
				n++
			}
			if j < ny-1 && mask.Get(j+1, i) != 0 {
				n++
			}
			count.Set(n, j, i)
		}
	}
	return count
}

// IceShelfFrontPoints returns a mask of the ice-shelf points that have
// at least one open-ocean 4-neighbour, limited to the given bounds (nil
// means the whole domain). Pass a region-specific ice mask (such as the
// FRIS mask) to restrict the front to one shelf.
func (g *Grid) IceShelfFrontPoints(iceMask *sparse.DenseArray, gtype GridType, bounds *Bounds) (*sparse.DenseArray, error) {
	if iceMask == nil {
		var err error
		iceMask, err = g.GetIceMask(gtype)
		if err != nil {
			return nil, err
		}
	}
	openOcean, err := g.GetOpenOceanMask(gtype)
	if err != nil {
		return nil, err
	}
	lon, lat, err := g.GetLonLat(gtype)
	if err != nil {
		return nil, err
	}
	if iceMask.Shape[0] != openOcean.Shape[0] || iceMask.Shape[1] != openOcean.Shape[1] {
		return nil, fmt.Errorf("mitpost: IceShelfFrontPoints: ice mask shape %v does not match grid", iceMask.Shape)
	}

	nOpen := NeighbourCount(openOcean)
	front := sparse.ZerosDense(iceMask.Shape...)
	for j := 0; j < iceMask.Shape[0]; j++ {
		for i := 0; i < iceMask.Shape[1]; i++ {
			if iceMask.Get(j, i) == 0 || nOpen.Get(j, i) == 0 {
				continue
			}
			if bounds != nil && !bounds.contains(lon.Get(j, i), lat.Get(j, i)) {
				continue
			}
			front.Set(1, j, i)
		}
	}
	return front, nil
}
