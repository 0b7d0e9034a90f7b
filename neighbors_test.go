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
	"testing"

	"github.com/ctessum/sparse"
)

func TestNeighbourCount(t *testing.T) {
	mask := sparse.ZerosDense(3, 3)
	mask.Set(1, 1, 1) // centre only
	count := NeighbourCount(mask)
	want := [][]float64{
		{0, 1, 0},
		{1, 0, 1},
		{0, 1, 0},
	}
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			if got := count.Get(j, i); got != want[j][i] {
				t.Errorf("count(%d,%d) = %g, want %g", j, i, got, want[j][i])
			}
		}
	}

	// Edge cells only count existing neighbours.
	full := constant2D(1, 2, 2)
	count = NeighbourCount(full)
	for j := 0; j < 2; j++ {
		for i := 0; i < 2; i++ {
			if got := count.Get(j, i); got != 2 {
				t.Errorf("corner count = %g, want 2", got)
			}
		}
	}
}

func TestIceShelfFrontPoints(t *testing.T) {
	g := testGrid(t)
	front, err := g.IceShelfFrontPoints(nil, TGrid, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Only the northernmost ice row touches the open ocean.
	if n := countMask(front); n != 8 {
		t.Errorf("front has %d points, want 8", n)
	}
	for i := 0; i < g.NX; i++ {
		if front.Get(3, i) != 1 {
			t.Errorf("column %d of the front row is missing", i)
		}
	}

	// Restricting to the FRIS mask keeps only its columns.
	front, err = g.IceShelfFrontPoints(g.FRISMask, TGrid, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n := countMask(front); n != 4 {
		t.Errorf("FRIS front has %d points, want 4", n)
	}

	// Bounds narrow it further.
	bounds := &Bounds{LonMin: -80, LonMax: -60, LatMin: -80, LatMax: -70}
	front, err = g.IceShelfFrontPoints(nil, TGrid, bounds)
	if err != nil {
		t.Fatal(err)
	}
	if n := countMask(front); n != 2 {
		t.Errorf("bounded front has %d points, want 2", n)
	}
}
