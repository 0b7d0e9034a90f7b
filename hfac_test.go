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
	"math"
	"testing"

	"github.com/ctessum/sparse"
)

// column builds a 1 x 1 boundary pair for single-column tests.
func column(bathy, draft float64) (b, d *sparse.DenseArray) {
	b = sparse.ZerosDense(1, 1)
	d = sparse.ZerosDense(1, 1)
	b.Set(bathy, 0, 0)
	d.Set(draft, 0, 0)
	return b, d
}

func TestCalcHFacColumn(t *testing.T) {
	zEdges := []float64{0, -100, -200, -300}
	cases := []struct {
		name         string
		bathy, draft float64
		want         []float64
	}{
		{"full depth", -300, 0, []float64{1, 1, 1}},
		{"partial bottom", -250, 0, []float64{1, 1, 0.5}},
		{"thin sliver snaps to the floor", -210, 0, []float64{1, 1, 0.2}},
		{"sliver below half the floor closes", -205, 0, []float64{1, 1, 0}},
		{"ice shelf cavity", -300, -150, []float64{0, 0.5, 1}},
		{"grounded", 0, 0, []float64{0, 0, 0}},
	}
	for _, c := range cases {
		b, d := column(c.bathy, c.draft)
		hfac, err := CalcHFac(b, d, zEdges, DefaultHFacMin, DefaultHFacMinDr, TGrid)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		for k, want := range c.want {
			if got := hfac.Get(k, 0, 0); different(got, want, 1e-12) {
				t.Errorf("%s: level %d hfac = %g, want %g", c.name, k, got, want)
			}
		}
	}
}

func TestCalcHFacRange(t *testing.T) {
	g := testGrid(t)
	for _, hfac := range []*sparse.DenseArray{g.HFac, g.HFacU, g.HFacV} {
		for _, v := range hfac.Elements {
			if v < 0 || v > 1 {
				t.Fatalf("hfac = %g outside [0,1]", v)
			}
		}
	}
	// hfac and the land mask must agree: a land column has no open
	// fraction anywhere, and a wet column has one.
	for j := 0; j < g.NY; j++ {
		for i := 0; i < g.NX; i++ {
			if (columnSum(g.HFac, j, i) == 0) != (g.LandMask.Get(j, i) == 1) {
				t.Fatalf("column (%d,%d): hfac and land mask disagree", j, i)
			}
		}
	}
}

func TestCalcHFacStaggered(t *testing.T) {
	zEdges := []float64{0, -100, -200, -300}
	bathy := sparse.ZerosDense(1, 2)
	draft := sparse.ZerosDense(1, 2)
	bathy.Set(-100, 0, 0)
	bathy.Set(-300, 0, 1)

	hfacU, err := CalcHFac(bathy, draft, zEdges, DefaultHFacMin, DefaultHFacMinDr, UGrid)
	if err != nil {
		t.Fatal(err)
	}
	// The u-point between the two columns takes the shallower
	// bathymetry.
	want := []float64{1, 0, 0}
	for k, w := range want {
		if got := hfacU.Get(k, 0, 1); different(got, w, 1e-12) {
			t.Errorf("u-point level %d hfac = %g, want %g", k, got, w)
		}
	}
	// The westernmost u-point is one-sided.
	for k, w := range []float64{1, 0, 0} {
		if got := hfacU.Get(k, 0, 0); different(got, w, 1e-12) {
			t.Errorf("edge u-point level %d hfac = %g, want %g", k, got, w)
		}
	}

	if _, err := CalcHFac(bathy, draft, zEdges, DefaultHFacMin, DefaultHFacMinDr, PsiGrid); err == nil {
		t.Error("expected an error for the psi grid")
	}
}

func TestBdryFromHFac(t *testing.T) {
	zEdges := []float64{0, -100, -200, -300}
	b, d := column(-300, -150)
	hfac, err := CalcHFac(b, d, zEdges, DefaultHFacMin, DefaultHFacMinDr, TGrid)
	if err != nil {
		t.Fatal(err)
	}
	bathy, err := BdryFromHFac(BdryBathy, hfac, zEdges)
	if err != nil {
		t.Fatal(err)
	}
	if got := bathy.Get(0, 0); different(got, -300, 1e-12) {
		t.Errorf("reconstructed bathymetry = %g, want -300", got)
	}
	draft, err := BdryFromHFac(BdryDraft, hfac, zEdges)
	if err != nil {
		t.Fatal(err)
	}
	if got := draft.Get(0, 0); different(got, -150, 1e-12) {
		t.Errorf("reconstructed draft = %g, want -150", got)
	}

	// A dry column reconstructs to the zero-fill boundary.
	land := sparse.ZerosDense(3, 1, 1)
	bathy, err = BdryFromHFac(BdryBathy, land, zEdges)
	if err != nil {
		t.Fatal(err)
	}
	if got := bathy.Get(0, 0); got != 0 {
		t.Errorf("dry-column boundary = %g, want 0", got)
	}

	if _, err := BdryFromHFac("top", hfac, zEdges); err == nil {
		t.Error("expected an error for an invalid boundary option")
	}
}

func TestModelBdryRoundTrip(t *testing.T) {
	zEdges := []float64{0, -100, -200, -300}
	dzMax := 100.
	for _, bathy := range []float64{-300, -250, -210, -130} {
		b, d := column(bathy, 0)
		got, err := ModelBdry(BdryBathy, b, d, zEdges, DefaultHFacMin, DefaultHFacMinDr)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got.Get(0, 0)-bathy) > dzMax {
			t.Errorf("model bathymetry %g is more than one cell away from %g", got.Get(0, 0), bathy)
		}
	}
	// Exact when no floor is triggered.
	b, d := column(-250, 0)
	got, err := ModelBdry(BdryBathy, b, d, zEdges, DefaultHFacMin, DefaultHFacMinDr)
	if err != nil {
		t.Fatal(err)
	}
	if v := got.Get(0, 0); different(v, -250, 1e-12) {
		t.Errorf("model bathymetry = %g, want -250 exactly", v)
	}
	// The thin sliver at -210 snaps to the minimum fraction, moving
	// the visible seafloor to -220.
	b, d = column(-210, 0)
	got, err = ModelBdry(BdryBathy, b, d, zEdges, DefaultHFacMin, DefaultHFacMinDr)
	if err != nil {
		t.Fatal(err)
	}
	if v := got.Get(0, 0); different(v, -220, 1e-12) {
		t.Errorf("model bathymetry = %g, want -220 after the floor", v)
	}
}
