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

func TestTFreeze(t *testing.T) {
	// Fresh water at the surface freezes just above 0.
	if got := TFreeze(0, 0); different(got, 0.0901, 1e-12) {
		t.Errorf("TFreeze(0,0) = %g, want 0.0901", got)
	}
	// Typical shelf water: salinity 34.5 at 500 m depth.
	want := -0.0575*34.5 - 7.61e-4*500 + 0.0901
	if got := TFreeze(34.5, -500); different(got, want, 1e-12) {
		t.Errorf("TFreeze(34.5,-500) = %g, want %g", got, want)
	}
	// Depth enters through its magnitude; the sign convention of z
	// must not matter.
	if TFreeze(34.5, -500) != TFreeze(34.5, 500) {
		t.Error("freezing point must depend on |z|")
	}
}

func TestTMinusTF(t *testing.T) {
	temp := sparse.ZerosDense(2, 1, 1)
	salt := sparse.ZerosDense(2, 1, 1)
	temp.Set(-1.5, 0, 0, 0)
	temp.Set(-2.0, 1, 0, 0)
	salt.Set(34.5, 0, 0, 0)
	salt.Set(34.5, 1, 0, 0)
	z := []float64{-50, -500}

	out, err := TMinusTF(temp, salt, z)
	if err != nil {
		t.Fatal(err)
	}
	for k := 0; k < 2; k++ {
		want := temp.Get(k, 0, 0) - TFreeze(34.5, z[k])
		if got := out.Get(k, 0, 0); different(got, want, 1e-12) {
			t.Errorf("level %d thermal driving = %g, want %g", k, got, want)
		}
	}

	if _, err := TMinusTF(sparse.ZerosDense(1, 1), salt, z); err == nil {
		t.Error("expected an error for non-3D input")
	}
	if _, err := TMinusTF(temp, salt, []float64{-50}); err == nil {
		t.Error("expected an error for a mismatched depth axis")
	}
}

func TestConvertISMR(t *testing.T) {
	flux := sparse.ZerosDense(1, 1)
	flux.Set(-rhoFW/secPerYear, 0, 0) // melting
	ismr := ConvertISMR(flux)
	if got := ismr.Get(0, 0); different(got, 1, 1e-12) {
		t.Errorf("melt rate = %g m/y, want 1", got)
	}
	// Refreezing flips the sign.
	flux.Set(rhoFW/secPerYear, 0, 0)
	ismr = ConvertISMR(flux)
	if got := ismr.Get(0, 0); different(got, -1, 1e-12) {
		t.Errorf("refreezing rate = %g m/y, want -1", got)
	}
}

func TestTotalMelt(t *testing.T) {
	g := testGrid(t)
	ismr := sparse.ZerosDense(g.NY, g.NX)
	for j := 0; j < g.NY; j++ {
		for i := 0; i < g.NX; i++ {
			ismr.Set(2, j, i) // uniform 2 m/y
		}
	}

	rate, err := TotalMelt(g, ismr, g.FRISMask, "meltrate")
	if err != nil {
		t.Fatal(err)
	}
	if different(rate, 2, 1e-9) {
		t.Errorf("area-averaged melt rate = %g, want 2", rate)
	}

	mass, err := TotalMelt(g, ismr, g.FRISMask, "massloss")
	if err != nil {
		t.Fatal(err)
	}
	// 9 cells of 1e8 m2 each, melting 2 m/y of ice.
	want := 2 * 9 * 1e8 * rhoIce * 1e-12
	if different(mass, want, 1e-9) {
		t.Errorf("mass loss = %g Gt/y, want %g", mass, want)
	}

	if _, err := TotalMelt(g, ismr, g.FRISMask, "volume"); err == nil {
		t.Error("expected an error for an unknown result kind")
	}
	if _, err := TotalMelt(g, ismr, sparse.ZerosDense(g.NY, g.NX), "meltrate"); err == nil {
		t.Error("expected an error for an empty mask")
	}
}
