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

func TestFixLonRange(t *testing.T) {
	in := []float64{-400, -180, -30, 0, 90, 179.9, 180, 360, 540}
	for _, maxLon := range []float64{180, 360} {
		out := FixLonRange(in, maxLon)
		for i, v := range out {
			if v < maxLon-360 || v >= maxLon {
				t.Errorf("maxLon %g: %g normalized to %g, outside [%g,%g)", maxLon, in[i], v, maxLon-360, maxLon)
			}
			if r := math.Mod(v-in[i], 360); r != 0 {
				t.Errorf("maxLon %g: %g normalized to %g is not a multiple of 360 away", maxLon, in[i], v)
			}
		}
		// Idempotence.
		again := FixLonRange(out, maxLon)
		for i := range out {
			if again[i] != out[i] {
				t.Errorf("maxLon %g: normalization is not idempotent at index %d", maxLon, i)
			}
		}
	}
}

func TestAutoMaxLon(t *testing.T) {
	cases := []struct {
		lon  []float64
		want float64
	}{
		{[]float64{-75, -45, -5}, 180},
		{[]float64{0, 90, 179}, 180},
		{[]float64{170, 180, 190}, 360},
		{[]float64{150, 210}, 360},
		{[]float64{185, 200, 355}, 180},
	}
	for _, c := range cases {
		if got := AutoMaxLon(c.lon); got != c.want {
			t.Errorf("AutoMaxLon(%v) = %g, want %g", c.lon, got, c.want)
		}
	}
}

func TestCheckIncreasing(t *testing.T) {
	if err := checkIncreasing("longitude", []float64{-10, 0, 10}); err != nil {
		t.Error(err)
	}
	if err := checkIncreasing("longitude", []float64{170, -170, -160}); err == nil {
		t.Error("expected an error for an axis straddling the window boundary")
	}
	if err := checkDecreasing("depth", []float64{-50, -150, -300}); err != nil {
		t.Error(err)
	}
	if err := checkDecreasing("depth", []float64{-50, -50, -300}); err == nil {
		t.Error("expected an error for a non-decreasing depth axis")
	}
}

func TestSplitLongitude(t *testing.T) {
	axis := []float64{120, 150, -180, -150}
	got := SplitLongitudeAxis(axis, 2)
	want := []float64{-180, -150, 120, 150}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rotated axis = %v, want %v", got, want)
		}
	}

	data := sparse.ZerosDense(2, 4)
	copy(data.Elements, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	out := SplitLongitude(data, 2)
	want = []float64{3, 4, 1, 2, 7, 8, 5, 6}
	for i := range want {
		if out.Elements[i] != want[i] {
			t.Fatalf("rotated field = %v, want %v", out.Elements, want)
		}
	}
}

func TestAxisEdges(t *testing.T) {
	edges := AxisEdges([]float64{-75, -65, -55})
	want := []float64{-80, -70, -60, -50}
	for i := range want {
		if different(edges[i], want[i], 1e-12) {
			t.Fatalf("edges = %v, want %v", edges, want)
		}
	}
	// Two centres fall back to uniform spacing.
	edges = AxisEdges([]float64{0, 10})
	want = []float64{-5, 5, 15}
	for i := range want {
		if different(edges[i], want[i], 1e-12) {
			t.Fatalf("edges = %v, want %v", edges, want)
		}
	}
}
