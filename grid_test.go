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
	"testing"

	"github.com/ctessum/sparse"
)

func different(a, b, tolerance float64) bool {
	return math.Abs(a-b) > tolerance
}

// mapSource is an in-memory ArraySource for testing.
type mapSource map[string]*sparse.DenseArray

func (m mapSource) Read(name string) (*sparse.DenseArray, error) {
	a, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("mitpost: variable %s not found in test source", name)
	}
	return a, nil
}

func (m mapSource) Close() error { return nil }

func oneD(vals ...float64) *sparse.DenseArray {
	a := sparse.ZerosDense(len(vals))
	copy(a.Elements, vals)
	return a
}

func constant2D(v float64, ny, nx int) *sparse.DenseArray {
	a := sparse.ZerosDense(ny, nx)
	for i := range a.Elements {
		a.Elements[i] = v
	}
	return a
}

// testGridSource builds a small synthetic Weddell Sea domain: 8 x 6
// columns over 4 levels, with the two southernmost rows grounded, the
// next two under an ice shelf, and the two northernmost open ocean.
func testGridSource(t *testing.T) mapSource {
	lon := []float64{-75, -65, -55, -45, -35, -25, -15, -5}
	lonC := []float64{-80, -70, -60, -50, -40, -30, -20, -10, 0}
	lat := []float64{-82, -80, -78, -76, -74, -72}
	latC := []float64{-83, -81, -79, -77, -75, -73, -71}
	zEdges := []float64{0, -100, -200, -400, -600}
	nx := len(lon)
	ny := len(lat)

	bathy := sparse.ZerosDense(ny, nx)
	draft := sparse.ZerosDense(ny, nx)
	wct := sparse.ZerosDense(ny, nx)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			switch {
			case j < 2: // grounded
			case j < 4: // ice shelf cavity
				bathy.Set(-400, j, i)
				draft.Set(-100, j, i)
				wct.Set(300, j, i)
			default: // open ocean
				bathy.Set(-600, j, i)
				wct.Set(600, j, i)
			}
		}
	}
	// A nonzero stored draft on a grounded column; construction must
	// zero it.
	storedDraft := draft.Copy()
	storedDraft.Set(-999, 0, 0)

	hfacC, err := CalcHFac(bathy, draft, zEdges, DefaultHFacMin, DefaultHFacMinDr, TGrid)
	if err != nil {
		t.Fatal(err)
	}
	hfacW, err := CalcHFac(bathy, draft, zEdges, DefaultHFacMin, DefaultHFacMinDr, UGrid)
	if err != nil {
		t.Fatal(err)
	}
	hfacS, err := CalcHFac(bathy, draft, zEdges, DefaultHFacMin, DefaultHFacMinDr, VGrid)
	if err != nil {
		t.Fatal(err)
	}

	lon2D, lat2D := LonLat2D(lon, lat)
	lonG2D, latG2D := LonLat2D(lonC[:nx], latC[:ny])

	src := mapSource{
		varLon1D:        oneD(lon...),
		varLat1D:        oneD(lat...),
		varLonCorners1D: oneD(lonC...),
		varLatCorners1D: oneD(latC...),
		varLon2D:        lon2D,
		varLat2D:        lat2D,
		varLonCorners2D: lonG2D,
		varLatCorners2D: latG2D,
		varZ:            oneD(-50, -150, -300, -500),
		varZEdges:       oneD(zEdges...),
		varZW:           oneD(0, -100, -200, -400),
		varDZ:           oneD(100, 100, 200, 200),
		varDZT:          oneD(50, 100, 175, 250, 100),
		varHFac:         hfacC,
		varHFacU:        hfacW,
		varHFacV:        hfacS,
		varBathy:        bathy,
		varDraft:        storedDraft,
		varWCT:          wct,
	}
	for _, name := range []string{varDX, varDY, varDXT, varDYT, varDYU, varDXV, varDXPsi, varDYPsi} {
		src[name] = constant2D(1e4, ny, nx)
	}
	for _, name := range []string{varDA, varDAU, varDAV, varDAPsi} {
		src[name] = constant2D(1e8, ny, nx)
	}
	return src
}

func testGrid(t *testing.T) *Grid {
	g, err := NewGridFromSource(testGridSource(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func countMask(mask *sparse.DenseArray) int {
	var n int
	for _, v := range mask.Elements {
		if v != 0 {
			n++
		}
	}
	return n
}

func TestNewGrid(t *testing.T) {
	g := testGrid(t)
	if g.NX != 8 || g.NY != 6 || g.NZ != 4 {
		t.Fatalf("grid dimensions %d x %d x %d, want 8 x 6 x 4", g.NX, g.NY, g.NZ)
	}
	if g.Split != Split180 {
		t.Errorf("split = %d, want %d", g.Split, Split180)
	}
	if n := countMask(g.LandMask); n != 16 {
		t.Errorf("land mask has %d cells, want 16", n)
	}
	if n := countMask(g.IceMask); n != 16 {
		t.Errorf("ice mask has %d cells, want 16", n)
	}
	if n := countMask(g.FRISMask); n != 9 {
		t.Errorf("FRIS mask has %d cells, want 9", n)
	}
	if n := countMask(g.EWedMask); n != 3 {
		t.Errorf("Eastern Weddell mask has %d cells, want 3", n)
	}
}

func TestNewGridDraftZeroedOutsideIce(t *testing.T) {
	g := testGrid(t)
	if v := g.Draft.Get(0, 0); v != 0 {
		t.Errorf("draft on a grounded column = %g, want 0", v)
	}
	if v := g.Draft.Get(2, 0); v != -100 {
		t.Errorf("draft under the ice shelf = %g, want -100", v)
	}
}

func TestGridVolume(t *testing.T) {
	g := testGrid(t)
	// An open-ocean column is fully wet through all four levels.
	var col float64
	for k := 0; k < g.NZ; k++ {
		col += g.Volume.Get(k, 5, 0)
	}
	if different(col, 1e8*600, 1e-3) {
		t.Errorf("open-ocean column volume = %g, want %g", col, 1e8*600)
	}
	// Grounded columns contribute nothing.
	for k := 0; k < g.NZ; k++ {
		if v := g.Volume.Get(k, 0, 0); v != 0 {
			t.Errorf("grounded cell volume = %g at level %d, want 0", v, k)
		}
	}
	ice := g.TotalVolume(g.IceMask)
	land := g.TotalVolume(g.LandMask)
	open, err := g.GetOpenOceanMask(TGrid)
	if err != nil {
		t.Fatal(err)
	}
	if total := g.TotalVolume(nil); different(total, ice+land+g.TotalVolume(open), 1e-3) {
		t.Errorf("mask volumes do not partition the total: %g", total)
	}
}

func TestGetLonLat(t *testing.T) {
	g := testGrid(t)
	lon, lat, err := g.GetLonLat(PsiGrid)
	if err != nil {
		t.Fatal(err)
	}
	if lon != g.LonCorners2D || lat != g.LatCorners2D {
		t.Error("psi coordinates are not the corner pair")
	}
	lon, lat, err = g.GetLonLat(WGrid)
	if err != nil {
		t.Fatal(err)
	}
	if lon != g.Lon2D || lat != g.Lat2D {
		t.Error("w coordinates are not the tracer pair")
	}
	if _, _, err := g.GetLonLat("q"); err == nil {
		t.Error("expected an error for an invalid grid type")
	}
	if _, _, err := g.GetLonLat1D(PsiGrid); err == nil {
		t.Error("expected an error for psi 1D axes")
	}
}

func TestAccessorFailures(t *testing.T) {
	g := testGrid(t)
	for _, gtype := range []GridType{PsiGrid, WGrid} {
		if _, err := g.GetHFac(gtype); err == nil {
			t.Errorf("GetHFac(%q): expected an error", gtype)
		}
		if _, err := g.GetLandMask(gtype); err == nil {
			t.Errorf("GetLandMask(%q): expected an error", gtype)
		}
		if _, err := g.GetIceMask(gtype); err == nil {
			t.Errorf("GetIceMask(%q): expected an error", gtype)
		}
		if _, err := g.GetFRISMask(gtype); err == nil {
			t.Errorf("GetFRISMask(%q): expected an error", gtype)
		}
	}
	if _, err := g.GetDA("q"); err == nil {
		t.Error("GetDA: expected an error for an invalid grid type")
	}
}

func TestGetOpenOceanMask(t *testing.T) {
	g := testGrid(t)
	open, err := g.GetOpenOceanMask(TGrid)
	if err != nil {
		t.Fatal(err)
	}
	for i := range open.Elements {
		sum := open.Elements[i] + g.LandMask.Elements[i] + g.IceMask.Elements[i]
		if sum != 1 {
			t.Fatalf("cell %d belongs to %g of the land/ice/open partition, want exactly 1", i, sum)
		}
	}
}

func TestGetCoastMask(t *testing.T) {
	g := testGrid(t)
	coast, err := g.GetCoastMask(TGrid, false)
	if err != nil {
		t.Fatal(err)
	}
	// Only the first open-ocean row touches the ice front.
	if n := countMask(coast); n != 8 {
		t.Errorf("coast mask has %d cells, want 8", n)
	}
	for i := 0; i < g.NX; i++ {
		if coast.Get(4, i) != 1 {
			t.Errorf("column %d of the ice-front row is not coast", i)
		}
	}
}

func TestGetBIMask(t *testing.T) {
	g := testGrid(t)
	bi, err := g.GetBIMask(TGrid)
	if err != nil {
		t.Fatal(err)
	}
	if n := countMask(bi); n != 2 {
		t.Errorf("island mask has %d cells, want 2", n)
	}
	for i := range bi.Elements {
		if bi.Elements[i] == 1 && g.LandMask.Elements[i] == 0 {
			t.Fatal("island mask contains a non-land cell")
		}
	}
}

func TestResolveGrid(t *testing.T) {
	g := testGrid(t)
	got, err := ResolveGrid(g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != g {
		t.Error("ResolveGrid did not pass the grid through")
	}
	if _, err := ResolveGrid(42, nil); err == nil {
		t.Error("expected an error for an unsupported argument type")
	}
}

func TestNewGridMissingVariable(t *testing.T) {
	src := testGridSource(t)
	delete(src, varHFac)
	if _, err := NewGridFromSource(src, nil); err == nil {
		t.Error("expected an error for a missing required variable")
	}
}
