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
	log "github.com/sirupsen/logrus"
)

// Canonical variable names in a SOSE-style global grid store. The
// corner axes hold the west/south cell edges, one per cell.
const (
	soseVarLon      = "XC"
	soseVarLat      = "YC"
	soseVarLonEdges = "XG"
	soseVarLatEdges = "YG"
	soseVarZ        = "Z"
)

// SOSEGrid adapts a globally-periodic source grid (such as the Southern
// Ocean State Estimate) to a regional target Grid. At construction it
// trims and/or extends the native longitude, latitude, and depth axes
// to cover the target domain, and records the index mapping; ReadField
// then replays the same transformation on every field read from the
// source, so all fields arrive already expressed on the adapted axes.
type SOSEGrid struct {
	NX, NY, NZ int

	// Split is the longitude window the axes were normalized into,
	// matching the target grid when one was given.
	Split int

	// Adapted 1D axes. LonEdges/LatEdges hold west/south cell edges
	// (one per cell, like the native store).
	Lon1D, Lat1D       []float64
	LonEdges, LatEdges []float64
	Z, ZEdges          []float64

	// ISplit is the pivot used to rotate the periodic longitude axis
	// into increasing order after the window change; 0 means no
	// rotation was needed.
	ISplit int

	trimExtend bool

	// Index windows mapping the native arrays into the adapted ones:
	// native[…0Before:…1Before] lands at adapted[…0After:…1After].
	// Adapted cells outside [0After,1After) were synthesized by
	// extension and hold no source data.
	i0Before, i1Before, i0After, i1After int
	j0Before, j1Before, j0After, j1After int
	k0Before, k1Before, k0After, k1After int

	nxNative, nyNative, nzNative int
}

// NewSOSEGrid reads the native axes from the grid store at path and
// adapts them to the target Grid's domain. A nil target skips the
// trim/extend step: the axes are normalized into the [0,360) window and
// every field reads back whole, after the longitude rotation only.
func NewSOSEGrid(path string, target *Grid) (*SOSEGrid, error) {
	src, err := OpenSource(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return NewSOSEGridFromSource(src, target)
}

// NewSOSEGridFromSource is NewSOSEGrid for an already-open ArraySource.
func NewSOSEGridFromSource(src ArraySource, target *Grid) (*SOSEGrid, error) {
	g := &SOSEGrid{Split: Split0}
	if target != nil {
		g.Split = target.Split
		g.trimExtend = true
	}

	lon, err := read1D(src, soseVarLon)
	if err != nil {
		return nil, err
	}
	lat, err := read1D(src, soseVarLat)
	if err != nil {
		return nil, err
	}
	lonEdges, err := read1D(src, soseVarLonEdges)
	if err != nil {
		return nil, err
	}
	latEdges, err := read1D(src, soseVarLatEdges)
	if err != nil {
		return nil, err
	}
	z, err := read1D(src, soseVarZ)
	if err != nil {
		return nil, err
	}
	g.nxNative = len(lon)
	g.nyNative = len(lat)
	g.nzNative = len(z)
	if len(lonEdges) != g.nxNative || len(latEdges) != g.nyNative {
		return nil, fmt.Errorf("mitpost: SOSE edge axes have lengths %d/%d, want %d/%d",
			len(lonEdges), len(latEdges), g.nxNative, g.nyNative)
	}
	if err := checkDecreasing("SOSE depth", z); err != nil {
		return nil, err
	}

	// Normalize the periodic longitude axis into the target window and
	// rotate it back into increasing order across the old seam.
	maxLon := maxLonFromSplit(g.Split)
	lon = FixLonRange(lon, maxLon)
	lonEdges = FixLonRange(lonEdges, maxLon)
	g.ISplit = splitPivot(lon, g.Split)
	if g.ISplit != 0 {
		lon = SplitLongitudeAxis(lon, g.ISplit)
		lonEdges = SplitLongitudeAxis(lonEdges, g.ISplit)
	}
	// The west edge of the first cell can land one period high when
	// the pivot sits exactly on the seam.
	if lonEdges[0] > lon[0] {
		lonEdges[0] -= 360
	}
	if err := checkIncreasing("SOSE longitude", lon); err != nil {
		return nil, err
	}
	if err := checkIncreasing("SOSE corner longitude", lonEdges); err != nil {
		return nil, err
	}
	if err := checkIncreasing("SOSE latitude", lat); err != nil {
		return nil, err
	}

	if !g.trimExtend {
		g.Lon1D, g.LonEdges = lon, lonEdges
		g.Lat1D, g.LatEdges = lat, latEdges
		g.Z = z
		g.NX, g.NY, g.NZ = g.nxNative, g.nyNative, g.nzNative
		g.i1Before, g.i1After = g.NX, g.NX
		g.j1Before, g.j1After = g.NY, g.NY
		g.k1Before, g.k1After = g.NZ, g.NZ
		g.ZEdges = AxisEdges(g.Z)
		log.WithFields(log.Fields{
			"nx": g.NX, "ny": g.NY, "nz": g.NZ, "i_split": g.ISplit,
		}).Info("constructed SOSE grid without a target domain")
		return g, nil
	}

	if err := g.lonWindow(lon, lonEdges, target); err != nil {
		return nil, err
	}
	if err := g.latWindow(lat, latEdges, target); err != nil {
		return nil, err
	}
	if err := g.depthWindow(z, target); err != nil {
		return nil, err
	}
	g.ZEdges = AxisEdges(g.Z)

	if err := g.checkBrackets(target); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"nx": g.NX, "ny": g.NY, "nz": g.NZ, "i_split": g.ISplit,
		"i_window": fmt.Sprintf("[%d:%d)->[%d:%d)", g.i0Before, g.i1Before, g.i0After, g.i1After),
		"j_window": fmt.Sprintf("[%d:%d)->[%d:%d)", g.j0Before, g.j1Before, g.j0After, g.j1After),
		"k_window": fmt.Sprintf("[%d:%d)->[%d:%d)", g.k0Before, g.k1Before, g.k0After, g.k1After),
	}).Info("constructed SOSE grid adapted to target domain")
	return g, nil
}

// splitPivot locates the rotation pivot for a normalized periodic
// longitude axis: with the [-180,180) window, the first negative entry;
// otherwise the first entry that breaks increasing order. A pivot of 0
// means the axis needs no rotation.
func splitPivot(lon []float64, split int) int {
	if split == Split180 {
		for i, v := range lon {
			if v < 0 {
				return i
			}
		}
		return 0
	}
	for i := 1; i < len(lon); i++ {
		if lon[i] < lon[i-1] {
			return i
		}
	}
	return 0
}

// lonWindow trims the longitude axis to the target's west/east bounds.
// A periodic global axis can never be extended in longitude, so a
// target reaching beyond the native range is a fatal geometry error.
func (g *SOSEGrid) lonWindow(lon, lonEdges []float64, target *Grid) error {
	targetW := target.LonCorners1D[0]
	targetE := target.LonCorners1D[len(target.LonCorners1D)-1]
	n := g.nxNative

	g.i0Before = -1
	for i := n - 1; i >= 0; i-- {
		if lonEdges[i] <= targetW {
			g.i0Before = i
			break
		}
	}
	if g.i0Before < 0 {
		return fmt.Errorf("mitpost: target west bound %g lies west of the native longitude range starting at %g; "+
			"a periodic longitude axis cannot be extended", targetW, lonEdges[0])
	}
	g.i1Before = -1
	for i := g.i0Before + 1; i <= n; i++ {
		east := lonEdges[0] + 360
		if i < n {
			east = lonEdges[i]
		}
		if east >= targetE {
			g.i1Before = i
			break
		}
	}
	if g.i1Before < 0 {
		return fmt.Errorf("mitpost: target east bound %g lies east of the native longitude range ending at %g; "+
			"a periodic longitude axis cannot be extended", targetE, lonEdges[0]+360)
	}

	g.NX = g.i1Before - g.i0Before
	g.i0After, g.i1After = 0, g.NX
	g.Lon1D = append([]float64(nil), lon[g.i0Before:g.i1Before]...)
	g.LonEdges = append([]float64(nil), lonEdges[g.i0Before:g.i1Before]...)
	return nil
}

// latWindow trims the latitude axis on both ends and extends it
// southward at the native spacing when the target reaches further south
// than the native axis. Extension northward is a fatal geometry error.
func (g *SOSEGrid) latWindow(lat, latEdges []float64, target *Grid) error {
	targetS := target.LatCorners1D[0]
	targetN := target.LatCorners1D[len(target.LatCorners1D)-1]
	n := g.nyNative
	// North edge of the last native row.
	northEdge := 2*lat[n-1] - latEdges[n-1]

	g.j1Before = -1
	for j := 1; j <= n; j++ {
		north := northEdge
		if j < n {
			north = latEdges[j]
		}
		if north >= targetN {
			g.j1Before = j
			break
		}
	}
	if g.j1Before < 0 {
		return fmt.Errorf("mitpost: target north bound %g lies north of the native latitude range ending at %g; "+
			"extension northward is not supported", targetN, northEdge)
	}

	g.j0Before = -1
	for j := g.j1Before - 1; j >= 0; j-- {
		if latEdges[j] <= targetS {
			g.j0Before = j
			break
		}
	}
	var nExtend int
	if g.j0Before < 0 {
		// Synthesize rows below the native southern limit at the
		// native spacing until the edge coverage brackets the target.
		g.j0Before = 0
		dy := lat[1] - lat[0]
		nExtend = int(math.Ceil((latEdges[0] - targetS) / dy))
	}
	g.j0After = nExtend
	g.NY = nExtend + (g.j1Before - g.j0Before)
	g.j1After = g.NY

	g.Lat1D = make([]float64, g.NY)
	g.LatEdges = make([]float64, g.NY)
	dy := lat[1] - lat[0]
	for j := 0; j < nExtend; j++ {
		g.Lat1D[j] = lat[0] - float64(nExtend-j)*dy
		g.LatEdges[j] = latEdges[0] - float64(nExtend-j)*dy
	}
	copy(g.Lat1D[nExtend:], lat[g.j0Before:g.j1Before])
	copy(g.LatEdges[nExtend:], latEdges[g.j0Before:g.j1Before])
	return nil
}

// depthWindow trims the depth axis on the deep end and extends it by at
// most one level at each end: a zero level at the top when the target
// starts shallower than native, and one linearly extrapolated level at
// the bottom when the target reaches deeper than native.
func (g *SOSEGrid) depthWindow(z []float64, target *Grid) error {
	targetShallow := target.Z[0]
	targetDeep := target.Z[target.NZ-1]
	n := g.nzNative

	g.k0Before = 0
	g.k0After = 0
	topExtend := targetShallow > z[0]
	if topExtend {
		g.k0After = 1
	}

	g.k1Before = -1
	for k := 0; k < n; k++ {
		if z[k] <= targetDeep {
			g.k1Before = k + 1
			break
		}
	}
	var bottomExtend bool
	if g.k1Before < 0 {
		g.k1Before = n
		bottomExtend = true
	}

	kept := g.k1Before - g.k0Before
	g.k1After = g.k0After + kept
	g.NZ = g.k1After
	if bottomExtend {
		g.NZ++
	}

	g.Z = make([]float64, g.NZ)
	if topExtend {
		g.Z[0] = 0
	}
	copy(g.Z[g.k0After:], z[g.k0Before:g.k1Before])
	if bottomExtend {
		// One level deeper than the target's deepest, extrapolated
		// from the target's last two depth samples.
		g.Z[g.NZ-1] = 2*target.Z[target.NZ-1] - target.Z[target.NZ-2]
	}
	return nil
}

// checkBrackets verifies the post-condition that the adapted axes cover
// the target domain on all four horizontal sides and both vertical
// ends. A failure here means the window logic and the target domain are
// inconsistent, and every later field read would be silently wrong.
func (g *SOSEGrid) checkBrackets(target *Grid) error {
	targetW := target.LonCorners1D[0]
	targetE := target.LonCorners1D[len(target.LonCorners1D)-1]
	eastEdge := g.LonEdges[len(g.LonEdges)-1] + (g.Lon1D[g.NX-1]-g.LonEdges[g.NX-1])*2
	if g.LonEdges[0] > targetW || eastEdge < targetE {
		return fmt.Errorf("mitpost: adapted longitude axis [%g,%g] does not bracket the target [%g,%g]",
			g.LonEdges[0], eastEdge, targetW, targetE)
	}
	targetS := target.LatCorners1D[0]
	targetN := target.LatCorners1D[len(target.LatCorners1D)-1]
	northEdge := 2*g.Lat1D[g.NY-1] - g.LatEdges[g.NY-1]
	if g.LatEdges[0] > targetS || northEdge < targetN {
		return fmt.Errorf("mitpost: adapted latitude axis [%g,%g] does not bracket the target [%g,%g]",
			g.LatEdges[0], northEdge, targetS, targetN)
	}
	if g.Z[0] < target.Z[0] || g.Z[g.NZ-1] > target.Z[target.NZ-1] {
		return fmt.Errorf("mitpost: adapted depth axis [%g,%g] does not bracket the target [%g,%g]",
			g.Z[0], g.Z[g.NZ-1], target.Z[0], target.Z[target.NZ-1])
	}
	return nil
}

// Field dimensionality tags accepted by ReadField.
const (
	DimsZ    = "z"
	DimsXY   = "xy"
	DimsXYT  = "xyt"
	DimsXYZ  = "xyz"
	DimsXYZT = "xyzt"
)

// ReadField reads the named variable from the store at path and
// re-expresses it on the adapted axes: the longitude rotation is
// replayed, then the native window is copied into its position in a
// result array pre-filled with fill. Extended cells keep the fill
// value; extrapolating real data into them is a downstream concern.
func (g *SOSEGrid) ReadField(path, varName, dims string, fill float64) (*sparse.DenseArray, error) {
	src, err := OpenSource(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return g.ReadFieldFromSource(src, varName, dims, fill)
}

// ReadFieldFromSource is ReadField for an already-open ArraySource.
func (g *SOSEGrid) ReadFieldFromSource(src ArraySource, varName, dims string, fill float64) (*sparse.DenseArray, error) {
	a, err := src.Read(varName)
	if err != nil {
		return nil, err
	}

	var nativeShape []int
	var outShape []int
	nt := 0
	switch dims {
	case DimsZ:
		nativeShape = []int{g.nzNative}
		outShape = []int{g.NZ}
	case DimsXY:
		nativeShape = []int{g.nyNative, g.nxNative}
		outShape = []int{g.NY, g.NX}
	case DimsXYZ:
		nativeShape = []int{g.nzNative, g.nyNative, g.nxNative}
		outShape = []int{g.NZ, g.NY, g.NX}
	case DimsXYT:
		if len(a.Shape) != 3 {
			return nil, fmt.Errorf("mitpost: variable %s is %d-dimensional, want 3 for dims %q", varName, len(a.Shape), dims)
		}
		nt = a.Shape[0]
		nativeShape = []int{nt, g.nyNative, g.nxNative}
		outShape = []int{nt, g.NY, g.NX}
	case DimsXYZT:
		if len(a.Shape) != 4 {
			return nil, fmt.Errorf("mitpost: variable %s is %d-dimensional, want 4 for dims %q", varName, len(a.Shape), dims)
		}
		nt = a.Shape[0]
		nativeShape = []int{nt, g.nzNative, g.nyNative, g.nxNative}
		outShape = []int{nt, g.NZ, g.NY, g.NX}
	default:
		return nil, fmt.Errorf("mitpost: ReadField: unsupported dims %q (want one of z, xy, xyt, xyz, xyzt)", dims)
	}
	if len(a.Shape) != len(nativeShape) {
		return nil, fmt.Errorf("mitpost: variable %s has shape %v, want %v for dims %q", varName, a.Shape, nativeShape, dims)
	}
	for d, want := range nativeShape {
		if a.Shape[d] != want {
			return nil, fmt.Errorf("mitpost: variable %s has shape %v, want %v for dims %q", varName, a.Shape, nativeShape, dims)
		}
	}

	if dims != DimsZ && g.ISplit != 0 {
		a = SplitLongitude(a, g.ISplit)
	}

	out := sparse.ZerosDense(outShape...)
	if fill != 0 {
		for i := range out.Elements {
			out.Elements[i] = fill
		}
	}

	if nt == 0 {
		nt = 1 // one pass through the copy loops below
	}
	switch dims {
	case DimsZ:
		for k := g.k0Before; k < g.k1Before; k++ {
			out.Set(a.Get(k), g.k0After+k-g.k0Before)
		}
	case DimsXY, DimsXYT:
		for t := 0; t < nt; t++ {
			for j := g.j0Before; j < g.j1Before; j++ {
				for i := g.i0Before; i < g.i1Before; i++ {
					v := 0.0
					if dims == DimsXY {
						v = a.Get(j, i)
					} else {
						v = a.Get(t, j, i)
					}
					jj := g.j0After + j - g.j0Before
					ii := g.i0After + i - g.i0Before
					if dims == DimsXY {
						out.Set(v, jj, ii)
					} else {
						out.Set(v, t, jj, ii)
					}
				}
			}
			if dims == DimsXY {
				break
			}
		}
	case DimsXYZ, DimsXYZT:
		for t := 0; t < nt; t++ {
			for k := g.k0Before; k < g.k1Before; k++ {
				for j := g.j0Before; j < g.j1Before; j++ {
					for i := g.i0Before; i < g.i1Before; i++ {
						v := 0.0
						if dims == DimsXYZ {
							v = a.Get(k, j, i)
						} else {
							v = a.Get(t, k, j, i)
						}
						kk := g.k0After + k - g.k0Before
						jj := g.j0After + j - g.j0Before
						ii := g.i0After + i - g.i0Before
						if dims == DimsXYZ {
							out.Set(v, kk, jj, ii)
						} else {
							out.Set(v, t, kk, jj, ii)
						}
					}
				}
			}
			if dims == DimsXYZ {
				break
			}
		}
	}
	return out, nil
}

// AxisWindow is one axis's index mapping: the native slice
// [Before0,Before1) lands at [After0,After1) in the adapted axis.
type AxisWindow struct {
	Before0, Before1 int
	After0, After1   int
}

// LonWindow returns the longitude index mapping.
func (g *SOSEGrid) LonWindow() AxisWindow {
	return AxisWindow{g.i0Before, g.i1Before, g.i0After, g.i1After}
}

// LatWindow returns the latitude index mapping.
func (g *SOSEGrid) LatWindow() AxisWindow {
	return AxisWindow{g.j0Before, g.j1Before, g.j0After, g.j1After}
}

// DepthWindow returns the depth index mapping.
func (g *SOSEGrid) DepthWindow() AxisWindow {
	return AxisWindow{g.k0Before, g.k1Before, g.k0After, g.k1After}
}

// GetLonLat1D implements the 1D part of HorizontalGrid-style access for
// the adapted axes. Only tracer and edge locations exist here.
func (g *SOSEGrid) GetLonLat1D(gtype GridType) (lon, lat []float64, err error) {
	switch gtype {
	case TGrid, WGrid:
		return g.Lon1D, g.Lat1D, nil
	case UGrid:
		return g.LonEdges, g.Lat1D, nil
	case VGrid:
		return g.Lon1D, g.LatEdges, nil
	default:
		return nil, nil, fmt.Errorf("mitpost: GetLonLat1D: no 1D axes for the %q grid", gtype)
	}
}

// Depths implements VerticalGrid.
func (g *SOSEGrid) Depths() []float64 { return g.Z }
