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
	log "github.com/sirupsen/logrus"
)

// GridType identifies a staggered location on the Arakawa C-grid:
// tracer points ("t"), velocity points ("u", "v"), vorticity points at
// cell corners ("psi"), and vertical-face points ("w").
type GridType string

// The supported staggered locations.
const (
	TGrid   GridType = "t"
	UGrid   GridType = "u"
	VGrid   GridType = "v"
	PsiGrid GridType = "psi"
	WGrid   GridType = "w"
)

// ArraySource supplies named arrays from a grid store. Implementations
// must return an error (not a nil array) when a name is absent or
// resolves ambiguously.
type ArraySource interface {
	// Read returns the named array, shaped as stored.
	Read(name string) (*sparse.DenseArray, error)
	Close() error
}

// HorizontalGrid is the capability of providing 2D coordinates at
// staggered locations.
type HorizontalGrid interface {
	GetLonLat(gtype GridType) (lon, lat *sparse.DenseArray, err error)
}

// VerticalGrid is the capability of providing a depth axis at
// cell centres.
type VerticalGrid interface {
	Depths() []float64
}

// MaskedGrid is the capability of providing land/ice masks and
// bathymetry, which is what the continental-shelf derivation needs.
type MaskedGrid interface {
	GetLandMask(gtype GridType) (*sparse.DenseArray, error)
	GetIceMask(gtype GridType) (*sparse.DenseArray, error)
	Bathymetry() *sparse.DenseArray
}

// Grid is the model grid: axes, metrics, partial-cell fractions, and
// the masks derived from them. It is fully materialized by NewGrid and
// immutable afterwards; share it freely, do not modify its arrays.
type Grid struct {
	NX, NY, NZ int

	// Split records the longitude window the grid was normalized
	// into: Split180 for [-180,180), Split0 for [0,360).
	Split int

	// 1D axes on the regular grid.
	Lon1D, Lat1D               []float64
	LonCorners1D, LatCorners1D []float64

	// 2D coordinate fields.
	Lon2D, Lat2D               *sparse.DenseArray
	LonCorners2D, LatCorners2D *sparse.DenseArray

	// Vertical axis: centre depths (nz), interface depths (nz+1),
	// w-point depths (nz), cell thickness and centre-to-centre
	// thickness.
	Z, ZEdges, ZW []float64
	DZ, DZT       []float64

	// Horizontal distance integrands.
	DX, DY       *sparse.DenseArray // across cell faces
	DXT, DYT     *sparse.DenseArray // between tracer points
	DXU, DYU     *sparse.DenseArray // between u-points
	DXV, DYV     *sparse.DenseArray // between v-points
	DXPsi, DYPsi *sparse.DenseArray // between corners

	// Cell areas.
	DA, DAU, DAV, DAPsi *sparse.DenseArray

	// Partial-cell fractions (nz x ny x nx).
	HFac, HFacU, HFacV *sparse.DenseArray

	// Volume is dA * dz * hfac on the tracer grid.
	Volume *sparse.DenseArray

	// Topography on the tracer grid. Draft is 0 outside the ice mask.
	Bathy, Draft, WCT *sparse.DenseArray

	// Masks (ny x nx, 0/1).
	LandMask, LandMaskU, LandMaskV *sparse.DenseArray
	IceMask, IceMaskU, IceMaskV    *sparse.DenseArray
	FRISMask, FRISMaskU, FRISMaskV *sparse.DenseArray
	EWedMask                       *sparse.DenseArray
	SWSShelfMask                   *sparse.DenseArray
	SWSShelfMaskInner              *sparse.DenseArray
	SWSShelfMaskOuter              *sparse.DenseArray

	regions RegionConfig
}

// Canonical variable names in a grid store.
const (
	varLon1D        = "X"
	varLat1D        = "Y"
	varLonCorners1D = "Xp1"
	varLatCorners1D = "Yp1"
	varLon2D        = "XC"
	varLat2D        = "YC"
	varLonCorners2D = "XG"
	varLatCorners2D = "YG"
	varDX           = "dxF"
	varDY           = "dyF"
	varDXT          = "dxC"
	varDYT          = "dyC"
	varDYU          = "dyU"
	varDXV          = "dxV"
	varDXPsi        = "dxG"
	varDYPsi        = "dyG"
	varDA           = "rA"
	varDAU          = "rAw"
	varDAV          = "rAs"
	varDAPsi        = "rAz"
	varZ            = "Z"
	varZEdges       = "Zp1"
	varZW           = "Zl"
	varDZ           = "drF"
	varDZT          = "drC"
	varHFac         = "HFacC"
	varHFacU        = "HFacW"
	varHFacV        = "HFacS"
	varBathy        = "R_low"
	varDraft        = "Ro_surf"
	varWCT          = "Depth"
)

// NewGrid constructs a Grid from a grid store: either a single combined
// NetCDF file or a directory of per-variable NetCDF files. A nil
// RegionConfig means DefaultRegionConfig.
func NewGrid(path string, rc *RegionConfig) (*Grid, error) {
	src, err := OpenSource(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return NewGridFromSource(src, rc)
}

// NewGridFromSource constructs a Grid from any ArraySource.
func NewGridFromSource(src ArraySource, rc *RegionConfig) (*Grid, error) {
	if rc == nil {
		def := DefaultRegionConfig()
		rc = &def
	}
	g := &Grid{regions: *rc}

	var err error
	if g.Lon1D, err = read1D(src, varLon1D); err != nil {
		return nil, err
	}
	if g.Lat1D, err = read1D(src, varLat1D); err != nil {
		return nil, err
	}
	if g.LonCorners1D, err = read1D(src, varLonCorners1D); err != nil {
		return nil, err
	}
	if g.LatCorners1D, err = read1D(src, varLatCorners1D); err != nil {
		return nil, err
	}

	// Normalize every longitude array into one canonical window,
	// chosen from the raw tracer axis.
	maxLon := AutoMaxLon(g.Lon1D)
	g.Split = splitFromMaxLon(maxLon)
	g.Lon1D = FixLonRange(g.Lon1D, maxLon)
	g.LonCorners1D = FixLonRange(g.LonCorners1D, maxLon)
	if err := checkIncreasing("longitude", g.Lon1D); err != nil {
		return nil, err
	}
	if err := checkIncreasing("corner longitude", g.LonCorners1D); err != nil {
		return nil, err
	}
	if err := checkIncreasing("latitude", g.Lat1D); err != nil {
		return nil, err
	}

	if g.Lon2D, err = src.Read(varLon2D); err != nil {
		return nil, err
	}
	g.Lon2D = FixLonRange2D(g.Lon2D, maxLon)
	if g.Lat2D, err = src.Read(varLat2D); err != nil {
		return nil, err
	}
	if g.LonCorners2D, err = src.Read(varLonCorners2D); err != nil {
		return nil, err
	}
	g.LonCorners2D = FixLonRange2D(g.LonCorners2D, maxLon)
	if g.LatCorners2D, err = src.Read(varLatCorners2D); err != nil {
		return nil, err
	}

	for _, v := range []struct {
		name string
		dst  **sparse.DenseArray
	}{
		{varDX, &g.DX}, {varDY, &g.DY},
		{varDXT, &g.DXT}, {varDYT, &g.DYT},
		{varDYU, &g.DYU}, {varDXV, &g.DXV},
		{varDXPsi, &g.DXPsi}, {varDYPsi, &g.DYPsi},
		{varDA, &g.DA}, {varDAU, &g.DAU}, {varDAV, &g.DAV}, {varDAPsi, &g.DAPsi},
		{varHFac, &g.HFac}, {varHFacU, &g.HFacU}, {varHFacV, &g.HFacV},
		{varBathy, &g.Bathy}, {varDraft, &g.Draft}, {varWCT, &g.WCT},
	} {
		if *v.dst, err = src.Read(v.name); err != nil {
			return nil, err
		}
	}
	// dxU is the distance across the face; dyV likewise.
	g.DXU = g.DX
	g.DYV = g.DY

	if g.Z, err = read1D(src, varZ); err != nil {
		return nil, err
	}
	if g.ZEdges, err = read1D(src, varZEdges); err != nil {
		return nil, err
	}
	if g.ZW, err = read1D(src, varZW); err != nil {
		return nil, err
	}
	if g.DZ, err = read1D(src, varDZ); err != nil {
		return nil, err
	}
	if g.DZT, err = read1D(src, varDZT); err != nil {
		return nil, err
	}
	if err := checkDecreasing("depth", g.Z); err != nil {
		return nil, err
	}

	g.NX = len(g.Lon1D)
	g.NY = len(g.Lat1D)
	g.NZ = len(g.Z)
	if err := g.checkShapes(); err != nil {
		return nil, err
	}

	// Masks from the partial-cell fractions specific to each
	// staggered location.
	g.LandMask = buildLandMask(g.HFac)
	g.LandMaskU = buildLandMask(g.HFacU)
	g.LandMaskV = buildLandMask(g.HFacV)
	g.IceMask = buildIceMask(g.HFac)
	g.IceMaskU = buildIceMask(g.HFacU)
	g.IceMaskV = buildIceMask(g.HFacV)

	g.FRISMask = buildFRISMask(g.IceMask, g.Lon2D, g.Lat2D, &g.regions, g.Split)
	g.FRISMaskU = buildFRISMask(g.IceMaskU, g.LonCorners2D, g.Lat2D, &g.regions, g.Split)
	g.FRISMaskV = buildFRISMask(g.IceMaskV, g.Lon2D, g.LatCorners2D, &g.regions, g.Split)
	g.EWedMask = buildBoxIceMask(g.IceMask, g.Lon2D, g.Lat2D, g.regions.EWed, g.Split)

	shelf, inner, outer := buildSWSShelfMask(g.LandMask, g.IceMask, g.Bathy, g.Lon2D, g.Lat2D, &g.regions, g.Split)
	g.SWSShelfMask = shelf
	g.SWSShelfMaskInner = inner
	g.SWSShelfMaskOuter = outer

	// The stored draft can be nonzero at land or open-ocean points;
	// enforce 0 there.
	g.Draft = g.Draft.Copy()
	for i, m := range g.IceMask.Elements {
		if m == 0 {
			g.Draft.Elements[i] = 0
		}
	}

	// Cell volume.
	g.Volume = sparse.ZerosDense(g.NZ, g.NY, g.NX)
	for k := 0; k < g.NZ; k++ {
		for j := 0; j < g.NY; j++ {
			for i := 0; i < g.NX; i++ {
				g.Volume.Set(g.DA.Get(j, i)*g.DZ[k]*g.HFac.Get(k, j, i), k, j, i)
			}
		}
	}

	log.WithFields(log.Fields{
		"nx": g.NX, "ny": g.NY, "nz": g.NZ, "split": g.Split,
	}).Info("constructed model grid")
	return g, nil
}

// ResolveGrid accepts either an already built *Grid or a path to a grid
// store, and returns a Grid in both cases.
func ResolveGrid(gridOrPath interface{}, rc *RegionConfig) (*Grid, error) {
	switch v := gridOrPath.(type) {
	case *Grid:
		return v, nil
	case string:
		return NewGrid(v, rc)
	default:
		return nil, fmt.Errorf("mitpost: ResolveGrid: want *Grid or path string, got %T", gridOrPath)
	}
}

func (g *Grid) checkShapes() error {
	check2 := func(name string, a *sparse.DenseArray) error {
		if len(a.Shape) != 2 || a.Shape[0] != g.NY || a.Shape[1] != g.NX {
			return fmt.Errorf("mitpost: grid variable %s has shape %v, want [%d %d]", name, a.Shape, g.NY, g.NX)
		}
		return nil
	}
	check3 := func(name string, a *sparse.DenseArray) error {
		if len(a.Shape) != 3 || a.Shape[0] != g.NZ || a.Shape[1] != g.NY || a.Shape[2] != g.NX {
			return fmt.Errorf("mitpost: grid variable %s has shape %v, want [%d %d %d]", name, a.Shape, g.NZ, g.NY, g.NX)
		}
		return nil
	}
	for _, v := range []struct {
		name string
		a    *sparse.DenseArray
	}{
		{varLon2D, g.Lon2D}, {varLat2D, g.Lat2D},
		{varLonCorners2D, g.LonCorners2D}, {varLatCorners2D, g.LatCorners2D},
		{varDA, g.DA}, {varBathy, g.Bathy}, {varDraft, g.Draft}, {varWCT, g.WCT},
	} {
		if err := check2(v.name, v.a); err != nil {
			return err
		}
	}
	for _, v := range []struct {
		name string
		a    *sparse.DenseArray
	}{
		{varHFac, g.HFac}, {varHFacU, g.HFacU}, {varHFacV, g.HFacV},
	} {
		if err := check3(v.name, v.a); err != nil {
			return err
		}
	}
	if len(g.ZEdges) != g.NZ+1 {
		return fmt.Errorf("mitpost: grid variable %s has length %d, want %d", varZEdges, len(g.ZEdges), g.NZ+1)
	}
	return nil
}

// read1D reads a 1D variable from src.
func read1D(src ArraySource, name string) ([]float64, error) {
	a, err := src.Read(name)
	if err != nil {
		return nil, err
	}
	if len(a.Shape) != 1 {
		return nil, fmt.Errorf("mitpost: grid variable %s is %d-dimensional, want 1D", name, len(a.Shape))
	}
	out := make([]float64, a.Shape[0])
	copy(out, a.Elements)
	return out, nil
}

// GetLonLat returns the 2D coordinate pair for the given grid type.
// "w" shares the tracer horizontal coordinates.
func (g *Grid) GetLonLat(gtype GridType) (lon, lat *sparse.DenseArray, err error) {
	switch gtype {
	case TGrid, WGrid:
		return g.Lon2D, g.Lat2D, nil
	case UGrid:
		return g.LonCorners2D, g.Lat2D, nil
	case VGrid:
		return g.Lon2D, g.LatCorners2D, nil
	case PsiGrid:
		return g.LonCorners2D, g.LatCorners2D, nil
	default:
		return nil, nil, fmt.Errorf("mitpost: GetLonLat: invalid grid type %q", gtype)
	}
}

// GetLonLat1D returns the 1D axis pair for the given grid type. There
// are no 1D corner-corner axes for "psi".
func (g *Grid) GetLonLat1D(gtype GridType) (lon, lat []float64, err error) {
	switch gtype {
	case TGrid, WGrid:
		return g.Lon1D, g.Lat1D, nil
	case UGrid:
		return g.LonCorners1D, g.Lat1D, nil
	case VGrid:
		return g.Lon1D, g.LatCorners1D, nil
	default:
		return nil, nil, fmt.Errorf("mitpost: GetLonLat1D: no 1D axes for the %q grid", gtype)
	}
}

// GetHFac returns the partial-cell fractions for the given grid type.
// "psi" and "w" have no hfac.
func (g *Grid) GetHFac(gtype GridType) (*sparse.DenseArray, error) {
	switch gtype {
	case TGrid:
		return g.HFac, nil
	case UGrid:
		return g.HFacU, nil
	case VGrid:
		return g.HFacV, nil
	default:
		return nil, fmt.Errorf("mitpost: GetHFac: no hfac exists for the %q grid", gtype)
	}
}

// GetLandMask returns the land mask for the given grid type.
func (g *Grid) GetLandMask(gtype GridType) (*sparse.DenseArray, error) {
	switch gtype {
	case TGrid:
		return g.LandMask, nil
	case UGrid:
		return g.LandMaskU, nil
	case VGrid:
		return g.LandMaskV, nil
	default:
		return nil, fmt.Errorf("mitpost: GetLandMask: no mask exists for the %q grid", gtype)
	}
}

// GetIceMask returns the ice-shelf mask for the given grid type.
func (g *Grid) GetIceMask(gtype GridType) (*sparse.DenseArray, error) {
	switch gtype {
	case TGrid:
		return g.IceMask, nil
	case UGrid:
		return g.IceMaskU, nil
	case VGrid:
		return g.IceMaskV, nil
	default:
		return nil, fmt.Errorf("mitpost: GetIceMask: no mask exists for the %q grid", gtype)
	}
}

// GetFRISMask returns the FRIS mask for the given grid type.
func (g *Grid) GetFRISMask(gtype GridType) (*sparse.DenseArray, error) {
	switch gtype {
	case TGrid:
		return g.FRISMask, nil
	case UGrid:
		return g.FRISMaskU, nil
	case VGrid:
		return g.FRISMaskV, nil
	default:
		return nil, fmt.Errorf("mitpost: GetFRISMask: no mask exists for the %q grid", gtype)
	}
}

// GetOpenOceanMask returns the complement of land and ice shelf.
func (g *Grid) GetOpenOceanMask(gtype GridType) (*sparse.DenseArray, error) {
	land, err := g.GetLandMask(gtype)
	if err != nil {
		return nil, err
	}
	ice, err := g.GetIceMask(gtype)
	if err != nil {
		return nil, err
	}
	open := sparse.ZerosDense(land.Shape...)
	for i := range open.Elements {
		if land.Elements[i] == 0 && ice.Elements[i] == 0 {
			open.Elements[i] = 1
		}
	}
	return open, nil
}

// GetCoastMask returns the open-ocean points adjacent (4-connected) to
// at least one land or ice-shelf point. The A-23A grounded iceberg is
// excluded by default; pass includeA23A to keep it.
func (g *Grid) GetCoastMask(gtype GridType, includeA23A bool) (*sparse.DenseArray, error) {
	open, err := g.GetOpenOceanMask(gtype)
	if err != nil {
		return nil, err
	}
	lon, lat, err := g.GetLonLat(gtype)
	if err != nil {
		return nil, err
	}
	a23a := g.regions.A23A.shifted(g.Split)
	nBdry := NeighbourCount(invertMask(open))
	coast := sparse.ZerosDense(open.Shape...)
	for j := 0; j < open.Shape[0]; j++ {
		for i := 0; i < open.Shape[1]; i++ {
			if open.Get(j, i) == 0 || nBdry.Get(j, i) == 0 {
				continue
			}
			if !includeA23A && a23a.contains(lon.Get(j, i), lat.Get(j, i)) {
				continue
			}
			coast.Set(1, j, i)
		}
	}
	return coast, nil
}

// GetBIMask returns the Berkner Island mask: land points within the
// island's bounding box.
func (g *Grid) GetBIMask(gtype GridType) (*sparse.DenseArray, error) {
	land, err := g.GetLandMask(gtype)
	if err != nil {
		return nil, err
	}
	lon, lat, err := g.GetLonLat(gtype)
	if err != nil {
		return nil, err
	}
	box := g.regions.BerknerIsland.shifted(g.Split)
	mask := sparse.ZerosDense(land.Shape...)
	for j := 0; j < land.Shape[0]; j++ {
		for i := 0; i < land.Shape[1]; i++ {
			if land.Get(j, i) != 0 && box.contains(lon.Get(j, i), lat.Get(j, i)) {
				mask.Set(1, j, i)
			}
		}
	}
	return mask, nil
}

// GetDA returns the cell area for the given grid type.
func (g *Grid) GetDA(gtype GridType) (*sparse.DenseArray, error) {
	switch gtype {
	case TGrid, WGrid:
		return g.DA, nil
	case UGrid:
		return g.DAU, nil
	case VGrid:
		return g.DAV, nil
	case PsiGrid:
		return g.DAPsi, nil
	default:
		return nil, fmt.Errorf("mitpost: GetDA: invalid grid type %q", gtype)
	}
}

// Depths implements VerticalGrid.
func (g *Grid) Depths() []float64 { return g.Z }

// Bathymetry implements MaskedGrid.
func (g *Grid) Bathymetry() *sparse.DenseArray { return g.Bathy }

// TotalVolume returns the summed wet volume [m3] of the cells selected
// by the 2D mask (nil means the whole domain).
func (g *Grid) TotalVolume(mask *sparse.DenseArray) float64 {
	var sum float64
	for k := 0; k < g.NZ; k++ {
		for j := 0; j < g.NY; j++ {
			for i := 0; i < g.NX; i++ {
				if mask != nil && mask.Get(j, i) == 0 {
					continue
				}
				sum += g.Volume.Get(k, j, i)
			}
		}
	}
	return sum
}
