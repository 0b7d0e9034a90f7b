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

// Auxiliary grids describe external products the model output is
// compared against. They carry only what the product actually has;
// callers needing masks or depth ask for the capability (MaskedGrid,
// VerticalGrid) instead of assuming a full model grid.

// WOAGrid is the regular 1-degree World Ocean Atlas climatology grid:
// 1D axes only, no masks.
type WOAGrid struct {
	Lon1D, Lat1D []float64
	Z            []float64
}

// NewWOAGrid normalizes the given axes into the [-180,180) window.
func NewWOAGrid(lon, lat, z []float64) (*WOAGrid, error) {
	lon = FixLonRange(lon, 180)
	if err := checkIncreasing("WOA longitude", lon); err != nil {
		return nil, err
	}
	if err := checkIncreasing("WOA latitude", lat); err != nil {
		return nil, err
	}
	return &WOAGrid{Lon1D: lon, Lat1D: lat, Z: z}, nil
}

// GetLonLat implements HorizontalGrid by tiling the 1D axes. All grid
// types share the same unstaggered coordinates.
func (g *WOAGrid) GetLonLat(gtype GridType) (lon, lat *sparse.DenseArray, err error) {
	switch gtype {
	case TGrid, UGrid, VGrid, PsiGrid, WGrid:
		lon, lat = LonLat2D(g.Lon1D, g.Lat1D)
		return lon, lat, nil
	default:
		return nil, nil, fmt.Errorf("mitpost: GetLonLat: invalid grid type %q", gtype)
	}
}

// Depths implements VerticalGrid.
func (g *WOAGrid) Depths() []float64 { return g.Z }

// ERA5Grid is the regular atmospheric reanalysis grid. The product
// stores latitude north-to-south; the constructor flips it so every
// grid in this package has increasing latitude.
type ERA5Grid struct {
	Lon1D, Lat1D []float64

	// Flipped reports whether the native latitude axis was reversed;
	// fields read from the product must be flipped along latitude to
	// match.
	Flipped bool
}

// NewERA5Grid normalizes the axes into the [0,360) window the product
// uses natively.
func NewERA5Grid(lon, lat []float64) (*ERA5Grid, error) {
	g := &ERA5Grid{Lon1D: FixLonRange(lon, 360)}
	if err := checkIncreasing("ERA5 longitude", g.Lon1D); err != nil {
		return nil, err
	}
	if len(lat) > 1 && lat[0] > lat[len(lat)-1] {
		g.Lat1D = make([]float64, len(lat))
		for i, v := range lat {
			g.Lat1D[len(lat)-1-i] = v
		}
		g.Flipped = true
	} else {
		g.Lat1D = append([]float64(nil), lat...)
	}
	if err := checkIncreasing("ERA5 latitude", g.Lat1D); err != nil {
		return nil, err
	}
	return g, nil
}

// GetLonLat implements HorizontalGrid.
func (g *ERA5Grid) GetLonLat(gtype GridType) (lon, lat *sparse.DenseArray, err error) {
	switch gtype {
	case TGrid, WGrid:
		lon, lat = LonLat2D(g.Lon1D, g.Lat1D)
		return lon, lat, nil
	default:
		return nil, nil, fmt.Errorf("mitpost: GetLonLat: the %q grid is not defined for this product", gtype)
	}
}

// CMIPGrid describes a curvilinear climate-model ocean grid (such as
// UKESM's eORCA1) with 2D coordinates, a land mask, and bathymetry, but
// no ice-shelf cavities.
type CMIPGrid struct {
	Lon2D, Lat2D *sparse.DenseArray
	LandMask2D   *sparse.DenseArray
	Bathy2D      *sparse.DenseArray
	Z            []float64

	split int
}

// NewCMIPGrid validates shapes and normalizes the 2D longitudes.
func NewCMIPGrid(lon, lat, landMask, bathy *sparse.DenseArray, z []float64) (*CMIPGrid, error) {
	for _, v := range []struct {
		name string
		a    *sparse.DenseArray
	}{
		{"latitude", lat}, {"land mask", landMask}, {"bathymetry", bathy},
	} {
		if len(v.a.Shape) != 2 || v.a.Shape[0] != lon.Shape[0] || v.a.Shape[1] != lon.Shape[1] {
			return nil, fmt.Errorf("mitpost: CMIP %s has shape %v, want %v", v.name, v.a.Shape, lon.Shape)
		}
	}
	maxLon := AutoMaxLon(lon.Elements)
	return &CMIPGrid{
		Lon2D:      FixLonRange2D(lon, maxLon),
		Lat2D:      lat,
		LandMask2D: landMask,
		Bathy2D:    bathy,
		Z:          z,
		split:      splitFromMaxLon(maxLon),
	}, nil
}

// GetLonLat implements HorizontalGrid; only unstaggered coordinates are
// published for this product.
func (g *CMIPGrid) GetLonLat(gtype GridType) (lon, lat *sparse.DenseArray, err error) {
	switch gtype {
	case TGrid, WGrid:
		return g.Lon2D, g.Lat2D, nil
	default:
		return nil, nil, fmt.Errorf("mitpost: GetLonLat: the %q grid is not defined for this product", gtype)
	}
}

// GetLandMask implements MaskedGrid.
func (g *CMIPGrid) GetLandMask(gtype GridType) (*sparse.DenseArray, error) {
	if gtype != TGrid {
		return nil, fmt.Errorf("mitpost: GetLandMask: no mask exists for the %q grid", gtype)
	}
	return g.LandMask2D, nil
}

// GetIceMask implements MaskedGrid. The product resolves no ice-shelf
// cavities, so the mask is empty rather than an error: downstream set
// arithmetic (open ocean, shelf derivation) stays uniform.
func (g *CMIPGrid) GetIceMask(gtype GridType) (*sparse.DenseArray, error) {
	if gtype != TGrid {
		return nil, fmt.Errorf("mitpost: GetIceMask: no mask exists for the %q grid", gtype)
	}
	return sparse.ZerosDense(g.LandMask2D.Shape...), nil
}

// Bathymetry implements MaskedGrid.
func (g *CMIPGrid) Bathymetry() *sparse.DenseArray { return g.Bathy2D }

// Depths implements VerticalGrid.
func (g *CMIPGrid) Depths() []float64 { return g.Z }

// UKESMGrid is the UKESM1 ocean grid: a CMIPGrid by structure.
type UKESMGrid = CMIPGrid

// PACEGrid is the regular grid of the Pacific-sector large-ensemble
// atmosphere product: 1D axes in the [0,360) window, no masks.
type PACEGrid struct {
	Lon1D, Lat1D []float64
}

// NewPACEGrid normalizes the axes into the [0,360) window.
func NewPACEGrid(lon, lat []float64) (*PACEGrid, error) {
	g := &PACEGrid{Lon1D: FixLonRange(lon, 360), Lat1D: append([]float64(nil), lat...)}
	if err := checkIncreasing("PACE longitude", g.Lon1D); err != nil {
		return nil, err
	}
	if err := checkIncreasing("PACE latitude", g.Lat1D); err != nil {
		return nil, err
	}
	return g, nil
}

// GetLonLat implements HorizontalGrid.
func (g *PACEGrid) GetLonLat(gtype GridType) (lon, lat *sparse.DenseArray, err error) {
	switch gtype {
	case TGrid, WGrid:
		lon, lat = LonLat2D(g.Lon1D, g.Lat1D)
		return lon, lat, nil
	default:
		return nil, nil, fmt.Errorf("mitpost: GetLonLat: the %q grid is not defined for this product", gtype)
	}
}

// ContinentalShelfMask derives the Southern Weddell Sea continental
// shelf on any grid exposing coordinates, land/ice masks, and
// bathymetry. This is the one shared routine behind Grid.SWSShelfMask
// and the equivalent masks on CMIP-style grids.
func ContinentalShelfMask(hg HorizontalGrid, mg MaskedGrid, rc *RegionConfig, split int) (shelf, inner, outer *sparse.DenseArray, err error) {
	if rc == nil {
		def := DefaultRegionConfig()
		rc = &def
	}
	lon, lat, err := hg.GetLonLat(TGrid)
	if err != nil {
		return nil, nil, nil, err
	}
	land, err := mg.GetLandMask(TGrid)
	if err != nil {
		return nil, nil, nil, err
	}
	ice, err := mg.GetIceMask(TGrid)
	if err != nil {
		return nil, nil, nil, err
	}
	shelf, inner, outer = buildSWSShelfMask(land, ice, mg.Bathymetry(), lon, lat, rc, split)
	return shelf, inner, outer, nil
}
