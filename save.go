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
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Save writes the grid to w as a combined NetCDF grid file readable by
// NewGrid. Coordinates and metrics keep double precision.
func (g *Grid) Save(w *os.File) error {
	h := cdf.NewHeader(
		[]string{"X", "Y", "Z", "Xp1", "Yp1", "Zp1", "Zl"},
		[]int{g.NX, g.NY, g.NZ,
			len(g.LonCorners1D), len(g.LatCorners1D), len(g.ZEdges), len(g.ZW)})
	h.AddAttribute("", "comment", "mitpost model grid file")

	axes := []struct {
		name string
		dim  string
		data []float64
	}{
		{varLon1D, "X", g.Lon1D},
		{varLat1D, "Y", g.Lat1D},
		{varLonCorners1D, "Xp1", g.LonCorners1D},
		{varLatCorners1D, "Yp1", g.LatCorners1D},
		{varZ, "Z", g.Z},
		{varZEdges, "Zp1", g.ZEdges},
		{varZW, "Zl", g.ZW},
		{varDZ, "Z", g.DZ},
		{varDZT, "Zp1", g.DZT},
	}
	fields := []struct {
		name string
		dims []string
		data *sparse.DenseArray
	}{
		{varLon2D, []string{"Y", "X"}, g.Lon2D},
		{varLat2D, []string{"Y", "X"}, g.Lat2D},
		{varLonCorners2D, []string{"Y", "X"}, g.LonCorners2D},
		{varLatCorners2D, []string{"Y", "X"}, g.LatCorners2D},
		{varDX, []string{"Y", "X"}, g.DX},
		{varDY, []string{"Y", "X"}, g.DY},
		{varDXT, []string{"Y", "X"}, g.DXT},
		{varDYT, []string{"Y", "X"}, g.DYT},
		{varDYU, []string{"Y", "X"}, g.DYU},
		{varDXV, []string{"Y", "X"}, g.DXV},
		{varDXPsi, []string{"Y", "X"}, g.DXPsi},
		{varDYPsi, []string{"Y", "X"}, g.DYPsi},
		{varDA, []string{"Y", "X"}, g.DA},
		{varDAU, []string{"Y", "X"}, g.DAU},
		{varDAV, []string{"Y", "X"}, g.DAV},
		{varDAPsi, []string{"Y", "X"}, g.DAPsi},
		{varHFac, []string{"Z", "Y", "X"}, g.HFac},
		{varHFacU, []string{"Z", "Y", "X"}, g.HFacU},
		{varHFacV, []string{"Z", "Y", "X"}, g.HFacV},
		{varBathy, []string{"Y", "X"}, g.Bathy},
		{varDraft, []string{"Y", "X"}, g.Draft},
		{varWCT, []string{"Y", "X"}, g.WCT},
	}

	for _, a := range axes {
		h.AddVariable(a.name, []string{a.dim}, []float64{0})
	}
	for _, v := range fields {
		h.AddVariable(v.name, v.dims, []float64{0})
	}
	h.Define()

	f, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return fmt.Errorf("mitpost: creating grid file: %v", err)
	}
	for _, a := range axes {
		if err := writeNCF(f, a.name, a.data); err != nil {
			return fmt.Errorf("mitpost: writing variable %s to netcdf file: %v", a.name, err)
		}
	}
	for _, v := range fields {
		if err := writeNCF(f, v.name, v.data.Elements); err != nil {
			return fmt.Errorf("mitpost: writing variable %s to netcdf file: %v", v.name, err)
		}
	}
	if err := cdf.UpdateNumRecs(w); err != nil {
		return fmt.Errorf("mitpost: finalizing grid file: %v", err)
	}
	return nil
}

func writeNCF(f *cdf.File, name string, data []float64) error {
	// Check that data fits into the variable's dimensions.
	dims := f.Header.Lengths(name)
	n := 1
	for _, d := range dims {
		n *= d
	}
	if len(data) != n {
		return fmt.Errorf("data length %d does not match dimensions %v", len(data), dims)
	}
	start := make([]int, len(dims))
	w := f.Writer(name, start, dims)
	if _, err := w.Write(data); err != nil {
		return err
	}
	return nil
}
