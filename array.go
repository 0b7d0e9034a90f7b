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

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// XYToXYZ tiles a 2D (lat x lon) array in depth so it is 3D
// (depth x lat x lon).
func XYToXYZ(data *sparse.DenseArray, nz int) *sparse.DenseArray {
	ny := data.Shape[0]
	nx := data.Shape[1]
	out := sparse.ZerosDense(nz, ny, nx)
	for k := 0; k < nz; k++ {
		copy(out.Elements[k*ny*nx:(k+1)*ny*nx], data.Elements)
	}
	return out
}

// ZToXYZ tiles a 1D depth axis in latitude and longitude so it is 3D
// (depth x lat x lon).
func ZToXYZ(z []float64, ny, nx int) *sparse.DenseArray {
	out := sparse.ZerosDense(len(z), ny, nx)
	for k, v := range z {
		lev := out.Elements[k*ny*nx : (k+1)*ny*nx]
		for i := range lev {
			lev[i] = v
		}
	}
	return out
}

// AddTimeDim tiles an array in time, with nt records as a new leading
// dimension.
func AddTimeDim(data *sparse.DenseArray, nt int) *sparse.DenseArray {
	shape := append([]int{nt}, data.Shape...)
	out := sparse.ZerosDense(shape...)
	n := len(data.Elements)
	for t := 0; t < nt; t++ {
		copy(out.Elements[t*n:(t+1)*n], data.Elements)
	}
	return out
}

// applyMask2D returns a copy of data with fill written at every point
// where the 2D mask is set. The mask is broadcast over any leading
// (time, depth) dimensions.
func applyMask2D(data, mask *sparse.DenseArray, fill float64) *sparse.DenseArray {
	out := data.Copy()
	n := len(mask.Elements)
	for off := 0; off < len(out.Elements); off += n {
		for i, m := range mask.Elements {
			if m != 0 {
				out.Elements[off+i] = fill
			}
		}
	}
	return out
}

// MaskLand fills land points of data with fill. The trailing two
// dimensions of data must be (lat, lon) on the given grid type.
func MaskLand(data *sparse.DenseArray, g *Grid, gtype GridType, fill float64) (*sparse.DenseArray, error) {
	mask, err := g.GetLandMask(gtype)
	if err != nil {
		return nil, err
	}
	return applyMask2D(data, mask, fill), nil
}

// MaskLandIce fills land and ice-shelf points of data with fill,
// leaving only the open ocean.
func MaskLandIce(data *sparse.DenseArray, g *Grid, gtype GridType, fill float64) (*sparse.DenseArray, error) {
	land, err := g.GetLandMask(gtype)
	if err != nil {
		return nil, err
	}
	ice, err := g.GetIceMask(gtype)
	if err != nil {
		return nil, err
	}
	both := land.Copy()
	both.AddDense(ice)
	return applyMask2D(data, both, fill), nil
}

// MaskExceptIce fills everything except ice-shelf points with fill.
func MaskExceptIce(data *sparse.DenseArray, g *Grid, gtype GridType, fill float64) (*sparse.DenseArray, error) {
	ice, err := g.GetIceMask(gtype)
	if err != nil {
		return nil, err
	}
	return applyMask2D(data, invertMask(ice), fill), nil
}

// MaskExceptFRIS fills everything except FRIS points with fill.
func MaskExceptFRIS(data *sparse.DenseArray, g *Grid, gtype GridType, fill float64) (*sparse.DenseArray, error) {
	fris, err := g.GetFRISMask(gtype)
	if err != nil {
		return nil, err
	}
	return applyMask2D(data, invertMask(fris), fill), nil
}

// Mask3D fills dry cells of a 3D (or time x 3D) array with fill;
// partial cells are untouched.
func Mask3D(data *sparse.DenseArray, g *Grid, gtype GridType, fill float64) (*sparse.DenseArray, error) {
	hfac, err := g.GetHFac(gtype)
	if err != nil {
		return nil, err
	}
	out := data.Copy()
	n := len(hfac.Elements)
	if len(out.Elements)%n != 0 {
		return nil, fmt.Errorf("mitpost: Mask3D: data shape %v does not tile the %v hfac", data.Shape, hfac.Shape)
	}
	for off := 0; off < len(out.Elements); off += n {
		for i, h := range hfac.Elements {
			if h == 0 {
				out.Elements[off+i] = fill
			}
		}
	}
	return out, nil
}

func invertMask(mask *sparse.DenseArray) *sparse.DenseArray {
	out := sparse.ZerosDense(mask.Shape...)
	for i, m := range mask.Elements {
		if m == 0 {
			out.Elements[i] = 1
		}
	}
	return out
}

// SelectTop collapses the vertical dimension of a 3D field by taking,
// per column, the value of the shallowest wet cell (hfac > 0). Columns
// with no wet cell get 0. Useful for conditions immediately beneath ice
// shelves.
func SelectTop(data, hfac *sparse.DenseArray) (*sparse.DenseArray, error) {
	return selectLevel(data, hfac, false)
}

// SelectBottom collapses the vertical dimension of a 3D field by
// taking, per column, the value of the deepest wet cell.
func SelectBottom(data, hfac *sparse.DenseArray) (*sparse.DenseArray, error) {
	return selectLevel(data, hfac, true)
}

func selectLevel(data, hfac *sparse.DenseArray, fromBottom bool) (*sparse.DenseArray, error) {
	if len(data.Shape) != 3 {
		return nil, fmt.Errorf("mitpost: select level: data must be 3D, got shape %v", data.Shape)
	}
	nz := data.Shape[0]
	ny := data.Shape[1]
	nx := data.Shape[2]
	out := sparse.ZerosDense(ny, nx)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			for n := 0; n < nz; n++ {
				k := n
				if fromBottom {
					k = nz - 1 - n
				}
				if hfac.Get(k, j, i) > 0 {
					out.Set(data.Get(k, j, i), j, i)
					break
				}
			}
		}
	}
	return out, nil
}

// WrapPeriodic pads the longitude (last) axis of data with one column
// wrapped from either end, so interpolation across the periodic seam
// has no gap. If isLon, 360 is subtracted/added to the wrapped values
// to keep the axis monotonic.
func WrapPeriodic(data *sparse.DenseArray, isLon bool) *sparse.DenseArray {
	shape := append([]int{}, data.Shape...)
	nx := shape[len(shape)-1]
	shape[len(shape)-1] = nx + 2
	out := sparse.ZerosDense(shape...)
	nrows := len(data.Elements) / nx
	for r := 0; r < nrows; r++ {
		row := data.Elements[r*nx : (r+1)*nx]
		orow := out.Elements[r*(nx+2) : (r+1)*(nx+2)]
		copy(orow[1:nx+1], row)
		orow[0] = row[nx-1]
		orow[nx+1] = row[0]
		if isLon {
			orow[0] -= 360
			orow[nx+1] += 360
		}
	}
	return out
}

// RMS returns the root of the sum of squared differences between two
// equally sized arrays.
func RMS(a, b *sparse.DenseArray) float64 {
	return floats.Distance(a.Elements, b.Elements, 2)
}

// DistBtwPoints returns the Cartesian distance [m] between two lon-lat
// points, using a local flat-earth approximation.
func DistBtwPoints(p0, p1 geom.Point) float64 {
	dx := rEarth * math.Cos((p0.Y+p1.Y)/2*deg2rad) * (p1.X - p0.X) * deg2rad
	dy := rEarth * (p1.Y - p0.Y) * deg2rad
	return math.Sqrt(dx*dx + dy*dy)
}

// PolarStereo converts longitude and latitude [degrees] to the polar
// stereographic projection used by BEDMAP2 (true scale at 71S,
// WGS84 ellipsoid).
func PolarStereo(lon, lat *sparse.DenseArray) (x, y *sparse.DenseArray) {
	const (
		a    = 6378137.
		e    = 0.08181919
		latC = -71.
		lon0 = 0.
	)
	pm := -1. // southern hemisphere
	latCr := latC * pm * deg2rad
	lon0r := lon0 * pm * deg2rad
	tC := math.Tan(math.Pi/4-latCr/2) /
		math.Pow((1-e*math.Sin(latCr))/(1+e*math.Sin(latCr)), e/2)
	mC := math.Cos(latCr) / math.Sqrt(1-math.Pow(e*math.Sin(latCr), 2))

	x = sparse.ZerosDense(lon.Shape...)
	y = sparse.ZerosDense(lat.Shape...)
	for i := range lon.Elements {
		lonR := lon.Elements[i] * pm * deg2rad
		latR := lat.Elements[i] * pm * deg2rad
		t := math.Tan(math.Pi/4-latR/2) /
			math.Pow((1-e*math.Sin(latR))/(1+e*math.Sin(latR)), e/2)
		rho := a * mC * t / tC
		x.Elements[i] = pm * rho * math.Sin(lonR-lon0r)
		y.Elements[i] = -pm * rho * math.Cos(lonR-lon0r)
	}
	return x, y
}

// GetXY returns either raw lon/lat coordinates or their polar
// stereographic projection.
func GetXY(lon, lat *sparse.DenseArray, pster bool) (x, y *sparse.DenseArray) {
	if pster {
		return PolarStereo(lon, lat)
	}
	return lon, lat
}

// LonLat2D tiles 1D longitude and latitude axes into the 2D coordinate
// fields of a regular grid.
func LonLat2D(lon, lat []float64) (lon2D, lat2D *sparse.DenseArray) {
	lon2D = sparse.ZerosDense(len(lat), len(lon))
	lat2D = sparse.ZerosDense(len(lat), len(lon))
	for j, y := range lat {
		for i, x := range lon {
			lon2D.Set(x, j, i)
			lat2D.Set(y, j, i)
		}
	}
	return lon2D, lat2D
}

// VarMinMax returns the minimum and maximum of a 2D field over the
// points whose coordinates fall inside bounds (nil means everywhere).
func VarMinMax(data, x, y *sparse.DenseArray, bounds *Bounds) (min, max float64, err error) {
	if bounds == nil {
		return floats.Min(data.Elements), floats.Max(data.Elements), nil
	}
	min = math.Inf(1)
	max = math.Inf(-1)
	for i, v := range data.Elements {
		if !bounds.contains(x.Elements[i], y.Elements[i]) {
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if math.IsInf(min, 1) {
		return 0, 0, fmt.Errorf("mitpost: VarMinMax: no points inside bounds %+v", bounds)
	}
	return min, max, nil
}

// Factors returns all factors of n in increasing order.
func Factors(n int) []int {
	var f []int
	for i := 1; i <= n; i++ {
		if n%i == 0 {
			f = append(f, i)
		}
	}
	return f
}

// IsLeapYear reports whether the given year is a leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysPerMonth returns the number of days in the given month (1-12) of
// the given year.
func DaysPerMonth(month, year int) int {
	days := []int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return days[month-1]
}

// DailyToMonthly converts one year of daily averages (time first
// dimension, perDay records per day) into monthly averages.
func DailyToMonthly(data *sparse.DenseArray, year, perDay int) (*sparse.DenseArray, error) {
	nt := data.Shape[0]
	if d := nt / perDay; d != 365 && d != 366 {
		return nil, fmt.Errorf("mitpost: DailyToMonthly: %d records is not one year of data", nt)
	}
	n := len(data.Elements) / nt
	shape := append([]int{12}, data.Shape[1:]...)
	out := sparse.ZerosDense(shape...)
	t := 0
	for month := 0; month < 12; month++ {
		nrec := DaysPerMonth(month+1, year) * perDay
		for rec := 0; rec < nrec; rec++ {
			for i := 0; i < n; i++ {
				out.Elements[month*n+i] += data.Elements[(t+rec)*n+i]
			}
		}
		for i := 0; i < n; i++ {
			out.Elements[month*n+i] /= float64(nrec)
		}
		t += nrec
	}
	return out, nil
}
