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

import "math"

// Version gives the current version.
const Version = "1.2.0"

// physical constants
const (
	gravity    = 9.81  // m/s2
	rhoFW      = 1000. // kg/m3, density of freshwater
	rhoIce     = 917.  // kg/m3, density of ice
	secPerDay  = 24 * 60 * 60.
	secPerYear = 365.25 * secPerDay
	deg2rad    = math.Pi / 180.
	rEarth     = 6.371e6 // m
	tempC2K    = 273.15
	cpSeawater = 4180. // J/K/kg
)

// Default partial-cell parameters, matching the model namelist defaults.
const (
	// DefaultHFacMin is the minimum open fraction of a partial cell.
	DefaultHFacMin = 0.1
	// DefaultHFacMinDr is the minimum open thickness of a partial cell [m].
	DefaultHFacMinDr = 20.
)
