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

// Package mitpost reconstructs the spatial grid of a regional
// ocean/ice-shelf general circulation model from stored grid files and
// derives the geometry needed by downstream diagnostics: staggered
// (Arakawa C) coordinates and metrics, partial-cell fractions, and
// land/ice/region masks. It also reconciles external product grids
// (SOSE, WOA, CMIP6, atmospheric forcing) with a regional model domain.
//
// A Grid is fully materialized at construction and immutable afterwards,
// so it can be shared freely between concurrent consumers.
package mitpost
