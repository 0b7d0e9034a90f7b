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

package mitpostutil

import (
	"os"

	"github.com/ctessum/sparse"
	"github.com/lnashier/viper"
	"github.com/spatialocean/mitpost"
)

// regionConfig loads the region bounds override file named by the
// RegionConfig option, or returns nil for the defaults.
func regionConfig(cfg *viper.Viper) (*mitpost.RegionConfig, error) {
	path := os.ExpandEnv(cfg.GetString("RegionConfig"))
	if path == "" {
		return nil, nil
	}
	rc, err := mitpost.LoadRegionConfig(path)
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

// countCells returns the number of set cells in a 0/1 mask.
func countCells(mask *sparse.DenseArray) int {
	var n int
	for _, v := range mask.Elements {
		if v != 0 {
			n++
		}
	}
	return n
}
