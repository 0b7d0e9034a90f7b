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
	"path/filepath"
	"sort"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// OpenSource opens a grid store: a single combined NetCDF file, or a
// directory of per-variable NetCDF files.
func OpenSource(path string) (ArraySource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("mitpost: opening grid source %s: %v", path, err)
	}
	if info.IsDir() {
		return OpenDirSource(path)
	}
	return OpenFileSource(path)
}

// FileSource reads named arrays from one NetCDF file.
type FileSource struct {
	path string
	f    *os.File
	cf   *cdf.File
}

// OpenFileSource opens a combined NetCDF grid file.
func OpenFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mitpost: opening grid file %s: %v", path, err)
	}
	cf, err := cdf.Open(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mitpost: reading netcdf header of %s: %v", path, err)
	}
	return &FileSource{path: path, f: f, cf: cf}, nil
}

// Read implements ArraySource.
func (s *FileSource) Read(name string) (*sparse.DenseArray, error) {
	a, err := readVar(s.cf, name)
	if err != nil {
		return nil, fmt.Errorf("mitpost: reading %s from %s: %v", name, s.path, err)
	}
	return a, nil
}

// Close implements ArraySource.
func (s *FileSource) Close() error { return s.f.Close() }

// DirSource reads named arrays from a directory of NetCDF files,
// indexing each file's variables once at open time.
type DirSource struct {
	dir   string
	index map[string][]string // variable name -> files containing it
}

// OpenDirSource scans dir for .nc files and indexes their variables.
func OpenDirSource(dir string) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("mitpost: reading grid directory %s: %v", dir, err)
	}
	s := &DirSource{dir: dir, index: make(map[string][]string)}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".nc") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("mitpost: opening %s: %v", path, err)
		}
		cf, err := cdf.Open(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("mitpost: reading netcdf header of %s: %v", path, err)
		}
		for _, v := range cf.Header.Variables() {
			s.index[v] = append(s.index[v], path)
		}
		f.Close()
	}
	if len(s.index) == 0 {
		return nil, fmt.Errorf("mitpost: no netcdf variables found in directory %s", dir)
	}
	return s, nil
}

// Read implements ArraySource. A variable present in more than one file
// is an ambiguity error: picking one silently could mix grids.
func (s *DirSource) Read(name string) (*sparse.DenseArray, error) {
	paths, ok := s.index[name]
	if !ok {
		return nil, fmt.Errorf("mitpost: variable %s not found in directory %s", name, s.dir)
	}
	if len(paths) > 1 {
		sort.Strings(paths)
		return nil, fmt.Errorf("mitpost: variable %s is ambiguous in %s: found in %s",
			name, s.dir, strings.Join(paths, ", "))
	}
	f, err := os.Open(paths[0])
	if err != nil {
		return nil, fmt.Errorf("mitpost: opening %s: %v", paths[0], err)
	}
	defer f.Close()
	cf, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("mitpost: reading netcdf header of %s: %v", paths[0], err)
	}
	a, err := readVar(cf, name)
	if err != nil {
		return nil, fmt.Errorf("mitpost: reading %s from %s: %v", name, paths[0], err)
	}
	return a, nil
}

// Close implements ArraySource.
func (s *DirSource) Close() error { return nil }

// readVar reads a whole variable into a DenseArray, converting from
// whatever numeric type it is stored as.
func readVar(cf *cdf.File, name string) (*sparse.DenseArray, error) {
	dims := cf.Header.Lengths(name)
	if len(dims) == 0 {
		return nil, fmt.Errorf("variable not in file")
	}
	n := 1
	for _, d := range dims {
		n *= d
	}
	r := cf.Reader(name, nil, nil)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, err
	}
	out := sparse.ZerosDense(dims...)
	switch b := buf.(type) {
	case []float64:
		copy(out.Elements, b)
	case []float32:
		for i, v := range b {
			out.Elements[i] = float64(v)
		}
	case []int32:
		for i, v := range b {
			out.Elements[i] = float64(v)
		}
	case []int16:
		for i, v := range b {
			out.Elements[i] = float64(v)
		}
	case []int8:
		for i, v := range b {
			out.Elements[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("unsupported netcdf data type %T", buf)
	}
	return out, nil
}
