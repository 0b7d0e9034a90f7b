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

// Package mitpostutil wires the mitpost library into a command-line
// interface.
package mitpostutil

import (
	"fmt"
	"math"
	"os"

	"github.com/lnashier/viper"
	log "github.com/sirupsen/logrus"
	"github.com/spatialocean/mitpost"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to mitpost.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel sets the logging verbosity (debug, info, warn, error).`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "RegionConfig",
			usage: `
              RegionConfig specifies a TOML file overriding the default
              geographic bounds of the named region masks.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{gridCmd.Flags(), topoCmd.Flags(), regridCmd.Flags()},
		},
		{
			name: "SaveFile",
			usage: `
              SaveFile specifies a path to write the materialized grid
              back to as a combined NetCDF file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "HFacMin",
			usage: `
              HFacMin is the minimum partial-cell fraction a cell may keep
              before being snapped up or closed.`,
			defaultVal: mitpost.DefaultHFacMin,
			flagsets:   []*pflag.FlagSet{topoCmd.Flags()},
		},
		{
			name: "HFacMinDr",
			usage: `
              HFacMinDr is the minimum open cell thickness [m] before a
              cell is snapped up or closed.`,
			defaultVal: mitpost.DefaultHFacMinDr,
			flagsets:   []*pflag.FlagSet{topoCmd.Flags()},
		},
		{
			name: "Levels",
			usage: `
              Levels lists the depth level indices to report wet-cell
              counts for after recomputing the partial-cell fractions.`,
			defaultVal: []int{0},
			flagsets:   []*pflag.FlagSet{topoCmd.Flags()},
		},
		{
			name: "Variable",
			usage: `
              Variable optionally names a field to read through the
              adapted source grid after regridding.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{regridCmd.Flags()},
		},
		{
			name: "Dims",
			usage: `
              Dims is the dimensionality tag of Variable: one of
              z, xy, xyt, xyz, xyzt.`,
			defaultVal: "xy",
			flagsets:   []*pflag.FlagSet{regridCmd.Flags()},
		},
		{
			name: "FillValue",
			usage: `
              FillValue is written into cells of the adapted field that
              were synthesized by extension.`,
			defaultVal: -9999.0,
			flagsets:   []*pflag.FlagSet{regridCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("MITPOST")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case []int:
				if option.shorthand == "" {
					set.IntSlice(option.name, option.defaultVal.([]int), option.usage)
				} else {
					set.IntSliceP(option.name, option.shorthand, option.defaultVal.([]int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(gridCmd)
	Root.AddCommand(topoCmd)
	Root.AddCommand(regridCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and applies the configured log level.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("mitpost: problem reading configuration file: %v", err)
		}
	}
	level, err := log.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("mitpost: %v", err)
	}
	log.SetLevel(level)
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "mitpost",
	Short: "A post-processing toolkit for regional ocean model output.",
	Long: `mitpost builds staggered model grids from NetCDF grid stores, derives
land/ice-shelf/region masks from partial-cell geometry, and adapts
globally-periodic source grids to a regional model domain.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'MITPOST_var' where 'var'
is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of mitpost.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("mitpost v%s\n", mitpost.Version)
	},
	DisableAutoGenTag: true,
}

// gridCmd builds a grid from a store and summarizes it.
var gridCmd = &cobra.Command{
	Use:   "grid [grid store]",
	Short: "Build a model grid and summarize its masks",
	Long: `grid constructs the model grid from a NetCDF grid store (a combined
file or a directory of per-variable files), reports the mask cell
counts, and optionally writes the materialized grid back out.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := regionConfig(Cfg)
		if err != nil {
			return err
		}
		g, err := mitpost.NewGrid(os.ExpandEnv(args[0]), rc)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"land":        countCells(g.LandMask),
			"ice":         countCells(g.IceMask),
			"fris":        countCells(g.FRISMask),
			"ewed":        countCells(g.EWedMask),
			"sws_shelf":   countCells(g.SWSShelfMask),
			"volume [m3]": g.TotalVolume(nil),
		}).Info("grid summary")

		if saveFile := os.ExpandEnv(Cfg.GetString("SaveFile")); saveFile != "" {
			f, err := os.Create(saveFile)
			if err != nil {
				return fmt.Errorf("mitpost: creating output file: %v", err)
			}
			defer f.Close()
			if err := g.Save(f); err != nil {
				return err
			}
			log.WithField("path", saveFile).Info("wrote grid file")
		}
		return nil
	},
	DisableAutoGenTag: true,
}

// topoCmd recomputes the partial-cell geometry from the stored
// topography and reports how far the model-visible boundaries deviate
// from the inputs.
var topoCmd = &cobra.Command{
	Use:   "topo [grid store]",
	Short: "Check the model-visible topography",
	Long: `topo recomputes the bathymetry and ice-shelf draft that the model
discretization actually sees (through the partial-cell fractions and
minimum-thickness adjustments) and reports the deviation from the
stored fields.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := regionConfig(Cfg)
		if err != nil {
			return err
		}
		g, err := mitpost.NewGrid(os.ExpandEnv(args[0]), rc)
		if err != nil {
			return err
		}
		hFacMin := Cfg.GetFloat64("HFacMin")
		hFacMinDr := Cfg.GetFloat64("HFacMinDr")

		modelBathy, err := mitpost.ModelBdry(mitpost.BdryBathy, g.Bathy, g.Draft, g.ZEdges, hFacMin, hFacMinDr)
		if err != nil {
			return err
		}
		modelDraft, err := mitpost.ModelBdry(mitpost.BdryDraft, g.Bathy, g.Draft, g.ZEdges, hFacMin, hFacMinDr)
		if err != nil {
			return err
		}
		n := math.Sqrt(float64(g.NX * g.NY))
		log.WithFields(log.Fields{
			"bathy rms [m]": mitpost.RMS(modelBathy, g.Bathy) / n,
			"draft rms [m]": mitpost.RMS(modelDraft, g.Draft) / n,
		}).Info("model-visible topography deviation")

		hfac, err := mitpost.CalcHFac(g.Bathy, g.Draft, g.ZEdges, hFacMin, hFacMinDr, mitpost.TGrid)
		if err != nil {
			return err
		}
		levels, err := cast.ToIntSliceE(Cfg.Get("Levels"))
		if err != nil {
			return fmt.Errorf("mitpost: parsing Levels: %v", err)
		}
		for _, k := range levels {
			if k < 0 || k >= g.NZ {
				return fmt.Errorf("mitpost: level %d outside the vertical axis [0,%d)", k, g.NZ)
			}
			var wet int
			for j := 0; j < g.NY; j++ {
				for i := 0; i < g.NX; i++ {
					if hfac.Get(k, j, i) > 0 {
						wet++
					}
				}
			}
			log.WithFields(log.Fields{
				"level": k, "depth [m]": g.Z[k], "wet cells": wet,
			}).Info("recomputed level occupancy")
		}
		return nil
	},
	DisableAutoGenTag: true,
}

// regridCmd adapts a globally-periodic source grid to a regional target
// domain and reports the resulting index windows.
var regridCmd = &cobra.Command{
	Use:   "regrid [grid store] [source store]",
	Short: "Adapt a global source grid to the model domain",
	Long: `regrid constructs the target model grid, trims/extends the global
source grid's axes to cover its domain, and reports the index windows.
With --Variable set, it additionally reads that field through the
adapter and reports its shape.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := regionConfig(Cfg)
		if err != nil {
			return err
		}
		target, err := mitpost.NewGrid(os.ExpandEnv(args[0]), rc)
		if err != nil {
			return err
		}
		sosePath := os.ExpandEnv(args[1])
		sg, err := mitpost.NewSOSEGrid(sosePath, target)
		if err != nil {
			return err
		}
		for _, w := range []struct {
			axis string
			win  mitpost.AxisWindow
		}{
			{"lon", sg.LonWindow()},
			{"lat", sg.LatWindow()},
			{"depth", sg.DepthWindow()},
		} {
			log.WithFields(log.Fields{
				"axis": w.axis, "before": fmt.Sprintf("[%d:%d)", w.win.Before0, w.win.Before1),
				"after": fmt.Sprintf("[%d:%d)", w.win.After0, w.win.After1),
			}).Info("axis window")
		}

		if varName := Cfg.GetString("Variable"); varName != "" {
			field, err := sg.ReadField(sosePath, varName, Cfg.GetString("Dims"), Cfg.GetFloat64("FillValue"))
			if err != nil {
				return err
			}
			log.WithFields(log.Fields{
				"variable": varName, "shape": fmt.Sprint(field.Shape),
			}).Info("adapted field")
		}
		return nil
	},
	DisableAutoGenTag: true,
}
