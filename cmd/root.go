/*
Copyright © 2020 MARLIN TEAM <info@marlin.pro>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"logspy/types"
	"logspy/version"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	log "github.com/sirupsen/logrus"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "logspy [flags] [paths...]",
		Short:   "logspy extracts and summarizes JSON payloads embedded in log files",
		Long:    "logspy scans log files line by line, keeps the lines matching a pattern and extracts the JSON payload of each. Payloads are printed raw, as JSON, as a CSV table or aggregated into a report of resources, jobs, pools, schemas and job lifecycles.",
		Version: version.RootCmdVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return readConfig(cmd)
		},
		RunE:          RunSpy,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().String("config", "", "config file (default is $HOME/.logspy.yaml)")
	cmd.PersistentFlags().String("log-level", "info", "diagnostics level: trace, debug, info, warn, error")

	f := cmd.Flags()
	f.BoolP("verbose", "v", false, "log the run parameters and list every entity in the report")
	f.BoolP("color", "c", false, "colorize output when writing to a terminal")
	f.Bool("exact-match", false, "treat the pattern as a literal substring")
	f.Bool("inverse-match", false, "keep the lines that do not match the pattern")
	f.BoolP("ignore-case", "i", false, "match case-insensitively")
	f.BoolP("stdin", "s", false, "read standard input before the given paths")
	f.Bool("silent", false, "suppress per-payload output")
	f.StringP("pattern", "e", "", "pattern selecting the lines to inspect")
	f.StringP("regex", "p", "", "same as --pattern")
	f.StringP("output", "o", "", "write results to this file instead of standard output")
	f.Bool("raw", false, "print the payloads as found")
	f.Bool("table", false, "print the payloads as CSV rows")
	f.Bool("json", false, "same as --compact-json")
	f.Bool("compact-json", false, "print the payloads as compact JSON")
	f.Bool("pretty-json", false, "print the payloads as indented JSON")
	f.Bool("report", false, "aggregate the payloads into a report (default)")
	f.BoolP("follow", "f", false, "keep reading files as they grow until interrupted")
	f.Int("chunk-size", types.DefaultChunkSize, "read buffer size in bytes")
	f.String("report-format", types.ReportText, "report encoding: text, json or yaml")
	f.String("metrics-file", "", "write run counters to this file in Prometheus text format")
	f.Bool("timer", false, "log the total run time")
	f.Bool("positional-pattern", false, "take the pattern from the first positional argument")
	_ = f.MarkHidden("regex")
	cmd.MarkFlagsMutuallyExclusive("raw", "table", "json", "compact-json", "pretty-json", "report")
	cmd.MarkFlagsMutuallyExclusive("pattern", "regex")

	return cmd
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// readConfig binds the command line, LOGSPY_* environment variables and the
// optional config file into viper.
func readConfig(cmd *cobra.Command) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	viper.SetEnvPrefix("LOGSPY")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	cfgFile := viper.GetString("config")
	explicit := cfgFile != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err == nil {
			cfgFile = filepath.Join(home, ".logspy.yaml")
		}
	}
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		err := viper.ReadInConfig()
		switch {
		case err == nil:
			var cfgVersionOnDisk = viper.GetInt("config_version")
			if cfgVersionOnDisk != version.CfgVersion {
				return errors.New("Cannot use the given config file as it does not match logspy's cfgversion. Wanted " + strconv.Itoa(version.CfgVersion) + " but found " + strconv.Itoa(cfgVersionOnDisk))
			}
		case explicit:
			return fmt.Errorf("cannot read config file %s: %w", cfgFile, err)
		case !errors.Is(err, os.ErrNotExist):
			log.WithField("config", cfgFile).Warn("Ignoring unreadable config file: ", err)
		}
	}

	level, err := log.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return err
	}
	log.SetLevel(level)
	return nil
}
