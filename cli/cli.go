// Copyright 2023 Gatehouse
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// CobraBindEnvironmentVariables can be used at the root command level of a
// cobra CLI hierarchy to allow all command-line variables to be set by
// environment variables as well. Note that skewered-variable-names are
// automatically translated to skewered_variable_names for compatibility with
// environment variables.
//
// The given application prefix narrows which environment variables are
// considered: with prefix "gatehouse", only variables such as
// GATEHOUSE_CORS_ALLOWED_ORIGINS are picked up. There is no need to
// capitalize the prefix name.
//
// Note: CLI arguments (eg --address=localhost) always take precedence over
// environment variables
func CobraBindEnvironmentVariables(prefix string) func(cmd *cobra.Command, _ []string) {
	// Search for environment values with the given prefix
	viper.SetEnvPrefix(prefix)
	// Automatically extract values from Cobra pflags as prefixed above
	viper.AutomaticEnv()

	return func(cmd *cobra.Command, _ []string) {
		// Provide flags to Viper for environment variable overrides
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if !f.Changed {
				underscoredName := strings.ReplaceAll(f.Name, "-", "_")
				if viper.IsSet(underscoredName) {
					strV := viper.GetString(underscoredName)
					_ = cmd.Flags().Set(f.Name, strV)
				}
			}
		})
	}
}
