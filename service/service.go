// Copyright 2024 Gatehouse
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

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gatehouse-io/tools/cli"
	"github.com/gatehouse-io/tools/cors"
	shHTTP "github.com/gatehouse-io/tools/http"
	"github.com/gatehouse-io/tools/log"
	"github.com/gatehouse-io/tools/sentry"
	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// HTTPService implementers register HTTP routes with a mux router.
type HTTPService interface {
	RegisterHandlers(router *mux.Router)
}

// ServerCmd takes a function, newHTTPService, that instantiates the
// HTTPService by consuming the Config object after all values are populated
// from the CLI and/or environment variables, so that values configured by
// this package are accessible by newHTTPService.
//
// Note that this function creates the default HTTP server configuration.
// Consumers of this library are free to define their own server entrypoints
// if desired; this function is provided as a convenience that should satisfy
// most use cases.
//
// Note that Version and GitSHA *must be specified* before calling this function.
func (c Config) ServerCmd(
	ctx context.Context,
	shortDescription, longDescription string,
	newHTTPService func(Config) HTTPService,
) *cobra.Command {
	// HTTP Config
	httpConfig := shHTTP.NewDefaultConfig(c.Name)
	httpConfig.Middleware = []mux.MiddlewareFunc{
		shHTTP.NewMetrics(c.Registry, true).Middleware,
		log.HTTPServerMiddleware,
		sentry.NewMiddleware().HTTP,
	}
	if len(c.CancelSignals) > 0 {
		httpConfig.CancelSignals = c.CancelSignals
	}
	// Logging Config
	gitSHA := c.GitSHA
	if len(gitSHA) > 6 {
		// Log only the first 6 digits of the Git SHA
		gitSHA = gitSHA[:6]
	}
	lc := &log.Config{
		UseDevelopmentLogger: true,
		Fields: map[string]interface{}{
			"version": c.Version,
			"git_sha": gitSHA,
		},
		Cores: []zapcore.Core{&sentry.Core{LevelEnabler: zap.ErrorLevel}},
	}
	// Sentry Config
	sc := sentry.Config{AppVersion: c.Version}
	// CORS Config
	cc := cors.NewDefaultConfig()

	cmd := &cobra.Command{
		Use:              c.Name,
		Short:            shortDescription,
		Long:             longDescription,
		Version:          fmt.Sprintf("%s (%s)", c.Version, c.GitSHA),
		PersistentPreRun: cli.CobraBindEnvironmentVariables(strings.ReplaceAll(c.Name, "-", "_")),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc.Environment = c.Environment

			if err := c.CheckFlags(); err != nil {
				return err
			}
			if err := lc.InitializeLogger(); err != nil {
				return err
			}
			if err := sc.InitializeSentry(); err != nil {
				return err
			}

			// Add CORS middleware, layering any origin profiles found in the
			// configuration file over the flag-configured default profile
			if cc.EnableMiddleware {
				corsHandler := cc.NewHandler()
				if c.ConfigPath != "" {
					v := viper.New()
					v.SetConfigFile(c.ConfigPath)
					if err := v.ReadInConfig(); err != nil {
						return err
					}
					if err := corsHandler.LoadProfiles(v); err != nil {
						return err
					}
				}
				httpConfig.Middleware = append(
					httpConfig.Middleware,
					corsHandler.GetHTTPServerMiddleware(),
				)
			}

			if c.PreStart != nil {
				ctx = c.PreStart(ctx)
			}
			if newHTTPService != nil {
				httpService := newHTTPService(c)
				httpConfig.RegisterHandlers = httpService.RegisterHandlers
			}
			httpConfig.NewServer().Run()

			if c.PostShutdown != nil {
				return c.PostShutdown(ctx)
			}
			return nil
		},
	}
	// Register Cobra/Viper CLI Flags
	flags := cmd.Flags()
	c.RegisterFlags(flags)
	httpConfig.RegisterFlags(flags)
	lc.RegisterFlags(flags)
	sc.RegisterFlags(flags)
	cc.RegisterFlags(flags)
	return cmd
}
