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

package sentry

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/pflag"
)

// Config defines the necessary configuration for instantiating a Sentry Reporter
type Config struct {
	DSN         string
	Environment string
	AppVersion  string
	Enabled     bool
}

// duration to wait to flush events to sentry
const flushTimeout = 2 * time.Second

// RegisterFlags registers Sentry flags with pflags
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.DSN, "sentry-dsn", "", "Sentry DSN")
	flags.BoolVar(&c.Enabled, "sentry-enabled", false, "Enable Sentry error reporting")
}

// InitializeSentry initializes the Sentry client. This function should be
// called as soon as possible after the application configuration is loaded so
// that sentry is setup.
func (c Config) InitializeSentry() error {
	if !c.Enabled {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:         c.DSN,
		Environment: c.Environment,
		Release:     c.AppVersion,
	})
}
