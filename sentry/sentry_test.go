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
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
)

func TestRegisterFlags(t *testing.T) {
	flags := pflag.NewFlagSet("pflags", pflag.PanicOnError)
	c := Config{}
	c.RegisterFlags(flags)
	err := flags.Parse(nil)
	assert.NoError(t, err)

	dsn, err := flags.GetString("sentry-dsn")
	assert.NoError(t, err)
	assert.Equal(t, "", dsn)

	enabled, err := flags.GetBool("sentry-enabled")
	assert.NoError(t, err)
	assert.False(t, enabled)
}

func TestInitializeSentry(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{
			name:   "disabled sentry initializes without error",
			config: Config{Enabled: false},
		}, {
			name:   "enabled sentry with empty dsn initializes without error",
			config: Config{Enabled: true},
		}, {
			name:        "malformed dsn returns an error",
			config:      Config{Enabled: true, DSN: "not-a-dsn"},
			expectError: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.config.InitializeSentry()
			if test.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
