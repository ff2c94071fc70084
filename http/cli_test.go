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

package http

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
)

func TestRegisterFlags(t *testing.T) {
	flags := pflag.NewFlagSet("pflags", pflag.PanicOnError)
	c := NewDefaultConfig("test")
	c.RegisterFlags(flags)
	err := flags.Parse(nil)
	assert.NoError(t, err)

	name, err := flags.GetString("server-name")
	assert.NoError(t, err)
	assert.Equal(t, "test", name)

	address, err := flags.GetString("address")
	assert.NoError(t, err)
	assert.Equal(t, "127.0.0.1", address)

	port, err := flags.GetUint16("port")
	assert.NoError(t, err)
	assert.Equal(t, uint16(8080), port)

	readTimeout, err := flags.GetInt("read-timeout")
	assert.NoError(t, err)
	assert.Equal(t, 5, readTimeout)

	writeTimeout, err := flags.GetInt("write-timeout")
	assert.NoError(t, err)
	assert.Equal(t, 30, writeTimeout)
}
