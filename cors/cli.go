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

package cors

import "github.com/spf13/pflag"

// RegisterFlags registers CORS flags with pflags
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.BoolVar(&c.EnableMiddleware, "cors-enable-middleware", c.EnableMiddleware, "Specify whether or not CORS middleware is enabled to serve cross origin policies on responses")
	flags.StringVar(&c.AllowedOrigins, "cors-allowed-origins", c.AllowedOrigins, "Specify which origin(s) share the default CORS profile (e.g. \"*\" or \"https://example.com\")")
	flags.BoolVar(&c.AllowCredentials, "cors-allow-credentials", c.AllowCredentials, "Specify whether the actual request may include user credentials")
	flags.IntVar(&c.MaxAge, "cors-max-age", c.MaxAge, "Specify the maximum cache age, in seconds, of CORS preflight responses")
	flags.StringVar(&c.AllowMethods, "cors-allow-methods", c.AllowMethods, "Specify which method(s) are permitted during the actual request (e.g. \"GET, POST, OPTIONS\")")
	flags.StringVar(&c.AllowHeaders, "cors-allow-headers", c.AllowHeaders, "Specify which header(s) are permitted during the actual request (e.g. \"Accept, Content-Type\")")
	flags.StringVar(&c.ExposeHeaders, "cors-expose-headers", c.ExposeHeaders, "Specify which header(s) are safe to expose to the API")
}
