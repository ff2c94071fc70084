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

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// LoadProfiles registers origin profiles from a viper configuration. The
// base "cors" group configures the default profile:
//
//	cors:
//	  allowed_origin: https://default.example.com
//	  max_age: 3600
//
// Nested groups define additional named profiles, inheriting every setting
// of the base group except allowed_origin, which each group must provide:
//
//	cors:
//	  allowed_origin: https://default.example.com
//	  ui:
//	    allowed_origin: https://ui.example.com
//	    allow_credentials: false
//
// List-valued settings accept either a native list or a comma-separated
// string. A base group without allowed_origin registers no default profile
// but still supplies inherited settings to the named groups.
func (h *Handler) LoadProfiles(v *viper.Viper) error {
	settings := v.GetStringMap("cors")
	base := profileFromGroup(settings, DefaultProfile())

	// Validate every group before registering anything so a bad group
	// cannot leave the handler holding a partial set of profiles
	type registration struct {
		profile Profile
		origins []string
	}
	var registrations []registration
	if origins := stringList(settings["allowed_origin"]); len(origins) > 0 {
		registrations = append(registrations, registration{base, origins})
	}
	for name, value := range settings {
		group, ok := value.(map[string]interface{})
		if !ok {
			continue
		}
		origins := stringList(group["allowed_origin"])
		if len(origins) == 0 {
			return fmt.Errorf("cors group %q does not define allowed_origin", name)
		}
		registrations = append(registrations, registration{profileFromGroup(group, base), origins})
	}
	for _, r := range registrations {
		h.AddOrigin(r.profile, r.origins...)
	}
	return nil
}

// profileFromGroup overlays the settings present in the given configuration
// group onto the provided defaults
func profileFromGroup(group map[string]interface{}, defaults Profile) Profile {
	profile := defaults
	if value, ok := group["allow_credentials"]; ok {
		profile.AllowCredentials = cast.ToBool(value)
	}
	if value, ok := group["max_age"]; ok {
		profile.MaxAge = cast.ToInt(value)
	}
	if value, ok := group["allow_methods"]; ok {
		profile.AllowMethods = stringList(value)
	}
	if value, ok := group["allow_headers"]; ok {
		profile.AllowHeaders = stringList(value)
	}
	if value, ok := group["expose_headers"]; ok {
		profile.ExposeHeaders = stringList(value)
	}
	return profile
}

// stringList coerces a configuration value into a list of trimmed strings,
// splitting comma-separated scalars
func stringList(value interface{}) []string {
	switch typed := value.(type) {
	case nil:
		return nil
	case string:
		return splitAndTrim(typed)
	default:
		var values []string
		for _, v := range cast.ToStringSlice(typed) {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		return values
	}
}
