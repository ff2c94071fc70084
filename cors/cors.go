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

// Package cors provides HTTP middleware that serves CORS headers for
// multiple configured origins. Each allowed origin carries its own profile
// of permitted methods, headers, and credential settings, and incoming
// requests are matched against the registered profiles by their Origin
// header, falling back to a wildcard profile when one is configured.
//
// For more information on the protocol itself, see http://www.w3.org/TR/cors/
package cors

import (
	"context"
	"net/http"
	"strings"

	"github.com/gatehouse-io/tools/log"
	"go.uber.org/zap"
)

// Wildcard is the origin that matches any request Origin header. A wildcard
// profile is only consulted when no exact profile matches.
const Wildcard = "*"

// simpleHeaders are always permitted during preflight header validation,
// per the HTTP simple header definition of the CORS specification.
var simpleHeaders = []string{
	"Accept",
	"Accept-Language",
	"Content-Type",
	"Cache-Control",
	"Content-Language",
	"Expires",
	"Last-Modified",
	"Pragma",
}

// Profile describes the CORS policy applied to requests from one or more
// allowed origins. Profiles are registered at startup and treated as
// immutable afterwards.
type Profile struct {
	// AllowCredentials indicates that the actual request may include user
	// credentials
	AllowCredentials bool
	// MaxAge is the maximum cache age, in seconds, of CORS preflight
	// responses. Zero omits the Access-Control-Max-Age header.
	MaxAge int
	// AllowMethods lists which methods can be used during the actual request
	AllowMethods []string
	// AllowHeaders lists which header field names may be used during the
	// actual request
	AllowHeaders []string
	// ExposeHeaders lists which headers are safe to expose to the API
	ExposeHeaders []string
}

// DefaultProfile returns the profile applied when a configuration group
// leaves a setting unspecified: credentialed requests permitted, the common
// HTTP verbs, HTTP simple headers, and a one hour preflight cache.
func DefaultProfile() Profile {
	return Profile{
		AllowCredentials: true,
		MaxAge:           3600,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			"Content-Type",
			"Cache-Control",
			"Content-Language",
			"Expires",
			"Last-Modified",
			"Pragma",
		},
		ExposeHeaders: []string{
			"Content-Type",
			"Cache-Control",
			"Content-Language",
			"Expires",
			"Last-Modified",
			"Pragma",
		},
	}
}

// Handler holds the registered origin profiles and decorates responses with
// the appropriate CORS headers. Register every profile before attaching the
// middleware; request handling reads the registry without locking.
type Handler struct {
	origins             map[string]Profile
	latentAllowMethods  []string
	latentAllowHeaders  []string
	latentExposeHeaders []string
}

// NewHandler returns an empty Handler ready for profile registration.
func NewHandler() *Handler {
	return &Handler{origins: make(map[string]Profile)}
}

// AddOrigin registers the given profile for one or more allowed origins.
// Origins already registered keep their existing profile; re-registration is
// skipped with a warning.
func (h *Handler) AddOrigin(profile Profile, origins ...string) {
	logger := log.Get(context.Background())
	for _, origin := range origins {
		if _, ok := h.origins[origin]; ok {
			logger.Warn("allowed origin already exists, skipping", zap.String("origin", origin))
			continue
		}
		if origin == Wildcard && profile.AllowCredentials {
			// Credentialed wildcard responses expose every caller to every
			// other site. Permitted for parity with existing deployments,
			// but worth a warning.
			logger.Warn("wildcard origin registered with allow-credentials enabled")
		}
		h.origins[origin] = profile
	}
}

// SetLatent registers methods and headers that the hosting application
// requires for operation regardless of per-origin configuration. Latent
// values are merged into every profile's allow lists at request time, so
// API-specific headers can ship with the codebase instead of being repeated
// in each deployment's configuration. A nil slice leaves the corresponding
// latent list unchanged.
func (h *Handler) SetLatent(allowMethods, allowHeaders, exposeHeaders []string) {
	if allowMethods != nil {
		h.latentAllowMethods = allowMethods
	}
	if allowHeaders != nil {
		h.latentAllowHeaders = allowHeaders
	}
	if exposeHeaders != nil {
		h.latentExposeHeaders = exposeHeaders
	}
}

// profileForOrigin returns the profile governing the given request origin
// along with the origin key it was registered under, preferring an exact
// match and falling back to the wildcard profile when present.
func (h *Handler) profileForOrigin(origin string) (string, Profile, bool) {
	if profile, ok := h.origins[origin]; ok {
		return origin, profile, true
	}
	if profile, ok := h.origins[Wildcard]; ok {
		return Wildcard, profile, true
	}
	return "", Profile{}, false
}

// splitAndTrim converts a comma-separated value into a list of non-empty
// trimmed values
func splitAndTrim(value string) []string {
	var values []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// Config contains configuration for the default CORS profile. More
// specialized per-origin profiles may be layered on top of the resulting
// Handler through AddOrigin or LoadProfiles.
type Config struct {
	// EnableMiddleware indicates whether or not CORS middleware is enabled
	// to serve cross origin policies on responses
	EnableMiddleware bool
	// AllowedOrigins is a comma-separated list of origins sharing the
	// default profile (e.g. "*" or "https://example.com")
	AllowedOrigins string
	// AllowCredentials indicates that the actual request may include user
	// credentials
	AllowCredentials bool
	// MaxAge is the maximum cache age, in seconds, of CORS preflight
	// responses
	MaxAge int
	// AllowMethods is a comma-separated list of methods permitted during
	// the actual request (e.g. "GET, POST, OPTIONS")
	AllowMethods string
	// AllowHeaders is a comma-separated list of header field names
	// permitted during the actual request
	AllowHeaders string
	// ExposeHeaders is a comma-separated list of headers safe to expose to
	// the API
	ExposeHeaders string
}

// NewDefaultConfig returns a Config whose profile settings mirror
// DefaultProfile. It is recommended to invoke this function for a Config
// before providing further customization.
func NewDefaultConfig() Config {
	profile := DefaultProfile()
	return Config{
		AllowCredentials: profile.AllowCredentials,
		MaxAge:           profile.MaxAge,
		AllowMethods:     strings.Join(profile.AllowMethods, ", "),
		AllowHeaders:     strings.Join(profile.AllowHeaders, ", "),
		ExposeHeaders:    strings.Join(profile.ExposeHeaders, ", "),
	}
}

// Profile parses the comma-separated configuration lists into a Profile.
func (c Config) Profile() Profile {
	return Profile{
		AllowCredentials: c.AllowCredentials,
		MaxAge:           c.MaxAge,
		AllowMethods:     splitAndTrim(c.AllowMethods),
		AllowHeaders:     splitAndTrim(c.AllowHeaders),
		ExposeHeaders:    splitAndTrim(c.ExposeHeaders),
	}
}

// NewHandler creates a Handler and, when AllowedOrigins is non-empty,
// registers the configured default profile for each listed origin.
func (c Config) NewHandler() *Handler {
	handler := NewHandler()
	if origins := splitAndTrim(c.AllowedOrigins); len(origins) > 0 {
		handler.AddOrigin(c.Profile(), origins...)
	}
	return handler
}
