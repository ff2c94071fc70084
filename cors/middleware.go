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
	"net/http"
	"strconv"
	"strings"

	"github.com/gatehouse-io/tools/log"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	originHeader           = "Origin"
	requestMethodHeader    = "Access-Control-Request-Method"
	requestHeadersHeader   = "Access-Control-Request-Headers"
	allowOriginHeader      = "Access-Control-Allow-Origin"
	allowMethodsHeader     = "Access-Control-Allow-Methods"
	allowHeadersHeader     = "Access-Control-Allow-Headers"
	allowCredentialsHeader = "Access-Control-Allow-Credentials"
	maxAgeHeader           = "Access-Control-Max-Age"
	exposeHeadersHeader    = "Access-Control-Expose-Headers"
)

// GetHTTPServerMiddleware returns middleware that decorates responses with
// the CORS headers of the profile matching the request Origin header, and
// short-circuits further request processing if the request method is
// OPTIONS. Requests whose Origin matches no registered profile pass through
// with no CORS headers attached.
//
// If an earlier middleware has already set Access-Control-Allow-Origin on
// the response, it is assumed to know better and the response is left
// untouched.
func (h *Handler) GetHTTPServerMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if w.Header().Get(allowOriginHeader) != "" {
				next.ServeHTTP(w, r)
				return
			}
			if r.Method == http.MethodOptions {
				h.applyPreflightHeaders(w, r)
				// Downstream handlers have no preflight logic of their own,
				// so OPTIONS requests return early.
				w.WriteHeader(http.StatusOK)
				return
			}
			h.applyRequestHeaders(w, r)
			next.ServeHTTP(w, r)
		})
	}
}

// GetHTTPServerMiddleware builds a Handler holding the configured default
// profile and returns its middleware. Use this form when a single profile
// group configured through flags is all the application needs.
func (c Config) GetHTTPServerMiddleware() mux.MiddlewareFunc {
	return c.NewHandler().GetHTTPServerMiddleware()
}

// applyPreflightHeaders validates a preflight request against the matching
// profile and, when every check passes, attaches the preflight response
// headers. Failed checks leave the response without CORS headers so the
// browser rejects the cross-origin call; the server itself never errors.
func (h *Handler) applyPreflightHeaders(w http.ResponseWriter, r *http.Request) {
	logger := log.Get(r.Context())

	origin := r.Header.Get(originHeader)
	if origin == "" {
		return
	}
	matchedOrigin, profile, ok := h.profileForOrigin(origin)
	if !ok {
		logger.Debug("cors request from unregistered origin", zap.String("origin", origin))
		return
	}

	requestMethod := r.Header.Get(requestMethodHeader)
	if requestMethod == "" {
		logger.Debug("cors preflight request missing access-control-request-method header")
		return
	}

	permittedMethods := make([]string, 0, len(profile.AllowMethods)+len(h.latentAllowMethods))
	permittedMethods = append(permittedMethods, profile.AllowMethods...)
	permittedMethods = append(permittedMethods, h.latentAllowMethods...)
	if !contains(permittedMethods, requestMethod) {
		logger.Debug(
			"cors preflight request method not permitted",
			zap.String("origin", origin),
			zap.String("method", requestMethod),
		)
		return
	}

	// Requested headers are compared case-insensitively against the
	// profile's allow list, the simple headers, and any latent headers.
	permittedHeaders := make(map[string]bool)
	for _, lists := range [][]string{profile.AllowHeaders, simpleHeaders, h.latentAllowHeaders} {
		for _, header := range lists {
			permittedHeaders[strings.ToUpper(header)] = true
		}
	}
	requestHeaders := splitAndTrim(r.Header.Get(requestHeadersHeader))
	for _, requestedHeader := range requestHeaders {
		if !permittedHeaders[strings.ToUpper(requestedHeader)] {
			logger.Debug(
				"cors preflight request header not permitted",
				zap.String("origin", origin),
				zap.String("header", requestedHeader),
			)
			return
		}
	}

	w.Header().Add("Vary", originHeader)
	w.Header().Set(allowOriginHeader, matchedOrigin)
	if profile.AllowCredentials {
		w.Header().Set(allowCredentialsHeader, "true")
	}
	if profile.MaxAge > 0 {
		w.Header().Set(maxAgeHeader, strconv.Itoa(profile.MaxAge))
	}
	// Echo back the validated method and headers rather than the full
	// configured lists
	w.Header().Set(allowMethodsHeader, requestMethod)
	if len(requestHeaders) > 0 {
		w.Header().Set(allowHeadersHeader, strings.Join(requestHeaders, ","))
	}
}

// applyRequestHeaders attaches the basic CORS headers for non-preflight
// requests whose Origin matches a registered profile.
func (h *Handler) applyRequestHeaders(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get(originHeader)
	if origin == "" {
		return
	}
	matchedOrigin, profile, ok := h.profileForOrigin(origin)
	if !ok {
		log.Get(r.Context()).Debug("cors request from unregistered origin", zap.String("origin", origin))
		return
	}

	w.Header().Add("Vary", originHeader)
	w.Header().Set(allowOriginHeader, matchedOrigin)
	if profile.AllowCredentials {
		w.Header().Set(allowCredentialsHeader, "true")
	}
	exposed := make([]string, 0, len(profile.ExposeHeaders)+len(h.latentExposeHeaders))
	exposed = append(exposed, profile.ExposeHeaders...)
	exposed = append(exposed, h.latentExposeHeaders...)
	if len(exposed) > 0 {
		w.Header().Set(exposeHeadersHeader, strings.Join(exposed, ","))
	}
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
