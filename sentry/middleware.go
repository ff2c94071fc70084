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
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
)

// Middleware contains a Sentry handler
type Middleware struct {
	sentryHandler *sentryhttp.Handler
}

// NewMiddleware creates a new Sentry middleware object
func NewMiddleware() Middleware {
	return Middleware{
		sentryHandler: sentryhttp.New(sentryhttp.Options{
			Repanic:         true,
			WaitForDelivery: true,
			Timeout:         flushTimeout,
		}),
	}
}

// HTTP wraps the sentry-go library's middleware, which attaches a
// request-scoped Sentry hub to the request context and recovers panics. The
// request Origin header, when present, is tagged on the hub scope so that
// cross-origin failures are attributable to the calling site.
func (m Middleware) HTTP(next http.Handler) http.Handler {
	return m.sentryHandler.HandleFunc(func(w http.ResponseWriter, r *http.Request) {
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.ConfigureScope(func(scope *sentry.Scope) {
				if origin := r.Header.Get("Origin"); origin != "" {
					scope.SetTag("origin", origin)
				}
			})
		}
		next.ServeHTTP(w, r)
	})
}
