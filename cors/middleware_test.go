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
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restrictedHandler() *Handler {
	h := NewHandler()
	h.AddOrigin(Profile{
		AllowCredentials: true,
		MaxAge:           1800,
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowHeaders:     []string{"X-Custom-Header"},
		ExposeHeaders:    []string{"X-Request-Id"},
	}, "https://valid.example.com")
	return h
}

func TestGetHTTPServerMiddleware(t *testing.T) {
	wildcardAndSpecific := NewHandler()
	wildcardAndSpecific.AddOrigin(Profile{AllowMethods: []string{http.MethodGet}}, Wildcard)
	wildcardAndSpecific.AddOrigin(Profile{
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet},
	}, "https://valid.example.com")

	latent := restrictedHandler()
	latent.SetLatent([]string{http.MethodPatch}, []string{"X-Latent-Header"}, []string{"X-Latent-Exposed"})

	tests := []struct {
		requestHeaders          map[string]string
		expectedHeaders         map[string]string
		unexpectedHeaders       []string
		name                    string
		httpMethod              string
		handler                 *Handler
		expectNextHandlerCalled bool
	}{
		{
			name:       "request with a matching origin receives that profile's headers",
			handler:    restrictedHandler(),
			httpMethod: http.MethodGet,
			requestHeaders: map[string]string{
				"Origin": "https://valid.example.com",
			},
			expectedHeaders: map[string]string{
				"Access-Control-Allow-Origin":      "https://valid.example.com",
				"Access-Control-Allow-Credentials": "true",
				"Access-Control-Expose-Headers":    "X-Request-Id",
				"Vary":                             "Origin",
			},
			expectNextHandlerCalled: true,
		}, {
			name:       "request with an unregistered origin receives no cors headers",
			handler:    restrictedHandler(),
			httpMethod: http.MethodGet,
			requestHeaders: map[string]string{
				"Origin": "https://invalid.example.com",
			},
			unexpectedHeaders: []string{
				"Access-Control-Allow-Origin",
				"Access-Control-Allow-Credentials",
				"Access-Control-Expose-Headers",
			},
			expectNextHandlerCalled: true,
		}, {
			name:                    "request without an origin receives no cors headers",
			handler:                 restrictedHandler(),
			httpMethod:              http.MethodGet,
			unexpectedHeaders:       []string{"Access-Control-Allow-Origin"},
			expectNextHandlerCalled: true,
		}, {
			name:       "wildcard profile matches any origin and echoes the wildcard",
			handler:    wildcardAndSpecific,
			httpMethod: http.MethodGet,
			requestHeaders: map[string]string{
				"Origin": "https://anywhere.example.com",
			},
			expectedHeaders: map[string]string{
				"Access-Control-Allow-Origin": "*",
			},
			unexpectedHeaders:       []string{"Access-Control-Allow-Credentials"},
			expectNextHandlerCalled: true,
		}, {
			name:       "exact profile wins over the wildcard profile",
			handler:    wildcardAndSpecific,
			httpMethod: http.MethodGet,
			requestHeaders: map[string]string{
				"Origin": "https://valid.example.com",
			},
			expectedHeaders: map[string]string{
				"Access-Control-Allow-Origin":      "https://valid.example.com",
				"Access-Control-Allow-Credentials": "true",
			},
			expectNextHandlerCalled: true,
		}, {
			name:       "preflight with a permitted method echoes the requested method and headers",
			handler:    restrictedHandler(),
			httpMethod: http.MethodOptions,
			requestHeaders: map[string]string{
				"Origin":                         "https://valid.example.com",
				"Access-Control-Request-Method":  http.MethodPost,
				"Access-Control-Request-Headers": "x-custom-header, content-type",
			},
			expectedHeaders: map[string]string{
				"Access-Control-Allow-Origin":      "https://valid.example.com",
				"Access-Control-Allow-Methods":     http.MethodPost,
				"Access-Control-Allow-Headers":     "x-custom-header,content-type",
				"Access-Control-Allow-Credentials": "true",
				"Access-Control-Max-Age":           "1800",
			},
		}, {
			name:       "preflight with a disallowed method receives no cors headers",
			handler:    restrictedHandler(),
			httpMethod: http.MethodOptions,
			requestHeaders: map[string]string{
				"Origin":                        "https://valid.example.com",
				"Access-Control-Request-Method": http.MethodDelete,
			},
			unexpectedHeaders: []string{
				"Access-Control-Allow-Origin",
				"Access-Control-Allow-Methods",
			},
		}, {
			name:       "preflight with a disallowed header receives no cors headers",
			handler:    restrictedHandler(),
			httpMethod: http.MethodOptions,
			requestHeaders: map[string]string{
				"Origin":                         "https://valid.example.com",
				"Access-Control-Request-Method":  http.MethodGet,
				"Access-Control-Request-Headers": "X-Forbidden-Header",
			},
			unexpectedHeaders: []string{
				"Access-Control-Allow-Origin",
				"Access-Control-Allow-Headers",
			},
		}, {
			name:       "preflight without a requested method receives no cors headers",
			handler:    restrictedHandler(),
			httpMethod: http.MethodOptions,
			requestHeaders: map[string]string{
				"Origin": "https://valid.example.com",
			},
			unexpectedHeaders: []string{"Access-Control-Allow-Origin"},
		}, {
			name:       "preflight from an unregistered origin receives no cors headers",
			handler:    restrictedHandler(),
			httpMethod: http.MethodOptions,
			requestHeaders: map[string]string{
				"Origin":                        "https://invalid.example.com",
				"Access-Control-Request-Method": http.MethodGet,
			},
			unexpectedHeaders: []string{"Access-Control-Allow-Origin"},
		}, {
			name:       "latent methods and headers are permitted on preflight",
			handler:    latent,
			httpMethod: http.MethodOptions,
			requestHeaders: map[string]string{
				"Origin":                         "https://valid.example.com",
				"Access-Control-Request-Method":  http.MethodPatch,
				"Access-Control-Request-Headers": "X-Latent-Header",
			},
			expectedHeaders: map[string]string{
				"Access-Control-Allow-Origin":  "https://valid.example.com",
				"Access-Control-Allow-Methods": http.MethodPatch,
				"Access-Control-Allow-Headers": "X-Latent-Header",
			},
		}, {
			name:       "latent expose headers are appended on actual requests",
			handler:    latent,
			httpMethod: http.MethodGet,
			requestHeaders: map[string]string{
				"Origin": "https://valid.example.com",
			},
			expectedHeaders: map[string]string{
				"Access-Control-Expose-Headers": "X-Request-Id,X-Latent-Exposed",
			},
			expectNextHandlerCalled: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			testHandlerCalled := false
			testHandler := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
				testHandlerCalled = true
			})

			corsMiddleware := test.handler.GetHTTPServerMiddleware()
			testServer := httptest.NewServer(corsMiddleware(testHandler))
			defer testServer.Close()

			req, err := http.NewRequest(test.httpMethod, testServer.URL, nil)
			require.NoError(t, err)
			for header, value := range test.requestHeaders {
				req.Header.Set(header, value)
			}

			resp, err := (&http.Client{}).Do(req)
			require.NoError(t, err)
			require.NotNil(t, resp)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			for expectedHeader, expectedValue := range test.expectedHeaders {
				assert.Equal(t, expectedValue, resp.Header.Get(expectedHeader), expectedHeader)
			}
			for _, unexpectedHeader := range test.unexpectedHeaders {
				assert.Empty(t, resp.Header.Get(unexpectedHeader), unexpectedHeader)
			}
			assert.Equal(t, test.expectNextHandlerCalled, testHandlerCalled)
		})
	}
}

func TestGetHTTPServerMiddlewareSkipsDecoratedResponses(t *testing.T) {
	h := restrictedHandler()
	corsMiddleware := h.GetHTTPServerMiddleware()

	// an earlier middleware has already attached CORS headers
	decorating := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "https://upstream.example.com")
			next.ServeHTTP(w, r)
		})
	}

	testHandlerCalled := false
	testHandler := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		testHandlerCalled = true
	})
	testServer := httptest.NewServer(decorating(corsMiddleware(testHandler)))
	defer testServer.Close()

	req, err := http.NewRequest(http.MethodGet, testServer.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://valid.example.com")

	resp, err := (&http.Client{}).Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "https://upstream.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.True(t, testHandlerCalled)
}

func TestConfigGetHTTPServerMiddleware(t *testing.T) {
	config := NewDefaultConfig()
	config.AllowedOrigins = "*"
	config.AllowCredentials = false

	testServer := httptest.NewServer(config.GetHTTPServerMiddleware()(http.NotFoundHandler()))
	defer testServer.Close()

	req, err := http.NewRequest(http.MethodGet, testServer.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://anywhere.example.com")

	resp, err := (&http.Client{}).Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Credentials"))
}
