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

package writer

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteHeader(t *testing.T) {
	recorder := httptest.NewRecorder()
	sr := &StatusRecorder{ResponseWriter: recorder, StatusCode: http.StatusOK}
	sr.WriteHeader(http.StatusTeapot)
	assert.Equal(t, http.StatusTeapot, sr.StatusCode)
	assert.Equal(t, http.StatusTeapot, recorder.Code)
}

func TestStatusRecorderMiddleware(t *testing.T) {
	sawRecorder := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, sawRecorder = w.(*StatusRecorder)
		w.WriteHeader(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()
	StatusRecorderMiddleware(handler).ServeHTTP(recorder, req)
	assert.True(t, sawRecorder)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestFetchRoutePathTemplate(t *testing.T) {
	var capturedTemplate string
	router := mux.NewRouter()
	router.HandleFunc("/widgets/{id}", func(w http.ResponseWriter, r *http.Request) {
		capturedTemplate = FetchRoutePathTemplate(r)
	})
	req := httptest.NewRequest(http.MethodGet, "/widgets/123", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "/widgets/{id}", capturedTemplate)

	// request outside the router has no route
	assert.Equal(t, "", FetchRoutePathTemplate(httptest.NewRequest(http.MethodGet, "/", nil)))
}
