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

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gatehouse-io/tools/service"
	"github.com/gorilla/mux"
)

// demoService is a minimal HTTPService demonstrating how to stand up a
// server behind the standard middleware stack. Run with
// --cors-enable-middleware --cors-allowed-origins='*' to see CORS headers
// served, or point --config at a file with per-origin profile groups.
type demoService struct{}

func (d demoService) RegisterHandlers(router *mux.Router) {
	router.HandleFunc("/hello", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, "hello")
	})
}

func main() {
	config := service.Config{
		Name:        "gatehouse-demo",
		Environment: "local",
		Version:     "0.1.0",
		GitSHA:      "dev",
	}
	cmd := config.ServerCmd(
		context.Background(),
		"demo server",
		"A demonstration server wired with the gatehouse middleware stack",
		func(service.Config) service.HTTPService { return demoService{} },
	)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
