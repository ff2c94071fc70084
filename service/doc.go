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

// Package service provides a standard HTTP server entrypoint wired with the
// middleware this library ships: request logging, prometheus metrics, Sentry
// error reporting, and multi-origin CORS policies. Applications implement
// HTTPService to register their routes and receive a fully-flagged cobra
// command in return.
package service
