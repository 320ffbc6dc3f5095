// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package provider

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/penny-vault/pvstock/pkginfo"
)

const DefaultTimeout = 60 * time.Second

var (
	ErrTickerNotFound = errors.New("ticker not found")
	ErrNotFound       = errors.New("resource not found")
	ErrDecode         = errors.New("could not decode provider response")
)

// HTTPError is returned when a provider answers with a non-success status
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.URL, e.StatusCode)
}

// Is reports a 404 response as ErrNotFound
func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Config holds the transport settings shared by all providers
type Config struct {
	// BaseURL overrides the provider's public endpoint
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// RateLimit is the maximum number of requests per second; zero uses
	// the provider default
	RateLimit float64
}

func newClient(cfg Config) *resty.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = pkginfo.UserAgent()
	}

	return resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")
}

func checkResponse(resp *resty.Response) error {
	if resp.StatusCode() >= 300 {
		return &HTTPError{
			StatusCode: resp.StatusCode(),
			URL:        resp.Request.URL,
		}
	}
	return nil
}
