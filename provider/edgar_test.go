// Copyright 2025
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
package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvstock/provider"
)

var _ = Describe("Edgar", func() {
	var (
		server        *httptest.Server
		edgar         *provider.Edgar
		directoryHits atomic.Int32
		userAgent     atomic.Value
	)

	BeforeEach(func() {
		directoryHits.Store(0)
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userAgent.Store(r.Header.Get("User-Agent"))
			switch {
			case r.URL.Path == "/files/company_tickers.json":
				directoryHits.Add(1)
				_, _ = w.Write([]byte(`{"0":{"cik_str":320193,"ticker":"AAPL","title":"Apple Inc."},
"1":{"cik_str":789019,"ticker":"MSFT","title":"MICROSOFT CORP"}}`))
			case r.URL.Path == "/facts/CIK0000320193.json":
				_, _ = w.Write([]byte(`{"cik":320193,"entityName":"Apple Inc.","facts":{"us-gaap":{}}}`))
			case strings.HasPrefix(r.URL.Path, "/facts/"):
				w.WriteHeader(http.StatusNotFound)
			default:
				w.WriteHeader(http.StatusTeapot)
			}
		}))

		edgar = provider.NewEdgar(provider.EdgarConfig{
			Config:     provider.Config{UserAgent: "pvstock test@example.com"},
			TickersURL: server.URL + "/files/company_tickers.json",
			FactsURL:   server.URL + "/facts/CIK%s.json",
		})
	})

	AfterEach(func() {
		server.Close()
	})

	It("pads CIKs to ten digits", func() {
		Expect(provider.PadCIK(320193)).To(Equal("0000320193"))
	})

	It("looks up tickers case-insensitively and caches the directory", func() {
		cik, err := edgar.LookupCIK(context.Background(), "aapl")
		Expect(err).NotTo(HaveOccurred())
		Expect(cik).To(Equal("0000320193"))

		cik, err = edgar.LookupCIK(context.Background(), "MSFT")
		Expect(err).NotTo(HaveOccurred())
		Expect(cik).To(Equal("0000789019"))

		Expect(directoryHits.Load()).To(Equal(int32(1)))
		Expect(userAgent.Load()).To(Equal("pvstock test@example.com"))
	})

	It("reports tickers missing from the directory", func() {
		_, err := edgar.LookupCIK(context.Background(), "ZZZZ")
		Expect(errors.Is(err, provider.ErrTickerNotFound)).To(BeTrue())
	})

	It("downloads company facts", func() {
		facts, err := edgar.CompanyFacts(context.Background(), "0000320193")
		Expect(err).NotTo(HaveOccurred())
		Expect(facts.Get("entityName").String()).To(Equal("Apple Inc."))
		Expect(facts.Get("facts.us-gaap").Exists()).To(BeTrue())
	})

	It("maps a missing facts document to ErrNotFound", func() {
		_, err := edgar.CompanyFacts(context.Background(), "0000000001")
		Expect(errors.Is(err, provider.ErrNotFound)).To(BeTrue())

		var httpErr *provider.HTTPError
		Expect(errors.As(err, &httpErr)).To(BeTrue())
		Expect(httpErr.StatusCode).To(Equal(http.StatusNotFound))
	})
})
