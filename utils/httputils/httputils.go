// Copyright 2025 The Sahayak Authors
// SPDX-License-Identifier: Apache-2.0

// Package httputils provides http.RoundTripper layers shared by the
// outbound API clients.
package httputils

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"strings"
	"time"
)

// AppendRequestHeadersRoundTripper adds fixed headers to every request.
type AppendRequestHeadersRoundTripper struct {
	Transport http.RoundTripper
	Headers   map[string]string
}

// RoundTrip implements the http.RoundTripper interface.
func (t *AppendRequestHeadersRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	for k, v := range t.Headers {
		req.Header.Set(k, v)
	}

	return t.transport().RoundTrip(req)
}

func (t *AppendRequestHeadersRoundTripper) transport() http.RoundTripper {
	if t.Transport == nil {
		return http.DefaultTransport
	}

	return t.Transport
}

// LoggingRoundTripper dumps requests and responses to Writer. A nil
// Writer disables tracing entirely.
type LoggingRoundTripper struct {
	Transport http.RoundTripper
	Writer    io.Writer
	DumpBody  bool
}

const traceMaxChars = 512

// prefix each dumped line and cap its width.
func prefixed(dump []byte, prefix rune) string {
	lines := strings.Split(string(dump), "\n")
	for i, line := range lines {
		if len(line) > traceMaxChars {
			line = line[:traceMaxChars] + "…"
		}

		lines[i] = fmt.Sprintf("%c %s", prefix, line)
	}

	return strings.Join(lines, "\n") + "\n"
}

// RoundTrip implements the http.RoundTripper interface.
func (t *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	transport := t.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	if t.Writer == nil {
		return transport.RoundTrip(req)
	}

	dump, err := httputil.DumpRequestOut(req, t.DumpBody)
	if err != nil {
		return nil, fmt.Errorf("tracing HTTP request: %w", err)
	}

	fmt.Fprint(t.Writer, prefixed(dump, '>'))

	start := time.Now()

	resp, err := transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	dump, err = httputil.DumpResponse(resp, t.DumpBody)
	if err != nil {
		return nil, fmt.Errorf("tracing HTTP response: %w", err)
	}

	fmt.Fprintf(t.Writer, "< RESPONSE: [%v]\n%s", time.Since(start), prefixed(dump, '<'))

	return resp, nil
}
