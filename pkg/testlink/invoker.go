// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package testlink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/kolo/xmlrpc"
	"github.com/teradata-labs/testlink-mcp/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultRequestTimeout bounds every XML-RPC round trip.
const DefaultRequestTimeout = 30 * time.Second

// APIPath is the XML-RPC endpoint relative to the TestLink base URL.
const APIPath = "/lib/api/xmlrpc/v1/xmlrpc.php"

// devKeyParam is the credential field TestLink expects on every call.
const devKeyParam = "devKey"

// Params is the parameter struct sent to a TestLink method.
type Params map[string]interface{}

// Invoker executes a single TestLink XML-RPC method.
type Invoker interface {
	Invoke(ctx context.Context, method string, params Params) (interface{}, error)
}

// XMLRPCInvoker is the long-lived connection handle to a TestLink server.
// It holds only connection configuration and is safe for concurrent use.
type XMLRPCInvoker struct {
	endpoint   string
	devKey     string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// InvokerOption configures an XMLRPCInvoker.
type InvokerOption func(*XMLRPCInvoker)

// WithTimeout overrides DefaultRequestTimeout.
func WithTimeout(d time.Duration) InvokerOption {
	return func(i *XMLRPCInvoker) {
		if d > 0 {
			i.timeout = d
		}
	}
}

// WithRateLimit paces outgoing calls to at most perSecond calls per second.
// Zero or negative disables pacing.
func WithRateLimit(perSecond float64) InvokerOption {
	return func(i *XMLRPCInvoker) {
		if perSecond > 0 {
			i.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithMetrics records per-method call counts and latencies.
func WithMetrics(m *metrics.Metrics) InvokerOption {
	return func(i *XMLRPCInvoker) {
		i.metrics = m
	}
}

// WithHTTPClient replaces the HTTP client. Its Timeout is reset to the
// invoker timeout.
func WithHTTPClient(c *http.Client) InvokerOption {
	return func(i *XMLRPCInvoker) {
		i.httpClient = c
	}
}

// NewXMLRPCInvoker creates an invoker for the TestLink instance at baseURL.
func NewXMLRPCInvoker(baseURL, devKey string, logger *zap.Logger, opts ...InvokerOption) (*XMLRPCInvoker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("TestLink URL is required")
	}
	if devKey == "" {
		return nil, fmt.Errorf("TestLink API key is required")
	}

	inv := &XMLRPCInvoker{
		endpoint: Endpoint(baseURL),
		devKey:   devKey,
		timeout:  DefaultRequestTimeout,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(inv)
	}
	if inv.httpClient == nil {
		inv.httpClient = &http.Client{}
	}
	inv.httpClient.Timeout = inv.timeout
	return inv, nil
}

// Endpoint returns the XML-RPC URL for a TestLink base URL. A URL that
// already points at xmlrpc.php is returned unchanged.
func Endpoint(baseURL string) string {
	u := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if strings.HasSuffix(u, ".php") {
		return u
	}
	return u + APIPath
}

// URL returns the XML-RPC endpoint this invoker talks to.
func (i *XMLRPCInvoker) URL() string {
	return i.endpoint
}

// Invoke calls method with params plus the dev key. Backend error codes,
// XML-RPC faults and transport failures all come back as *Error.
func (i *XMLRPCInvoker) Invoke(ctx context.Context, method string, params Params) (interface{}, error) {
	start := time.Now()
	result, err := i.invoke(ctx, method, params)
	duration := time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = string(KindOf(err))
		i.logger.Debug("TestLink call failed",
			zap.String("method", method),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
	} else {
		i.logger.Debug("TestLink call succeeded",
			zap.String("method", method),
			zap.Duration("duration", duration),
		)
	}
	i.metrics.ObserveRPC(method, outcome, duration)
	return result, err
}

func (i *XMLRPCInvoker) invoke(ctx context.Context, method string, params Params) (interface{}, error) {
	callCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	if i.limiter != nil {
		if err := i.limiter.Wait(callCtx); err != nil {
			if ctx.Err() == nil {
				// Wait fails early when the next slot lies past the call deadline.
				err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
			}
			return nil, i.transportError(err)
		}
	}

	// Copy so the caller's params never carry the credential.
	args := make(map[string]interface{}, len(params)+1)
	for k, v := range params {
		args[k] = v
	}
	args[devKeyParam] = i.devKey

	body, err := xmlrpc.EncodeMethodCall(method, args)
	if err != nil {
		return nil, &Error{Kind: KindInternal, Message: fmt.Sprintf("encode %s request: %v", method, err), Err: err}
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, i.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindInternal, Message: fmt.Sprintf("build %s request: %v", method, err), Err: err}
	}
	req.Header.Set("Content-Type", "text/xml")

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, i.transportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &Error{Kind: KindTransport, Message: "TestLink API endpoint not found. Please check TestLink configuration."}
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &Error{Kind: KindTransport, Message: fmt.Sprintf("TestLink server error (%d): %s", resp.StatusCode, http.StatusText(resp.StatusCode))}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindTransport, Message: fmt.Sprintf("API call failed: unexpected HTTP status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, i.transportError(err)
	}

	xmlResp := xmlrpc.Response(data)
	if err := xmlResp.Err(); err != nil {
		var fault xmlrpc.FaultError
		if errors.As(err, &fault) {
			return nil, backendError(fault.Code, fault.String)
		}
		return nil, &Error{Kind: KindBackend, Message: fmt.Sprintf("decode %s fault: %v", method, err), Err: err}
	}

	var result interface{}
	if err := xmlResp.Unmarshal(&result); err != nil {
		return nil, &Error{Kind: KindBackend, Message: fmt.Sprintf("decode %s response: %v", method, err), Err: err}
	}

	if tlErr := embeddedError(result); tlErr != nil {
		return nil, tlErr
	}
	return result, nil
}

// transportError classifies a failure that happened before a response was read.
func (i *XMLRPCInvoker) transportError(err error) *Error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return &Error{Kind: KindTransport, Err: err,
			Message: fmt.Sprintf("Cannot connect to TestLink at %s. Please check TESTLINK_URL.", i.endpoint)}
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Kind: KindTransport, Err: err,
			Message: fmt.Sprintf("TestLink API request timed out after %s", i.timeout)}
	}
	return &Error{Kind: KindTransport, Err: err, Message: fmt.Sprintf("API call failed: %v", err)}
}

// embeddedError inspects a decoded response for TestLink's error convention:
// an array whose first element is a struct with a non-zero code.
func embeddedError(result interface{}) *Error {
	items, ok := result.([]interface{})
	if !ok || len(items) == 0 {
		return nil
	}
	first, ok := items[0].(map[string]interface{})
	if !ok {
		return nil
	}
	code, ok := intValue(first["code"])
	if !ok || code == 0 {
		return nil
	}
	message, _ := first["message"].(string)
	return backendError(code, message)
}

// intValue reads a number the XML-RPC decoder may have produced as any
// integer, float or numeric string.
func intValue(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}
