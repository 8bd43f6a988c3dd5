package ftx

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"ftx-rest/internal/config"
	"ftx-rest/internal/logging"
)

const (
	DefaultBaseURL = "https://ftx.com/api"
	DefaultWSURL   = "wss://ftx.com/ws/"

	HeaderKey        = "FTX-KEY"
	HeaderSign       = "FTX-SIGN"
	HeaderTS         = "FTX-TS"
	HeaderSubaccount = "FTX-SUBACCOUNT"
)

// Client talks to the REST API. Credentials are fixed at construction and
// the zero-retry transport makes exactly one attempt per call, so a Client
// may be shared between goroutines.
type Client struct {
	apiKey     string
	apiSecret  string
	subaccount string

	// origin is scheme://host; basePath is the path prefix that has to be
	// part of the signed payload, e.g. "/api".
	origin   string
	basePath string
	wsURL    string

	http    *resty.Client
	limiter *rate.Limiter
	log     logrus.FieldLogger
	now     func() time.Time
}

type Options struct {
	APIKey            string
	APISecret         string
	Subaccount        string
	RestBaseURL       string
	WSURL             string
	HTTPTimeoutSec    int64
	RequestsPerSecond int
	Logger            logrus.FieldLogger
}

func NewClient(cfg config.ExchangeConfig, logger logrus.FieldLogger) (*Client, error) {
	if (cfg.APIKey == "") != (cfg.APISecret == "") {
		return nil, errors.New("api_key/api_secret must be set together")
	}
	return NewClientWithOptions(Options{
		APIKey:            cfg.APIKey,
		APISecret:         cfg.APISecret,
		Subaccount:        cfg.Subaccount,
		RestBaseURL:       cfg.RestBaseURL,
		WSURL:             cfg.WSURL,
		HTTPTimeoutSec:    cfg.HTTPTimeoutSec,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            logger,
	}), nil
}

func NewClientWithOptions(opts Options) *Client {
	timeout := 15 * time.Second
	if opts.HTTPTimeoutSec > 0 {
		timeout = time.Duration(opts.HTTPTimeoutSec) * time.Second
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.RestBaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	wsURL := strings.TrimSpace(opts.WSURL)
	if wsURL == "" {
		wsURL = DefaultWSURL
	}
	var logger logrus.FieldLogger = logging.Discard()
	if opts.Logger != nil {
		logger = opts.Logger
	}
	origin, basePath := splitBaseURL(baseURL)

	httpClient := resty.New().
		SetBaseURL(origin).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetLogger(logger)

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.RequestsPerSecond)
	}

	return &Client{
		apiKey:     opts.APIKey,
		apiSecret:  opts.APISecret,
		subaccount: opts.Subaccount,
		origin:     origin,
		basePath:   basePath,
		wsURL:      wsURL,
		http:       httpClient,
		limiter:    limiter,
		log:        logger,
		now:        time.Now,
	}
}

func splitBaseURL(raw string) (string, string) {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return raw, ""
	}
	return parsed.Scheme + "://" + parsed.Host, strings.TrimRight(parsed.EscapedPath(), "/")
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.send(ctx, "GET", path, params, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.send(ctx, "POST", path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string, body, out any) error {
	return c.send(ctx, "DELETE", path, nil, body, out)
}

// send signs and performs a single request, then unwraps the response
// envelope into out.
func (c *Client) send(ctx context.Context, method, path string, params url.Values, body, out any) error {
	requestPath := c.basePath + "/" + strings.TrimLeft(path, "/")
	if encoded := params.Encode(); encoded != "" {
		requestPath += "?" + encoded
	}
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "ftx: encode %s %s body", method, path)
		}
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Wrapf(err, "ftx: %s %s", method, path)
		}
	}

	req := c.http.R().SetContext(ctx)
	for key, value := range c.signedHeaders(method, requestPath, payload) {
		req.SetHeader(key, value)
	}
	if payload != nil {
		req.SetHeader("Content-Type", "application/json")
		req.SetBody(payload)
	}

	started := time.Now()
	resp, err := req.Execute(method, requestPath)
	if err != nil {
		return errors.Wrapf(err, "ftx: %s %s", method, path)
	}
	c.log.WithFields(logrus.Fields{
		"event":       "ftx_request",
		"method":      method,
		"path":        requestPath,
		"status":      resp.StatusCode(),
		"duration_ms": time.Since(started).Milliseconds(),
	}).Debug("request finished")

	return decodeEnvelope(resp.StatusCode(), resp.Body(), out)
}

// signedHeaders returns the auth header set for one request. The timestamp
// is taken here and used for this request only.
func (c *Client) signedHeaders(method, requestPath string, body []byte) map[string]string {
	ts := strconv.FormatInt(c.now().UnixMilli(), 10)
	headers := map[string]string{
		HeaderKey:  c.apiKey,
		HeaderSign: sign(c.apiSecret, signaturePayload(ts, method, requestPath, body)),
		HeaderTS:   ts,
	}
	if c.subaccount != "" {
		headers[HeaderSubaccount] = escapeSubaccount(c.subaccount)
	}
	return headers
}

// signaturePayload concatenates timestamp, method, path with query and the
// raw body. The server rebuilds the same bytes, so order matters.
func signaturePayload(ts, method, requestPath string, body []byte) string {
	var b strings.Builder
	b.Grow(len(ts) + len(method) + len(requestPath) + len(body))
	b.WriteString(ts)
	b.WriteString(method)
	b.WriteString(requestPath)
	b.Write(body)
	return b.String()
}

func sign(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// escapeSubaccount percent-encodes every byte except unreserved characters
// and '/'. Sub-delims such as '+' and '&' are escaped too.
func escapeSubaccount(name string) string {
	const upperhex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		ch := name[i]
		if keepInSubaccount(ch) {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[ch>>4])
		b.WriteByte(upperhex[ch&0x0f])
	}
	return b.String()
}

func keepInSubaccount(ch byte) bool {
	switch {
	case 'a' <= ch && ch <= 'z', 'A' <= ch && ch <= 'Z', '0' <= ch && ch <= '9':
		return true
	}
	switch ch {
	case '-', '.', '_', '~', '/':
		return true
	}
	return false
}

func decodeEnvelope(status int, body []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &HTTPError{StatusCode: status, Body: truncateBody(body), Err: err}
	}
	if !env.Success {
		if env.Error == "" {
			// Valid JSON but not an envelope, e.g. a proxy error page.
			return &HTTPError{StatusCode: status, Body: truncateBody(body), Err: errNotEnvelope}
		}
		return newAPIError(status, env.Error)
	}
	if out == nil || len(env.Result) == 0 || string(env.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return errors.Wrap(err, "ftx: decode result")
	}
	return nil
}

var errNotEnvelope = errors.New("response is not an api envelope")

func truncateBody(body []byte) string {
	const max = 512
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// decimalNumber renders d as a JSON number literal.
func decimalNumber(d interface{ String() string }) json.Number {
	return json.Number(d.String())
}

func setTime(params url.Values, key string, t time.Time) {
	if t.IsZero() {
		return
	}
	params.Set(key, strconv.FormatInt(t.Unix(), 10))
}
