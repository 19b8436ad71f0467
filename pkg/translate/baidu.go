package translate

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // The Baidu API mandates an MD5 request signature.
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

// Baidu API defaults.
const (
	DefaultBaiduEndpoint = "http://api.fanyi.baidu.com/api/trans/vip/translate"
	DefaultFrom          = "zh"
	DefaultTo            = "en"
	DefaultTimeout       = 10 * time.Second

	baiduSuccessCode    = "52000"
	maxResponseBytes    = 1 << 20
	responseSchemaFile  = "schema/baidu_response.json"
	maxErrorBodyPreview = 200
)

//go:embed schema/baidu_response.json
var schemaFS embed.FS

//nolint:gochecknoglobals // Compiled once, immutable afterwards.
var responseSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	data, err := schemaFS.ReadFile(responseSchemaFile)
	if err != nil {
		return nil, err
	}

	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
})

// BaiduConfig configures a BaiduClient.
type BaiduConfig struct {
	Endpoint string
	AppID    string
	Secret   string
	From     string
	To       string
	Proxy    string
	Timeout  time.Duration
	Logger   *slog.Logger

	// HTTPClient overrides the client built from Proxy and Timeout.
	HTTPClient *http.Client
}

// BaiduClient calls the Baidu general translation API.
type BaiduClient struct {
	http     *http.Client
	logger   *slog.Logger
	now      func() time.Time
	endpoint string
	appID    string
	secret   string
	from     string
	to       string
	lastSalt atomic.Int64
}

// NewBaiduClient validates cfg and creates a client.
func NewBaiduClient(cfg BaiduConfig) (*BaiduClient, error) {
	if cfg.AppID == "" || cfg.Secret == "" {
		return nil, ErrMissingCredentials
	}

	proxy, err := parseProxy(cfg.Proxy)
	if err != nil {
		return nil, err
	}

	if _, err = responseSchema(); err != nil {
		return nil, fmt.Errorf("load response schema: %w", err)
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}

		client = makeHTTPClient(proxy, timeout)
	}

	lg := cfg.Logger
	if lg == nil {
		lg = slog.Default()
	}

	return &BaiduClient{
		http:     client,
		logger:   lg,
		now:      time.Now,
		endpoint: orDefault(cfg.Endpoint, DefaultBaiduEndpoint),
		appID:    cfg.AppID,
		secret:   cfg.Secret,
		from:     orDefault(cfg.From, DefaultFrom),
		to:       orDefault(cfg.To, DefaultTo),
	}, nil
}

// Sign computes the request signature md5(appID + text + salt + secret).
func Sign(appID, text, salt, secret string) string {
	sum := md5.Sum([]byte(appID + text + salt + secret)) //nolint:gosec // Mandated by the API.

	return hex.EncodeToString(sum[:])
}

type baiduResponse struct {
	ErrorCode   json.Number `json:"error_code"`
	ErrorMsg    string      `json:"error_msg"`
	TransResult []struct {
		Src string `json:"src"`
		Dst string `json:"dst"`
	} `json:"trans_result"`
}

// Translate sends one translation request and returns the first candidate.
func (c *BaiduClient) Translate(ctx context.Context, text string) (string, error) {
	salt := strconv.FormatInt(c.nextSalt(), 10)

	params := url.Values{}
	params.Set("q", text)
	params.Set("from", c.from)
	params.Set("to", c.to)
	params.Set("appid", c.appID)
	params.Set("salt", salt)
	params.Set("sign", Sign(c.appID, text, salt, c.secret))

	reqURL := c.endpoint
	if strings.Contains(reqURL, "?") {
		reqURL += "&" + params.Encode()
	} else {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP %d: %s", ErrTransport, resp.StatusCode, preview(body))
	}

	parsed, err := decodeResponse(body)
	if err != nil {
		return "", err
	}

	if code := parsed.ErrorCode.String(); code != "" && code != baiduSuccessCode {
		return "", fmt.Errorf("%w: %s %s", ErrAPI, code, parsed.ErrorMsg)
	}

	if len(parsed.TransResult) == 0 {
		c.logger.Warn("translation response has no result", "text", text)

		return "", ErrNoResult
	}

	c.logger.Debug("translated", "text", text, "result", parsed.TransResult[0].Dst)

	return parsed.TransResult[0].Dst, nil
}

// nextSalt returns the current unix millisecond timestamp, bumped when needed
// so that consecutive calls never reuse a salt.
func (c *BaiduClient) nextSalt() int64 {
	for {
		last := c.lastSalt.Load()

		next := c.now().UnixMilli()
		if next <= last {
			next = last + 1
		}

		if c.lastSalt.CompareAndSwap(last, next) {
			return next
		}
	}
}

func decodeResponse(body []byte) (*baiduResponse, error) {
	schema, err := responseSchema()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, resultErr := range result.Errors() {
			msgs = append(msgs, resultErr.String())
		}

		return nil, fmt.Errorf("%w: %s", ErrBadResponse, strings.Join(msgs, "; "))
	}

	var parsed baiduResponse

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	if err := dec.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}

	return &parsed, nil
}

// parseProxy returns nil for an empty proxy setting.
func parseProxy(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, nil //nolint:nilnil // No proxy configured.
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProxy, err)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q needs a scheme and host", ErrInvalidProxy, raw)
	}

	return parsed, nil
}

// makeHTTPClient builds a client honouring an explicit proxy, or the
// HTTP(S)_PROXY environment variables when none is given.
func makeHTTPClient(proxy *url.URL, timeout time.Duration) *http.Client {
	transport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return &http.Client{Timeout: timeout}
	}

	transport = transport.Clone()

	if proxy != nil {
		transport.Proxy = http.ProxyURL(proxy)
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{Transport: transport, Timeout: timeout}
}

func preview(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBodyPreview {
		return s[:maxErrorBodyPreview] + "..."
	}

	return s
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
