// Package httpclient provides the HTTP client used for every request
// the library makes: connection pooling, optional proxy routing, a
// browser-like TLS fingerprint for hosts that reject plain Go TLS, and
// a uniform timeout/retry policy.
package httpclient

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gamepass-go/pkg/config"
	"gamepass-go/pkg/logging"
	"gamepass-go/pkg/urlutil"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
	"golang.org/x/net/proxy"
)

// Client wraps http.Client with proxy routing, TLS fingerprinting and
// timeout handling. Every request runs under a base timeout; a timeout
// triggers exactly one retry under a longer timeout, and a second
// timeout is terminal for that call.
type Client struct {
	defaultClient    *http.Client
	proxyClient      *http.Client
	utlsClient       *http.Client
	fingerprintHosts []string
	requestTimeout   time.Duration
	retryTimeout     time.Duration
	log              *logging.Logger
}

func dialer() *net.Dialer {
	return &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 60 * time.Second,
	}
}

// dialContext forces IPv4; some of the service's CDN hosts publish
// AAAA records that do not answer.
func dialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	if network == "tcp" {
		network = "tcp4"
	}
	return dialer().DialContext(ctx, network, addr)
}

func pooledTransport() *http.Transport {
	return &http.Transport{
		DialContext:           dialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// New creates a new HTTP client with the given configuration.
func New(cfg *config.Config, log *logging.Logger) *Client {
	c := &Client{
		fingerprintHosts: cfg.FingerprintHosts,
		requestTimeout:   cfg.RequestTimeout,
		retryTimeout:     cfg.RetryTimeout,
		log:              log.WithComponent("httpclient"),
	}

	c.defaultClient = &http.Client{Transport: pooledTransport()}
	c.utlsClient = &http.Client{Transport: newFingerprintRoundTripper()}

	if cfg.ProxyURL != "" {
		c.proxyClient = c.createProxyClient(cfg.ProxyURL)
	}

	return c
}

// Do executes an HTTP request under the client's timeout policy.
// POST bodies built with http.NewRequest and a bytes.Reader carry a
// GetBody and can be replayed on the retry attempt.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	client := c.clientForURL(req.URL.String())

	resp, err := c.attempt(client, req, c.requestTimeout)
	if err == nil || !isTimeout(err) {
		return resp, err
	}

	c.log.Warn("request timed out, retrying with longer timeout",
		"url", req.URL.String(), "timeout", c.retryTimeout)

	retry, cloneErr := cloneRequest(req)
	if cloneErr != nil {
		return nil, err
	}
	return c.attempt(client, retry, c.retryTimeout)
}

// attempt runs one request under its own deadline. The cancel func is
// held open until the response body is closed.
func (c *Client) attempt(client *http.Client, req *http.Request, timeout time.Duration) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(req.Context(), timeout)
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelCloser{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func cloneRequest(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("request body cannot be replayed")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	clone.Body = body
	return clone, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

type cancelCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelCloser) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

// clientForURL picks the underlying client: fingerprint-sensitive hosts
// get the utls client, everything else goes through the proxy when one
// is configured.
func (c *Client) clientForURL(targetURL string) *http.Client {
	if urlutil.HostSuffixMatch(targetURL, c.fingerprintHosts) {
		c.log.Debug("using browser TLS fingerprint", "url", targetURL)
		return c.utlsClient
	}
	if c.proxyClient != nil {
		return c.proxyClient
	}
	return c.defaultClient
}

// createProxyClient builds a client routed through an http(s) or
// socks5 proxy URL. An unusable proxy URL falls back to the direct
// client so a misconfiguration degrades instead of breaking every call.
func (c *Client) createProxyClient(proxyURL string) *http.Client {
	transport := pooledTransport()

	parsedURL, err := url.Parse(proxyURL)
	if err != nil {
		c.log.Error("failed to parse proxy URL", "url", proxyURL, "error", err)
		return c.defaultClient
	}

	switch parsedURL.Scheme {
	case "socks5", "socks5h":
		d, err := proxy.FromURL(parsedURL, proxy.Direct)
		if err != nil {
			c.log.Error("failed to create SOCKS5 dialer", "error", err)
			return c.defaultClient
		}
		if contextDialer, ok := d.(proxy.ContextDialer); ok {
			transport.DialContext = contextDialer.DialContext
		} else {
			transport.Dial = d.Dial
		}
	case "http", "https":
		transport.Proxy = http.ProxyURL(parsedURL)
	default:
		c.log.Warn("unsupported proxy scheme", "scheme", parsedURL.Scheme)
		return c.defaultClient
	}

	return &http.Client{Transport: transport}
}

// fingerprintRoundTripper dials with a Chrome TLS ClientHello. The
// Gigya identity provider sits behind bot protection that rejects the
// stock Go TLS stack.
type fingerprintRoundTripper struct {
	dialer      *net.Dialer
	h2Transport *http2.Transport
}

func newFingerprintRoundTripper() *fingerprintRoundTripper {
	return &fingerprintRoundTripper{
		dialer:      dialer(),
		h2Transport: &http2.Transport{},
	}
}

func (t *fingerprintRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return http.DefaultTransport.RoundTrip(req)
	}

	addr := req.URL.Host
	if !strings.Contains(addr, ":") {
		addr += ":443"
	}

	conn, err := t.dialer.DialContext(req.Context(), "tcp4", addr)
	if err != nil {
		return nil, err
	}

	tlsConfig := &utls.Config{ServerName: req.URL.Hostname()}
	utlsConn := utls.UClient(conn, tlsConfig, utls.HelloChrome_120)
	if err := utlsConn.Handshake(); err != nil {
		conn.Close()
		return nil, err
	}

	if utlsConn.ConnectionState().NegotiatedProtocol == "h2" {
		h2Conn, err := t.h2Transport.NewClientConn(utlsConn)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return h2Conn.RoundTrip(req)
	}

	return t.doHTTP1Request(utlsConn, req)
}

func (t *fingerprintRoundTripper) doHTTP1Request(conn net.Conn, req *http.Request) (*http.Response, error) {
	if err := req.Write(conn); err != nil {
		conn.Close()
		return nil, err
	}

	resp, err := http.ReadResponse(bufio.NewReader(conn), req)
	if err != nil {
		conn.Close()
		return nil, err
	}

	resp.Body = &connCloser{ReadCloser: resp.Body, conn: conn}
	return resp, nil
}

type connCloser struct {
	io.ReadCloser
	conn net.Conn
}

func (c *connCloser) Close() error {
	c.ReadCloser.Close()
	return c.conn.Close()
}
