// Package sheets downloads duel sheets published as CSV, such as a
// spreadsheet's "publish to web" export link.
package sheets

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/vytor/duelrank/internal/logger"
)

// MaxSheetSize caps a download. Duel sheets are a few kilobytes.
const MaxSheetSize = 10 << 20

type Client struct {
	httpClient *http.Client
	log        *logger.Logger
}

// New returns a client that only connects to public addresses. The check runs
// on every dial, after DNS resolution and on redirects.
func New() *Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second, Control: publicOnly}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	transport.Proxy = nil

	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second, Transport: transport},
		log:        logger.Default().WithPrefix("sheets"),
	}
}

// NewWithHTTPClient lets callers supply their own transport. Address
// filtering is then up to hc.
func NewWithHTTPClient(hc *http.Client) *Client {
	c := New()
	c.httpClient = hc
	return c
}

// ValidateURL accepts absolute http(s) URLs whose host is not localhost or a
// literal loopback, private, link-local or unspecified address. Names are not
// resolved here; New's dialer rejects them at connect time.
func ValidateURL(raw string) error {
	u, err := parseSheetURL(raw)
	if err != nil {
		return err
	}
	host := strings.ToLower(u.Hostname())
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return fmt.Errorf("sheet url host %q is not public", host)
	}
	if ip, err := netip.ParseAddr(host); err == nil && !isPublic(ip) {
		return fmt.Errorf("sheet url host %q is not public", host)
	}
	return nil
}

func parseSheetURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid sheet url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("sheet url must be http or https, got %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("sheet url has no host")
	}
	return u, nil
}

func isPublic(ip netip.Addr) bool {
	ip = ip.Unmap()
	return ip.IsValid() &&
		!ip.IsLoopback() &&
		!ip.IsPrivate() &&
		!ip.IsUnspecified() &&
		!ip.IsLinkLocalUnicast() &&
		!ip.IsLinkLocalMulticast() &&
		!ip.IsInterfaceLocalMulticast() &&
		!ip.IsMulticast()
}

func publicOnly(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("dial %s: %w", address, err)
	}
	if !isPublic(ip) {
		return fmt.Errorf("dial %s: address is not public", address)
	}
	return nil
}

func (c *Client) FetchSheet(ctx context.Context, sheetURL string) ([]byte, error) {
	log := logger.FromContext(ctx).WithPrefix("sheets").WithField("sheet_url", sheetURL)

	if _, err := parseSheetURL(sheetURL); err != nil {
		return nil, err
	}

	log.Debug("fetching duel sheet")
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sheetURL, nil)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return nil, err
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("failed to fetch duel sheet: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	log.Debug("sheet response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("sheet request failed: status=%d, body=%s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("sheet status %d: %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxSheetSize+1))
	if err != nil {
		log.Error("failed to read duel sheet: %v", err)
		return nil, err
	}
	if len(data) > MaxSheetSize {
		return nil, fmt.Errorf("sheet larger than %d bytes", MaxSheetSize)
	}

	log.Info("fetched duel sheet: %d bytes", len(data))
	return data, nil
}
