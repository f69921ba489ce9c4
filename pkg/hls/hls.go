// Package hls breaks an HLS master playlist into its individual
// variant streams. Useful when a player cannot do adaptive streaming
// and needs one fixed-bitrate URL.
package hls

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"gamepass-go/pkg/interfaces"
	"gamepass-go/pkg/logging"
	"gamepass-go/pkg/urlutil"
)

const streamInfTag = "#EXT-X-STREAM-INF:"

// Variants fetches a master playlist and returns a map of bandwidth in
// kbps to the variant's absolute URL. Variant URLs inherit the
// master's query string plus the player header suffix, since the CDN
// authorizes segments off the manifest's query. Nil on failure.
type Variants map[int]string

// Client fetches and splits master playlists.
type Client struct {
	client    interfaces.HTTPClient
	userAgent string
	log       *logging.Logger
}

// New creates an HLS client.
func New(client interfaces.HTTPClient, userAgent string, log *logging.Logger) *Client {
	return &Client{
		client:    client,
		userAgent: userAgent,
		log:       log.WithComponent("hls"),
	}
}

// VariantStreams fetches manifestURL and extracts its variant streams.
func (c *Client) VariantStreams(ctx context.Context, manifestURL string) Variants {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, manifestURL, nil)
	if err != nil {
		c.log.WithError(err).Error("variant streams: request could not be created")
		return nil
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.WithError(err).Error("variant streams: request failed")
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.WithError(err).Error("variant streams: response could not be read")
		return nil
	}

	return c.parseMaster(string(body), manifestURL)
}

// parseMaster walks the manifest lines pairing each stream-inf tag
// with the URI line that follows it.
func (c *Client) parseMaster(manifest, manifestURL string) Variants {
	suffix := urlutil.HeaderSuffix(map[string]string{
		"Connection": "keep-alive",
		"User-Agent": c.userAgent,
	})
	query := urlutil.Query(manifestURL)

	variants := Variants{}
	pendingBandwidth := -1

	scanner := bufio.NewScanner(strings.NewReader(manifest))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, streamInfTag) {
			pendingBandwidth = parseBandwidth(line[len(streamInfTag):])
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		if pendingBandwidth < 0 {
			continue
		}

		variantURL := urlutil.ResolveURL(line, manifestURL)
		if query != "" && !strings.Contains(variantURL, "?") {
			variantURL += "?" + query
		}
		variants[pendingBandwidth/1000] = variantURL + suffix
		pendingBandwidth = -1
	}

	if len(variants) == 0 {
		c.log.Error("variant streams: no variants found in manifest")
		return nil
	}

	return variants
}

// parseBandwidth extracts the BANDWIDTH attribute from a stream-inf
// attribute list. Negative when absent or malformed.
func parseBandwidth(attrs string) int {
	for _, attr := range strings.Split(attrs, ",") {
		kv := strings.SplitN(strings.TrimSpace(attr), "=", 2)
		if len(kv) != 2 || kv[0] != "BANDWIDTH" {
			continue
		}
		bw, err := strconv.Atoi(kv[1])
		if err != nil {
			return -1
		}
		return bw
	}
	return -1
}
