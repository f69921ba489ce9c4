// Package gamepass ties the library together: it fetches the remote
// configuration, owns the session state, and exposes the auth, stream
// resolution and schedule surfaces as one client.
package gamepass

import (
	"context"
	"fmt"

	"gamepass-go/pkg/auth"
	"gamepass-go/pkg/config"
	"gamepass-go/pkg/configapi"
	"gamepass-go/pkg/data"
	"gamepass-go/pkg/hls"
	"gamepass-go/pkg/httpclient"
	"gamepass-go/pkg/logging"
	"gamepass-go/pkg/session"
	"gamepass-go/pkg/video"
)

// Client is a logged-in (or loggable-in) handle to the service.
type Client struct {
	cfg       *config.Config
	log       *logging.Logger
	store     *session.Store
	endpoints *configapi.Endpoints

	httpClient *httpclient.Client
	auth       *auth.Engine
	video      *video.Resolver
	data       *data.Service
	hls        *hls.Client
}

// New builds a client: one HTTP client, one session store, and one
// fetch of the remote configuration everything else is driven by.
func New(ctx context.Context, cfg *config.Config, log *logging.Logger) (*Client, error) {
	if cfg == nil {
		cfg = config.Load()
	}
	if log == nil {
		log = logging.New(cfg.LogLevel, cfg.LogJSON, nil)
	}

	httpClient := httpclient.New(cfg, log)
	store := session.NewStore()

	endpoints, err := configapi.Fetch(ctx, httpClient, cfg.BaseURL, log.WithComponent("configapi"))
	if err != nil {
		return nil, fmt.Errorf("gamepass: %w", err)
	}

	authEngine := auth.NewEngine(httpClient, store, endpoints, cfg.GigyaAuthURL, log)

	return &Client{
		cfg:        cfg,
		log:        log,
		store:      store,
		endpoints:  endpoints,
		httpClient: httpClient,
		auth:       authEngine,
		video:      video.NewResolver(httpClient, store, authEngine, endpoints, cfg.UserAgent, log),
		data:       data.NewService(httpClient, endpoints, log),
		hls:        hls.New(httpClient, cfg.UserAgent, log),
	}, nil
}

// Login authenticates the user. A successful login does not imply a
// subscription; check Subscription for entitlement.
func (c *Client) Login(ctx context.Context, username, password string, force bool) bool {
	return c.auth.Login(ctx, username, password, force)
}

// Logout drops the session's tokens and cached subscription.
func (c *Client) Logout() {
	c.auth.Logout()
}

// RefreshTokens refreshes the access/refresh token pair.
func (c *Client) RefreshTokens(ctx context.Context) bool {
	return c.auth.RefreshTokens(ctx)
}

// Subscription returns the account's subscription tag, or "" when
// there is none. The first successful lookup is memoized for the
// client's lifetime.
func (c *Client) Subscription(ctx context.Context) string {
	if tag := c.store.Subscription(); tag != "" {
		return tag
	}

	tag := c.auth.Subscription(ctx)
	if tag != "" {
		c.store.SetSubscription(tag)
	}
	return tag
}

// GameStreams resolves the streams of a game or on-demand video.
// An empty map means unavailable, not an error.
func (c *Client) GameStreams(ctx context.Context, videoID string, live bool) video.StreamMap {
	return c.video.GameStreams(ctx, videoID, live)
}

// ChannelStreams resolves the streams of a linear channel.
func (c *Client) ChannelStreams(ctx context.Context, channel video.Channel) video.StreamMap {
	return c.video.ChannelStreams(ctx, channel)
}

// OnAir reports whether a channel is broadcasting; the second return
// is false when the service gave no usable answer.
func (c *Client) OnAir(ctx context.Context, channel video.Channel) (bool, bool) {
	return c.video.OnAir(ctx, channel)
}

// VariantStreams splits an HLS master manifest into fixed-bitrate
// variants.
func (c *Client) VariantStreams(ctx context.Context, manifestURL string) hls.Variants {
	return c.hls.VariantStreams(ctx, manifestURL)
}

// Data exposes the schedule/catalog service.
func (c *Client) Data() *data.Service {
	return c.data
}

// Endpoints exposes the resolved remote configuration.
func (c *Client) Endpoints() *configapi.Endpoints {
	return c.endpoints
}
