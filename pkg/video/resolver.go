// Package video resolves opaque video identifiers into playable stream
// URLs via the service's DIVA protocol: fetch the per-feature diva
// config, fetch the video-source list it points at, then exchange each
// source for a content URL through the processing endpoint.
//
// Failures are per-stage and recoverable: a bad diva config empties
// the whole result, while a single bad source or processing response
// only drops that one format. An empty map means "unavailable", never
// an exceptional state.
package video

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"gamepass-go/pkg/configapi"
	"gamepass-go/pkg/interfaces"
	"gamepass-go/pkg/logging"
	"gamepass-go/pkg/session"
	"gamepass-go/pkg/urlutil"
)

// StreamMap maps a stream format name (hls, chromecast, ...) to its
// playable URL, including the player header suffix.
type StreamMap map[string]string

// Channel identifies a linear 24x7 channel.
type Channel string

// Supported linear channels.
const (
	ChannelNetwork Channel = "nfl_network"
	ChannelRedZone Channel = "redzone"
)

// videoIDPlaceholder is the token inside the video-data URL that gets
// replaced with the target video id.
const videoIDPlaceholder = "{V.ID}"

// Resolver turns video identifiers into stream maps.
type Resolver struct {
	client    interfaces.HTTPClient
	store     *session.Store
	refresher interfaces.TokenRefresher
	endpoints *configapi.Endpoints
	userAgent string
	log       *logging.Logger
}

// NewResolver creates a stream resolver. The refresher is invoked
// before every resolution; stale tokens are not entitled to the
// live-channel identity.
func NewResolver(client interfaces.HTTPClient, store *session.Store, refresher interfaces.TokenRefresher, endpoints *configapi.Endpoints, userAgent string, log *logging.Logger) *Resolver {
	return &Resolver{
		client:    client,
		store:     store,
		refresher: refresher,
		endpoints: endpoints,
		userAgent: userAgent,
		log:       log.WithComponent("video"),
	}
}

// GameStreams resolves the streams for a game or other on-demand
// video. live selects the live diva settings instead of the VOD ones.
func (r *Resolver) GameStreams(ctx context.Context, videoID string, live bool) StreamMap {
	settings := r.endpoints.Modules.Diva.HTML5.Settings
	divaConfigURL := settings.VodNoData
	if live {
		divaConfigURL = settings.LiveNoData
	}

	return r.resolveStreams(ctx, videoID, divaConfigURL)
}

// ChannelStreams resolves the streams for a linear channel. A channel
// that is not currently carrying content yields nil, which is not an
// error: there is simply nothing to watch.
func (r *Resolver) ChannelStreams(ctx context.Context, channel Channel) StreamMap {
	// The live video id is only disclosed to fresh tokens.
	r.refresher.RefreshTokens(ctx)

	videoID, ok := r.liveVideoID(ctx, channel)
	if !ok || videoID == "" {
		return nil
	}

	return r.resolveStreams(ctx, videoID, r.endpoints.Modules.Diva.HTML5.Settings.Live24x7)
}

// OnAir reports whether a channel is currently broadcasting. The
// second return is false when the answer is unknown (malformed
// response or unsupported channel); callers must not coerce unknown
// to "off air".
func (r *Resolver) OnAir(ctx context.Context, channel Channel) (bool, bool) {
	switch channel {
	case ChannelNetwork:
		// The network runs 24x7 and the service exposes no signal
		// for it.
		return true, true
	case ChannelRedZone:
		content, ok := r.liveContent(ctx, channel)
		if !ok {
			return false, false
		}
		return len(content) > 0, true
	default:
		return false, false
	}
}

// contentItem is one entry of a live-now content list.
type contentItem struct {
	VideoID string `json:"videoId"`
}

// liveNowResponse is the slice of the route data-provider payload the
// resolver needs. A nil Content distinguishes "module or list absent"
// from an explicitly empty list.
type liveNowResponse struct {
	Modules struct {
		NetworkLiveVideo struct {
			Content []contentItem `json:"content"`
		} `json:"networkLiveVideo"`
		RedZoneLive struct {
			Content []contentItem `json:"content"`
		} `json:"redZoneLive"`
	} `json:"modules"`
}

// liveContent fetches the channel's live-now content list. ok is false
// when the endpoint could not be fetched or parsed, or the module is
// missing entirely.
func (r *Resolver) liveContent(ctx context.Context, channel Channel) ([]contentItem, bool) {
	var endpoint string
	switch channel {
	case ChannelNetwork:
		endpoint = r.endpoints.Modules.Routes.Network
	case ChannelRedZone:
		endpoint = r.endpoints.Modules.Routes.RedZone
	default:
		return nil, false
	}

	body, err := r.get(ctx, endpoint)
	if err != nil {
		r.log.WithError(err).Error("live lookup: request failed", "channel", string(channel))
		return nil, false
	}

	var liveNow liveNowResponse
	if err := json.Unmarshal(body, &liveNow); err != nil {
		r.log.Error("live lookup: server response is invalid", "channel", string(channel))
		return nil, false
	}

	var content []contentItem
	switch channel {
	case ChannelNetwork:
		content = liveNow.Modules.NetworkLiveVideo.Content
	case ChannelRedZone:
		content = liveNow.Modules.RedZoneLive.Content
	}

	if content == nil {
		r.log.Error("live lookup: could not parse the live content list", "channel", string(channel))
		return nil, false
	}

	return content, true
}

// liveVideoID returns the video id currently playing on the channel.
// An empty id with ok=true means the channel has no content right now.
func (r *Resolver) liveVideoID(ctx context.Context, channel Channel) (string, bool) {
	content, ok := r.liveContent(ctx, channel)
	if !ok {
		return "", false
	}
	if len(content) == 0 {
		r.log.Debug("channel has no live content", "channel", string(channel))
		return "", true
	}
	return content[0].VideoID, true
}

// resolveStreams runs the full resolution chain for one video id.
func (r *Resolver) resolveStreams(ctx context.Context, videoID, divaConfigURL string) StreamMap {
	r.refresher.RefreshTokens(ctx)

	cfg, ok := r.fetchDivaConfig(ctx, divaConfigURL)
	if !ok {
		return StreamMap{}
	}

	sources, ok := r.fetchVideoSources(ctx, cfg.VideoDataURL, videoID)
	if !ok {
		return StreamMap{}
	}

	suffix := urlutil.HeaderSuffix(map[string]string{
		"Connection": "keep-alive",
		"User-Agent": r.userAgent,
	})

	streams := StreamMap{}
	for _, source := range sources {
		contentURL, ok := r.resolveContentURL(ctx, cfg.ProcessingURL, videoID, source)
		if !ok {
			continue
		}
		streams[source.Format] = contentURL + suffix
	}

	return streams
}

// fetchDivaConfig downloads and parses the per-feature diva config.
// The config URL names a generic device; the HTML5 variant is the one
// this client speaks.
func (r *Resolver) fetchDivaConfig(ctx context.Context, divaConfigURL string) (divaConfig, bool) {
	url := strings.ReplaceAll(divaConfigURL, "device", "html5")

	body, err := r.get(ctx, url)
	if err != nil {
		r.log.WithError(err).Error("diva config: request failed")
		return divaConfig{}, false
	}

	cfg, err := parseDivaConfig(body)
	if err != nil {
		r.log.WithError(err).Error("diva config: unable to parse the diva XML")
		return divaConfig{}, false
	}

	return cfg, true
}

// fetchVideoSources downloads and parses the video-source list for the
// given video id.
func (r *Resolver) fetchVideoSources(ctx context.Context, videoDataURL, videoID string) ([]videoSource, bool) {
	url := strings.ReplaceAll(videoDataURL, videoIDPlaceholder, videoID)

	body, err := r.get(ctx, url)
	if err != nil {
		r.log.WithError(err).Error("video sources: request failed")
		return nil, false
	}

	sources, err := parseVideoSources(body)
	if err != nil {
		r.log.WithError(err).Error("video sources: server response is invalid")
		return nil, false
	}

	return sources, true
}

// processingResponse carries the final content URL for one source.
type processingResponse struct {
	ContentURL string `json:"ContentUrl"`
}

// resolveContentURL exchanges one video source for its content URL.
func (r *Resolver) resolveContentURL(ctx context.Context, processingURL, videoID string, source videoSource) (string, bool) {
	tokens, _ := r.store.Tokens()
	payload, err := buildProcessingPayload(videoID, source.SourceURI, tokens.AccessToken, r.userAgent, r.store.Username())
	if err != nil {
		r.log.WithError(err).Error("processing: could not build payload", "format", source.Format)
		return "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, processingURL, bytes.NewReader(payload))
	if err != nil {
		r.log.WithError(err).Error("processing: request could not be created", "format", source.Format)
		return "", false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.WithError(err).Error("processing: request failed", "format", source.Format)
		return "", false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		r.log.WithError(err).Error("processing: response could not be read", "format", source.Format)
		return "", false
	}

	var processing processingResponse
	if err := json.Unmarshal(body, &processing); err != nil {
		r.log.Error("processing: server response is invalid", "format", source.Format)
		return "", false
	}

	if processing.ContentURL == "" {
		r.log.Warn("processing: empty content url for video source", "format", source.Format)
		return "", false
	}

	return processing.ContentURL, true
}

// get fetches a URL and returns the body.
func (r *Resolver) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}
