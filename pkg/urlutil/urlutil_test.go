package urlutil

import "testing"

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name    string
		urlStr  string
		baseURL string
		want    string
	}{
		{
			name:    "absolute url unchanged",
			urlStr:  "https://other.example.com/a.m3u8",
			baseURL: "https://cdn.example.com/live/master.m3u8",
			want:    "https://other.example.com/a.m3u8",
		},
		{
			name:    "relative path",
			urlStr:  "hd/5640.m3u8",
			baseURL: "https://cdn.example.com/live/master.m3u8",
			want:    "https://cdn.example.com/live/hd/5640.m3u8",
		},
		{
			name:    "base query is dropped",
			urlStr:  "hd/5640.m3u8",
			baseURL: "https://cdn.example.com/live/master.m3u8?auth=tok",
			want:    "https://cdn.example.com/live/hd/5640.m3u8",
		},
		{
			name:    "root-relative path",
			urlStr:  "/other/path.m3u8",
			baseURL: "https://cdn.example.com/live/master.m3u8",
			want:    "https://cdn.example.com/other/path.m3u8",
		},
		{
			name:    "parent traversal",
			urlStr:  "../audio/stream.m3u8",
			baseURL: "https://cdn.example.com/live/video/master.m3u8",
			want:    "https://cdn.example.com/live/audio/stream.m3u8",
		},
		{
			name:    "encoding preserved",
			urlStr:  "seg(1080p)/index.m3u8",
			baseURL: "https://cdn.example.com/live/master.m3u8",
			want:    "https://cdn.example.com/live/seg(1080p)/index.m3u8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveURL(tt.urlStr, tt.baseURL); got != tt.want {
				t.Errorf("ResolveURL(%q, %q) = %q, want %q", tt.urlStr, tt.baseURL, got, tt.want)
			}
		})
	}
}

func TestQuery(t *testing.T) {
	tests := []struct {
		urlStr string
		want   string
	}{
		{"https://cdn/a.m3u8?auth=tok&x=1", "auth=tok&x=1"},
		{"https://cdn/a.m3u8", ""},
		{"https://cdn/a.m3u8?", ""},
	}

	for _, tt := range tests {
		if got := Query(tt.urlStr); got != tt.want {
			t.Errorf("Query(%q) = %q, want %q", tt.urlStr, got, tt.want)
		}
	}
}

func TestHeaderSuffix(t *testing.T) {
	got := HeaderSuffix(map[string]string{
		"User-Agent": "agent/1.0",
		"Connection": "keep-alive",
	})
	// Keys sort alphabetically, values are query-escaped.
	if want := "|Connection=keep-alive&User-Agent=agent%2F1.0"; got != want {
		t.Errorf("HeaderSuffix() = %q, want %q", got, want)
	}

	if got := HeaderSuffix(nil); got != "" {
		t.Errorf("HeaderSuffix(nil) = %q, want empty", got)
	}
}

func TestHostSuffixMatch(t *testing.T) {
	tests := []struct {
		urlStr   string
		suffixes []string
		want     bool
	}{
		{"https://accounts.eu1.gigya.com/accounts.login", []string{"gigya.com"}, true},
		{"https://gigya.com/x", []string{"gigya.com"}, true},
		{"https://notgigya.com/x", []string{"gigya.com"}, false},
		{"https://www.nflgamepass.com/api", []string{"gigya.com"}, false},
		{"https://Accounts.EU1.Gigya.COM/x", []string{"gigya.com"}, true},
		{"https://example.com/x", nil, false},
	}

	for _, tt := range tests {
		if got := HostSuffixMatch(tt.urlStr, tt.suffixes); got != tt.want {
			t.Errorf("HostSuffixMatch(%q, %v) = %v, want %v", tt.urlStr, tt.suffixes, got, tt.want)
		}
	}
}
