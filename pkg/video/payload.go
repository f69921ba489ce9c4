package video

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// processingPayload is the body posted to a processing URL to exchange
// a video source for its final content URL. Field names and the fixed
// values match what the official HTML5 player sends.
type processingPayload struct {
	AssetState  int    `json:"AssetState"`
	Other       string `json:"Other"`
	PlayerType  string `json:"PlayerType"`
	Type        int    `json:"Type"`
	User        string `json:"User"`
	VideoID     string `json:"VideoId"`
	VideoKind   string `json:"VideoKind"`
	VideoSource string `json:"VideoSource"`
}

// buildProcessingPayload builds the processing-URL request body. A
// fresh correlation id is generated on every call; it ties one
// specific resolution attempt together server-side and must not be
// reused.
func buildProcessingPayload(videoID, sourceURI, accessToken, userAgent, username string) ([]byte, error) {
	correlationID := uuid.NewString()
	other := fmt.Sprintf("%s|%s|web|%s|undefined|%s", correlationID, accessToken, userAgent, username)

	payload := processingPayload{
		AssetState:  3,
		Other:       other,
		PlayerType:  "HTML5",
		Type:        1,
		User:        "",
		VideoID:     videoID,
		VideoKind:   "",
		VideoSource: sourceURI,
	}

	return json.Marshal(payload)
}
