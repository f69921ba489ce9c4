package video

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// divaConfig names the two follow-up endpoints needed to resolve a
// playable stream. Both are mandatory; resolution cannot proceed with
// only one.
type divaConfig struct {
	ProcessingURL string
	VideoDataURL  string
}

// videoSource is one candidate delivery format for a video, prior to
// final URL resolution. Format is the lowercased name attribute and
// becomes the key of the resulting stream map.
type videoSource struct {
	Format    string
	SourceURI string
}

// parseDivaConfig extracts the processing and video-data URLs from the
// diva settings XML. The document nests <parameter name="..."
// value="..."/> elements at varying depths, so this walks every
// element rather than assuming a fixed shape.
func parseDivaConfig(data []byte) (divaConfig, error) {
	var cfg divaConfig

	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return divaConfig{}, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "parameter" {
			continue
		}

		var name, value string
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "name":
				name = attr.Value
			case "value":
				value = attr.Value
			}
		}

		switch name {
		case "processingUrlCallPath":
			cfg.ProcessingURL = value
		case "videoDataPath":
			cfg.VideoDataURL = value
		}
	}

	if cfg.ProcessingURL == "" || cfg.VideoDataURL == "" {
		return divaConfig{}, errors.New("diva config is missing required parameters")
	}

	return cfg, nil
}

// videoSourceElem mirrors one <videoSource> element.
type videoSourceElem struct {
	Name string `xml:"name,attr"`
	URI  string `xml:"uri"`
}

// parseVideoSources extracts all <videoSource> elements from the
// video-data XML. Elements missing the format name or the URI are
// skipped; only an unparseable document is an error.
func parseVideoSources(data []byte) ([]videoSource, error) {
	var sources []videoSource

	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "videoSource" {
			continue
		}

		var elem videoSourceElem
		if err := dec.DecodeElement(&elem, &start); err != nil {
			return nil, err
		}

		if elem.Name == "" || strings.TrimSpace(elem.URI) == "" {
			continue
		}

		sources = append(sources, videoSource{
			Format:    strings.ToLower(elem.Name),
			SourceURI: strings.TrimSpace(elem.URI),
		})
	}

	return sources, nil
}
