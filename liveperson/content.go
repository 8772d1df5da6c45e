// Copyright 2026 The Convobench Authors
// SPDX-License-Identifier: Apache-2.0

package liveperson

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/url"
	"path"

	"github.com/convobench/convobench/harness"
)

// Rich-content element types.
const (
	elementText       = "text"
	elementButton     = "button"
	elementImage      = "image"
	elementVertical   = "vertical"
	elementHorizontal = "horizontal"
	elementCarousel   = "carousel"
)

// Structural tags attached to elements and content roots.
const (
	tagCard     = "card"
	tagGeneric  = "generic"
	tagTitle    = "title"
	tagSubtitle = "subtitle"
	tagButton   = "button"
)

// mimeUnknown is reported when a media URI's extension has no
// registered MIME type.
const mimeUnknown = "unknown"

// Element is one node of a rich-content tree: a text, button, or image
// leaf, or a container (vertical/horizontal/carousel) holding ordered
// children. The wire format also permits a bare JSON string where an
// element is expected; it decodes to a leaf whose Text and URL both
// carry the string, so text and image handling read it naturally.
type Element struct {
	Type     string          `json:"type,omitempty"`
	Tag      string          `json:"tag,omitempty"`
	Text     string          `json:"text,omitempty"`
	Title    string          `json:"title,omitempty"`
	URL      string          `json:"url,omitempty"`
	Tooltip  string          `json:"tooltip,omitempty"`
	Click    json.RawMessage `json:"click,omitempty"`
	Elements []Element       `json:"elements,omitempty"`
}

func (e *Element) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var bare string
		if err := json.Unmarshal(data, &bare); err != nil {
			return err
		}
		*e = Element{Text: bare, URL: bare}
		return nil
	}

	type plain Element
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*e = Element(decoded)
	return nil
}

// isContainer reports whether the element groups ordered children.
func (e *Element) isContainer() bool {
	switch e.Type {
	case elementVertical, elementHorizontal, elementCarousel:
		return true
	}
	return false
}

// imageURI returns the media location of an image element: its url
// field, or the element itself when it arrived as a bare string.
func (e *Element) imageURI() string {
	if e.URL != "" {
		return e.URL
	}
	return e.Text
}

// ButtonSource is a button-shaped wire value that arrives either as a
// bare string label or as a structured object. The two shapes map to
// harness buttons by separate rules, so the variant is kept explicit
// instead of probing fields.
type ButtonSource struct {
	// Plain distinguishes the bare-string variant from a structured
	// object with every field absent.
	Plain bool
	// Label holds the bare string when Plain is set.
	Label string

	Title string          `json:"title,omitempty"`
	Text  string          `json:"text,omitempty"`
	Field string          `json:"label,omitempty"`
	Click json.RawMessage `json:"click,omitempty"`
}

func (b *ButtonSource) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var label string
		if err := json.Unmarshal(data, &label); err != nil {
			return err
		}
		*b = ButtonSource{Plain: true, Label: label}
		return nil
	}

	type plain ButtonSource
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*b = ButtonSource(decoded)
	return nil
}

// toButton maps a button source to a harness button. A plain label
// becomes display text with no payload. A structured source takes its
// display text from title, text, or label — first present, in that
// order — and its payload from the click field.
func (b ButtonSource) toButton() harness.Button {
	if b.Plain {
		return harness.Button{Text: b.Label}
	}

	text := b.Title
	if text == "" {
		text = b.Text
	}
	if text == "" {
		text = b.Field
	}
	return harness.Button{Text: text, Payload: clickPayload(b.Click)}
}

// elementButtonValue maps a button element from a rich-content tree to
// a harness button: caption from title, text, or tooltip, payload from
// the click field.
func elementButtonValue(element Element) harness.Button {
	text := element.Title
	if text == "" {
		text = element.Text
	}
	if text == "" {
		text = element.Tooltip
	}
	return harness.Button{Text: text, Payload: clickPayload(element.Click)}
}

// clickPayload extracts a button payload from a click field. A click
// that is itself a JSON string gets one more parse attempt — some
// producers double-encode the action list — and falls back to the raw
// string when that fails. Any other shape is decoded as-is.
func clickPayload(click json.RawMessage) any {
	if len(click) == 0 {
		return nil
	}

	var text string
	if err := json.Unmarshal(click, &text); err == nil {
		var nested any
		if err := json.Unmarshal([]byte(text), &nested); err == nil {
			return nested
		}
		return text
	}

	var value any
	if err := json.Unmarshal(click, &value); err != nil {
		return string(click)
	}
	return value
}

// elementMedia maps an image element to a media entry. The MIME type
// comes from the URI's file extension; an extension with no registered
// type yields the "unknown" sentinel.
func elementMedia(element Element) harness.Media {
	uri := element.imageURI()
	return harness.Media{URI: uri, MimeType: mimeTypeFor(uri)}
}

// mimeTypeFor derives a MIME type from the extension of a media URI,
// ignoring any query string.
func mimeTypeFor(uri string) string {
	mediaPath := uri
	if parsed, err := url.Parse(uri); err == nil && parsed.Path != "" {
		mediaPath = parsed.Path
	}

	extension := path.Ext(mediaPath)
	if extension == "" {
		return mimeUnknown
	}
	if mimeType := mime.TypeByExtension(extension); mimeType != "" {
		return mimeType
	}
	return mimeUnknown
}

// publishTextAction is one entry of a structured button-payload action
// list.
type publishTextAction struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// resolvePayloadText turns an outbound button payload into the message
// string to publish. A payload parseable as an action list with a
// publishText entry resolves to that entry's text; anything else is
// sent as the raw payload value.
func resolvePayloadText(payload any) string {
	raw, isString := payload.(string)
	if !isString {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Sprint(payload)
		}
		raw = string(encoded)
	}

	var actions struct {
		Actions []publishTextAction `json:"actions"`
	}
	if err := json.Unmarshal([]byte(raw), &actions); err == nil {
		for _, action := range actions.Actions {
			if action.Type == "publishText" && action.Text != "" {
				return action.Text
			}
		}
	}
	return raw
}
