// Package extract recovers structured payloads from raw generative-model
// output. Model responses are not guaranteed to be fence-free or to contain
// nothing but the requested JSON/HTML, so these helpers scan for the shape
// they need instead of parsing the whole response.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrParse indicates model output could not be reduced to the expected shape.
// Callers may retry the originating stage; persistence is upsert-based so a
// retry is always safe.
var ErrParse = eris.New("extract: unparseable model output")

// stripFences removes a leading ``` fence (optionally tagged, e.g. ```json or
// ```html) and a trailing ``` fence, returning trimmed text.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Drop a fence tag like "json" or "html" on the opening line.
		if idx := strings.IndexByte(text, '\n'); idx >= 0 {
			first := strings.TrimSpace(text[:idx])
			if len(first) <= 8 && !strings.ContainsAny(first, "[]{}<") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	return strings.TrimSpace(text)
}

// JSONArray locates and parses the first JSON array in raw model output.
// Leading prose, markdown fences, and trailing commentary are tolerated; the
// text between the first '[' and the last ']' must be valid JSON.
func JSONArray(raw string) ([]json.RawMessage, error) {
	text := stripFences(raw)

	start := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if start < 0 || end <= start {
		return nil, eris.Wrapf(ErrParse, "no JSON array found in %d-char response", len(raw))
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text[start:end+1]), &items); err != nil {
		return nil, eris.Wrapf(ErrParse, "invalid JSON array: %v", err)
	}
	return items, nil
}

// JSONObject locates and parses the first JSON object in raw model output,
// returning the validated object bytes.
func JSONObject(raw string) ([]byte, error) {
	text := stripFences(raw)

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil, eris.Wrapf(ErrParse, "no JSON object found in %d-char response", len(raw))
	}

	obj := []byte(text[start : end+1])
	if !json.Valid(obj) {
		return nil, eris.Wrap(ErrParse, "invalid JSON object")
	}
	return obj, nil
}

// Document cleans an HTML document out of raw model output. It strips
// markdown fences and any prose preceding the doctype. Unlike the JSON
// extractors it never fails: any HTML-shaped string is still usable as a
// best-effort artifact, so on total failure the input is returned unmodified.
func Document(raw string) string {
	text := stripFences(raw)

	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html") {
		return text
	}
	if idx := strings.Index(lower, "<!doctype"); idx >= 0 {
		return text[idx:]
	}
	return text
}
