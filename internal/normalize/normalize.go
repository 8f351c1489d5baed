// Package normalize converts loosely-shaped agent responses into fixed-field
// result records with safe defaults. The remote agent returns payloads of
// unpredictable shape — plain strings, objects with a text or message field,
// nested data objects, or prose with a URL buried in it — and every extraction
// here is guarded so that downstream rendering never needs per-field nil checks.
package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ImageResult is the normalized record for an image generation response.
// Every field is always present; missing data yields an empty string.
type ImageResult struct {
	ImageURL           string `json:"image_url"`
	EnhancedPrompt     string `json:"enhanced_prompt"`
	OriginalPrompt     string `json:"original_prompt"`
	Style              string `json:"style"`
	GenerationMetadata string `json:"generation_metadata"`
}

// EnhancementResult is the normalized record for a prompt enhancement response.
type EnhancementResult struct {
	EnhancedPrompt     string `json:"enhanced_prompt"`
	StyleSuggestion    string `json:"style_suggestion"`
	SizeRecommendation string `json:"size_recommendation"`
	QualityNotes       string `json:"quality_notes"`
	OriginalPrompt     string `json:"original_prompt"`
}

// knownImageKeys are the recognized keys for key-value text parsing.
// Anything else in a key-value block is dropped.
var knownImageKeys = map[string]bool{
	"image_url":           true,
	"enhanced_prompt":     true,
	"original_prompt":     true,
	"style":               true,
	"generation_metadata": true,
}

var imageURLPattern = regexp.MustCompile(`(?i)https?://[^\s"'<>\\]+\.(?:png|jpg|jpeg|gif|webp)`)

// imageStrategy attempts one extraction shape. ok reports whether the
// strategy claimed the response; the first claiming strategy wins.
type imageStrategy func(raw any) (ImageResult, bool)

// imageStrategies is the fixed priority order for image extraction. Note the
// asymmetry between the first two: a text field is trusted as the primary
// response shape and returns whatever it parsed to, while a message field only
// wins when its parse produced an image URL.
var imageStrategies = []imageStrategy{
	fromTextField,
	fromMessageField,
	fromDataObject,
	fromTopLevelFields,
	fromRawString,
	fromURLSniffing,
}

// ExtractImageResult normalizes an arbitrarily-shaped agent response into an
// ImageResult by trying each extraction strategy in priority order. A nil,
// numeric, or otherwise unusable response yields an all-empty result.
func ExtractImageResult(raw any) ImageResult {
	for _, try := range imageStrategies {
		if res, ok := try(raw); ok {
			return res
		}
	}
	return ImageResult{}
}

func fromTextField(raw any) (ImageResult, bool) {
	m, ok := asObject(raw)
	if !ok {
		return ImageResult{}, false
	}
	text, ok := m["text"].(string)
	if !ok {
		return ImageResult{}, false
	}
	return resultFromRecord(ParseKeyValueText(text)), true
}

func fromMessageField(raw any) (ImageResult, bool) {
	m, ok := asObject(raw)
	if !ok {
		return ImageResult{}, false
	}
	msg, ok := m["message"].(string)
	if !ok {
		return ImageResult{}, false
	}
	res := resultFromRecord(ParseKeyValueText(msg))
	if res.ImageURL == "" {
		return ImageResult{}, false
	}
	return res, true
}

func fromDataObject(raw any) (ImageResult, bool) {
	m, ok := asObject(raw)
	if !ok {
		return ImageResult{}, false
	}
	data, present := m["data"]
	if !present {
		return ImageResult{}, false
	}
	inner, _ := asObject(data)
	return resultFromObject(inner), true
}

func fromTopLevelFields(raw any) (ImageResult, bool) {
	m, ok := asObject(raw)
	if !ok {
		return ImageResult{}, false
	}
	if _, present := m["image_url"]; !present {
		return ImageResult{}, false
	}
	return resultFromObject(m), true
}

func fromRawString(raw any) (ImageResult, bool) {
	s, ok := raw.(string)
	if !ok {
		return ImageResult{}, false
	}
	return resultFromRecord(ParseKeyValueText(s)), true
}

// fromURLSniffing is the last resort: serialize the whole response and look
// for the first HTTP(S) URL with a known image extension anywhere in it.
func fromURLSniffing(raw any) (ImageResult, bool) {
	url := FindImageURL(serialize(raw))
	if url == "" {
		return ImageResult{}, false
	}
	res := ImageResult{ImageURL: url}
	if m, ok := asObject(raw); ok {
		if ep := stringField(m, "enhanced_prompt"); ep != "" {
			res.EnhancedPrompt = ep
		} else if sum := stringField(m, "summary"); sum != "" {
			res.EnhancedPrompt = sum
		}
	}
	return res, true
}

// ExtractEnhancement normalizes a prompt-enhancement response. The summary
// comes from the top-level summary field; each data field prefers the nested
// data object, then the top level, then defaults to empty. Unlike image
// extraction there is no key-value text parsing path here.
func ExtractEnhancement(raw any) (EnhancementResult, string) {
	m, _ := asObject(raw)
	data, _ := asObject(m["data"])

	pick := func(key string) string {
		if v := stringField(data, key); v != "" {
			return v
		}
		return stringField(m, key)
	}

	res := EnhancementResult{
		EnhancedPrompt:     pick("enhanced_prompt"),
		StyleSuggestion:    pick("style_suggestion"),
		SizeRecommendation: pick("size_recommendation"),
		QualityNotes:       pick("quality_notes"),
		OriginalPrompt:     pick("original_prompt"),
	}
	return res, stringField(m, "summary")
}

// ParseKeyValueText parses newline-delimited "key: value" lines into a record.
// Keys are lowercased, trimmed, and internal whitespace runs are folded to a
// single underscore before matching against the known field names. Lines
// without a colon and unrecognized keys are ignored. Malformed input yields a
// partial record rather than an error.
func ParseKeyValueText(text string) map[string]string {
	record := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.Join(strings.Fields(strings.ToLower(key)), "_")
		if !knownImageKeys[key] {
			continue
		}
		record[key] = strings.TrimSpace(value)
	}
	return record
}

// FindImageURL returns the first HTTP(S) URL in text that ends in a known
// image extension (png, jpg, jpeg, gif, webp; case-insensitive), or "".
func FindImageURL(text string) string {
	return imageURLPattern.FindString(text)
}

// MergeFallback fills empty fields of res from a key-value record parsed out
// of a secondary response location. Only ImageURL, EnhancedPrompt, and Style
// are eligible, and a populated field is never overwritten.
func MergeFallback(res ImageResult, record map[string]string) ImageResult {
	if res.ImageURL == "" {
		res.ImageURL = record["image_url"]
	}
	if res.EnhancedPrompt == "" {
		res.EnhancedPrompt = record["enhanced_prompt"]
	}
	if res.Style == "" {
		res.Style = record["style"]
	}
	return res
}

func resultFromRecord(record map[string]string) ImageResult {
	return ImageResult{
		ImageURL:           record["image_url"],
		EnhancedPrompt:     record["enhanced_prompt"],
		OriginalPrompt:     record["original_prompt"],
		Style:              record["style"],
		GenerationMetadata: record["generation_metadata"],
	}
}

func resultFromObject(m map[string]any) ImageResult {
	return ImageResult{
		ImageURL:           stringField(m, "image_url"),
		EnhancedPrompt:     stringField(m, "enhanced_prompt"),
		OriginalPrompt:     stringField(m, "original_prompt"),
		Style:              stringField(m, "style"),
		GenerationMetadata: stringField(m, "generation_metadata"),
	}
}

func asObject(raw any) (map[string]any, bool) {
	m, ok := raw.(map[string]any)
	return m, ok
}

// stringField reads m[key] as a string; non-string values stringify except
// nil, which stays empty.
func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// serialize renders raw as text for URL sniffing. JSON is preferred so that
// nested values are visible; anything unmarshalable falls back to fmt.
func serialize(raw any) string {
	if raw == nil {
		return ""
	}
	if s, ok := raw.(string); ok {
		return s
	}
	if b, err := json.Marshal(raw); err == nil {
		return string(b)
	}
	return fmt.Sprint(raw)
}
