package agent

import "fmt"

// ParamError reports a parameter value outside its enumerated set.
type ParamError struct {
	Field string
	Value string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Field, e.Value)
}

// Params are the fixed generation options. Each value comes from an
// enumerated set; there are no cross-field constraints.
type Params struct {
	Style   string `json:"style"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
}

// Styles, Sizes, and Qualities are the allowed parameter values, in the order
// the UI presents them. The first entry of each is the default.
var (
	Styles    = []string{"realistic", "artistic", "anime", "photographic", "watercolor", "cinematic"}
	Sizes     = []string{"1024x1024", "512x512", "768x768", "1792x1024", "1024x1792"}
	Qualities = []string{"standard", "hd"}
)

// DefaultParams returns the default style/size/quality selection.
func DefaultParams() Params {
	return Params{Style: Styles[0], Size: Sizes[0], Quality: Qualities[0]}
}

// Validate checks each field against its enumerated set. Empty fields are
// filled with the default rather than rejected.
func (p *Params) Validate() error {
	if p.Style == "" {
		p.Style = Styles[0]
	}
	if p.Size == "" {
		p.Size = Sizes[0]
	}
	if p.Quality == "" {
		p.Quality = Qualities[0]
	}

	if !contains(Styles, p.Style) {
		return &ParamError{Field: "style", Value: p.Style}
	}
	if !contains(Sizes, p.Size) {
		return &ParamError{Field: "size", Value: p.Size}
	}
	if !contains(Qualities, p.Quality) {
		return &ParamError{Field: "quality", Value: p.Quality}
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
