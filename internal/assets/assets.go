package assets

import (
	_ "embed"
)

// SampleHistory is the built-in demo dataset shown when sample mode is on.
// It is a JSON array in the same shape as the persisted history file.
//
//go:embed sample-history.json
var SampleHistory []byte
