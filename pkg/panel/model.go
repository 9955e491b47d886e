package panel

import (
	"fmt"
	"strings"
)

// Model identifies one panel variant and its physical resolution. The transfer payload size is
// fixed by the resolution, so sending with the wrong model yields an image-too-large rejection
// or a garbled refresh.
type Model struct {
	Name   string
	Width  int
	Height int
}

func (m Model) String() string {
	return fmt.Sprintf("%s (%dx%d)", m.Name, m.Width, m.Height)
}

// advertisedNamePrefix starts every panel's GAP local name. The character after the prefix
// selects the screen size; the remainder carries MAC, battery and firmware fields that this
// package treats as opaque.
const advertisedNamePrefix = "EPD"

var modelsBySizeType = map[byte]Model{
	'1': {Name: "2.13 inch", Width: 250, Height: 122},
	'2': {Name: "2.9 inch", Width: 296, Height: 128},
	'3': {Name: "4.2 inch", Width: 400, Height: 300},
	'4': {Name: "7.5 inch", Width: 800, Height: 480},
}

// DefaultModel is assumed when a panel's advertisement was not observed, such as when connecting
// directly by device id.
var DefaultModel = modelsBySizeType['1']

// ParseAdvertisedName identifies the panel model from a GAP local name. Returns false for names
// that do not belong to a panel or carry an unknown size type.
func ParseAdvertisedName(name string) (Model, bool) {
	if !strings.HasPrefix(name, advertisedNamePrefix) || len(name) <= len(advertisedNamePrefix) {
		return Model{}, false
	}
	model, ok := modelsBySizeType[name[len(advertisedNamePrefix)]]
	return model, ok
}
