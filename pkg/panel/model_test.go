package panel_test

import (
	"testing"

	"github.com/epdlink/panel-command/pkg/panel"
)

func TestParseAdvertisedName(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		ok     bool
	}{
		{"EPD1-3C8A-92", 250, 122, true},
		{"EPD2-1F00-85", 296, 128, true},
		{"EPD3-77B2-64", 400, 300, true},
		{"EPD4-00D9-99", 800, 480, true},
		{"EPD9-0000-00", 0, 0, false}, // unknown size type
		{"EPD", 0, 0, false},          // prefix with nothing after it
		{"JBL Flip 5", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, test := range tests {
		model, ok := panel.ParseAdvertisedName(test.name)
		if ok != test.ok {
			t.Errorf("ParseAdvertisedName(%q): expected ok=%v, got %v", test.name, test.ok, ok)
			continue
		}
		if ok && (model.Width != test.width || model.Height != test.height) {
			t.Errorf("ParseAdvertisedName(%q): expected %dx%d, got %dx%d",
				test.name, test.width, test.height, model.Width, model.Height)
		}
	}
}
