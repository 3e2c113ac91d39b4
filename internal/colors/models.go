package colors

import (
	"regexp"
	"time"

	"github.com/i474232898/horizon-colors/internal/civiltime"
)

var hexPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Colors maps a region label (e.g. "west") to a #rrggbb color.
type Colors map[string]string

// Clone returns an independent copy.
func (c Colors) Clone() Colors {
	out := make(Colors, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// ValidHex reports whether s is a #rrggbb color.
func ValidHex(s string) bool {
	return hexPattern.MatchString(s)
}

// Region is one fixed crop of the video frame.
type Region struct {
	Label  string `yaml:"label" validate:"required"`
	X      int    `yaml:"x" validate:"gte=0"`
	Y      int    `yaml:"y" validate:"gte=0"`
	Width  int    `yaml:"width" validate:"gt=0"`
	Height int    `yaml:"height" validate:"gt=0"`
}

// Key addresses one snapshot: a civil date folder and an HH-MM time slot.
type Key struct {
	Date string
	Slot string
}

// String returns the key as date/slot.
func (k Key) String() string {
	return k.Date + "/" + k.Slot
}

// Clock returns the slot as HH:MM.
func (k Key) Clock() string {
	return civiltime.SlotLabel(k.Slot)
}

// Snapshot is one stored reading. Timestamp is derived from Key.
type Snapshot struct {
	Key       Key
	Colors    Colors
	Timestamp time.Time // always UTC
}

// DateSummary describes the contents of one date folder.
type DateSummary struct {
	Date      string `json:"date"`
	Count     int    `json:"count"`
	FirstTime string `json:"firstTime,omitempty"`
	LastTime  string `json:"lastTime,omitempty"`
}
