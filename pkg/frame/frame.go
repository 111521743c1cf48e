// Package frame holds the platform frame table: the fixed output size each
// supported social network expects.
package frame

import (
	"fmt"
	"strings"

	"github.com/menta2k/socialfit/pkg/types"
)

// Frame is a named target output size in pixels
type Frame struct {
	Platform string `json:"platform"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Ratio returns width / height
func (f Frame) Ratio() float64 {
	return float64(f.Width) / float64(f.Height)
}

func (f Frame) String() string {
	return fmt.Sprintf("%s (%dx%d)", f.Platform, f.Width, f.Height)
}

// Default platform frames
var (
	Youtube   = Frame{"Youtube", 1280, 720}
	Instagram = Frame{"Instagram", 1080, 1080}
	Twitter   = Frame{"Twitter", 1200, 675}
	Facebook  = Frame{"Facebook", 1200, 630}
)

// Table is an immutable lookup of frames by platform name. The zero value is
// an empty table; build one with NewTable or Default.
type Table struct {
	frames []Frame
	index  map[string]int
}

// NewTable builds a table from the given frames, in order. Platform names
// must be unique (case-insensitively) and sizes positive.
func NewTable(frames ...Frame) (Table, error) {
	t := Table{
		frames: make([]Frame, 0, len(frames)),
		index:  make(map[string]int, len(frames)),
	}
	for _, f := range frames {
		if strings.TrimSpace(f.Platform) == "" {
			return Table{}, fmt.Errorf("frame with empty platform name")
		}
		if f.Width <= 0 || f.Height <= 0 {
			return Table{}, fmt.Errorf("frame %s has non-positive size %dx%d", f.Platform, f.Width, f.Height)
		}
		key := strings.ToLower(f.Platform)
		if _, dup := t.index[key]; dup {
			return Table{}, fmt.Errorf("duplicate platform %q", f.Platform)
		}
		t.index[key] = len(t.frames)
		t.frames = append(t.frames, f)
	}
	return t, nil
}

// Default returns the built-in table: Youtube, Instagram, Twitter, Facebook.
func Default() Table {
	t, err := NewTable(Youtube, Instagram, Twitter, Facebook)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup resolves a platform name, ignoring case. Unknown names fail with an
// InvalidPlatform error listing the valid choices.
func (t Table) Lookup(platform string) (Frame, error) {
	if i, ok := t.index[strings.ToLower(strings.TrimSpace(platform))]; ok {
		return t.frames[i], nil
	}
	return Frame{}, types.Errorf(types.InvalidPlatform, "lookup",
		"unknown platform %q, choose one of: %s", platform, strings.Join(t.Names(), ", "))
}

// Names returns the platform names in table order
func (t Table) Names() []string {
	names := make([]string, len(t.frames))
	for i, f := range t.frames {
		names[i] = f.Platform
	}
	return names
}

// Frames returns a copy of the table entries in order
func (t Table) Frames() []Frame {
	out := make([]Frame, len(t.frames))
	copy(out, t.frames)
	return out
}

// Len returns the number of platforms in the table
func (t Table) Len() int {
	return len(t.frames)
}
