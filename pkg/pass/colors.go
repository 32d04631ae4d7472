/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package pass

import (
	"fmt"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	rgbFormat = "rgb(%d, %d, %d)"

	// luminance above which dark text is easier to read.
	lightThreshold = 150
)

type rgb struct {
	r, g, b uint8
}

func (c rgb) String() string {
	return fmt.Sprintf(rgbFormat, c.r, c.g, c.b)
}

func (c rgb) luminance() float64 {
	return 0.299*float64(c.r) + 0.587*float64(c.g) + 0.114*float64(c.b)
}

// nolint: gochecknoglobals
var namedColors = map[string]rgb{
	"black":  {0, 0, 0},
	"white":  {255, 255, 255},
	"red":    {255, 0, 0},
	"green":  {0, 128, 0},
	"blue":   {0, 0, 255},
	"orange": {255, 165, 0},
	"yellow": {255, 255, 0},
	"purple": {128, 0, 128},
	"gray":   {128, 128, 128},
	"grey":   {128, 128, 128},
	"navy":   {0, 0, 128},
	"teal":   {0, 128, 128},
}

// theme is the set of colors written to the pass.
type theme struct {
	background string
	foreground string
	label      string
}

func themeFor(color, fallback string) theme {
	c, ok := parseColor(color)
	if !ok {
		c, ok = parseColor(fallback)
		if !ok {
			c = rgb{255, 255, 255}
		}
	}

	fg := rgb{255, 255, 255}
	if c.luminance() > lightThreshold {
		fg = rgb{0, 0, 0}
	}

	return theme{background: c.String(), foreground: fg.String(), label: fg.String()}
}

// parseColor accepts #RGB, #RRGGBB, rgb(r, g, b) and a few CSS color names.
func parseColor(s string) (rgb, bool) {
	s = strings.ToLower(strings.TrimSpace(s))

	switch {
	case s == "":
		return rgb{}, false
	case strings.HasPrefix(s, "#"):
		return parseHex(s)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseRGBFunc(s[len("rgb(") : len(s)-1])
	}

	c, ok := namedColors[s]

	return c, ok
}

func parseHex(h string) (rgb, bool) {
	c, err := colorful.Hex(h)
	if err != nil {
		return rgb{}, false
	}

	r, g, b := c.RGB255()

	return rgb{r: r, g: g, b: b}, true
}

func parseRGBFunc(args string) (rgb, bool) {
	parts := strings.Split(args, ",")
	if len(parts) != 3 { // nolint: gomnd
		return rgb{}, false
	}

	var out [3]uint8

	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return rgb{}, false
		}

		out[i] = uint8(v)
	}

	return rgb{r: out[0], g: out[1], b: out[2]}, true
}
