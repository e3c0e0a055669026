package raster

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/iudanet/mapboard/internal/validation"
)

// ParseHexColor parses #RGB or #RRGGBB into an opaque colour.
func ParseHexColor(s string) (color.NRGBA, error) {
	if err := validation.ValidateColor(s); err != nil {
		return color.NRGBA{}, err
	}

	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("failed to parse color %q: %w", s, err)
	}

	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// HexColor formats c as #RRGGBB, ignoring alpha.
func HexColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02X%02X%02X", n.R, n.G, n.B)
}
