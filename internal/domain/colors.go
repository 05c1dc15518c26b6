package domain

import "fmt"

// Color is one of the five Magic colors, in its single-letter form.
type Color string

const (
	ColorWhite Color = "W"
	ColorBlue  Color = "U"
	ColorBlack Color = "B"
	ColorRed   Color = "R"
	ColorGreen Color = "G"
)

// IsValid checks if the color is one of the five known colors.
func (c Color) IsValid() bool {
	switch c {
	case ColorWhite, ColorBlue, ColorBlack, ColorRed, ColorGreen:
		return true
	}
	return false
}

// DisplayName returns the long form of the color.
func (c Color) DisplayName() string {
	switch c {
	case ColorWhite:
		return "White"
	case ColorBlue:
		return "Blue"
	case ColorBlack:
		return "Black"
	case ColorRed:
		return "Red"
	case ColorGreen:
		return "Green"
	}
	return string(c)
}

// ColorIdentity is a deck's primary color plus the full color set derived
// from its card list.
type ColorIdentity struct {
	Primary Color   `json:"primary"`
	Colors  []Color `json:"colors"`
}

// ColorProfile is the primary/secondary pair a recommendation runs against.
type ColorProfile struct {
	Primary   Color
	Secondary Color
}

// NewColorProfile derives the color pair from an identity. Removing the
// primary from the identity set must leave exactly one color; any other
// cardinality is rejected before any I/O happens.
func NewColorProfile(identity ColorIdentity) (ColorProfile, error) {
	if !identity.Primary.IsValid() {
		return ColorProfile{}, fmt.Errorf("%w: invalid primary color %q", ErrNotDualColor, identity.Primary)
	}

	var secondary []Color
	for _, c := range identity.Colors {
		if c != identity.Primary {
			secondary = append(secondary, c)
		}
	}

	if len(secondary) != 1 {
		return ColorProfile{}, fmt.Errorf("%w: found colors %v", ErrNotDualColor, identity.Colors)
	}

	return ColorProfile{Primary: identity.Primary, Secondary: secondary[0]}, nil
}
