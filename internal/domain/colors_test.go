package domain

import (
	"errors"
	"testing"
)

func TestNewColorProfile_DualDeck(t *testing.T) {
	profile, err := NewColorProfile(ColorIdentity{
		Primary: ColorWhite,
		Colors:  []Color{ColorWhite, ColorBlue},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Primary != ColorWhite {
		t.Errorf("expected primary W, got %s", profile.Primary)
	}
	if profile.Secondary != ColorBlue {
		t.Errorf("expected secondary U, got %s", profile.Secondary)
	}
}

func TestNewColorProfile_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		identity ColorIdentity
	}{
		{
			name:     "mono color",
			identity: ColorIdentity{Primary: ColorRed, Colors: []Color{ColorRed}},
		},
		{
			name:     "three colors",
			identity: ColorIdentity{Primary: ColorWhite, Colors: []Color{ColorWhite, ColorBlue, ColorBlack}},
		},
		{
			name:     "empty identity",
			identity: ColorIdentity{Primary: ColorGreen},
		},
		{
			name:     "invalid primary",
			identity: ColorIdentity{Primary: Color("X"), Colors: []Color{ColorWhite, ColorBlue}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewColorProfile(tt.identity)
			if !errors.Is(err, ErrNotDualColor) {
				t.Errorf("expected ErrNotDualColor, got %v", err)
			}
		})
	}
}

func TestNewColorProfile_PrimaryNotInSet(t *testing.T) {
	// The primary does not have to appear in the color set; removing it is
	// a no-op and the single remaining color becomes the secondary.
	profile, err := NewColorProfile(ColorIdentity{
		Primary: ColorBlack,
		Colors:  []Color{ColorGreen},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Secondary != ColorGreen {
		t.Errorf("expected secondary G, got %s", profile.Secondary)
	}
}

func TestJobStatus_IsTerminal(t *testing.T) {
	terminal := []JobStatus{StatusSucceeded, StatusFailed, StatusCancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
	for _, s := range []JobStatus{StatusQueued, StatusRunning} {
		if s.IsTerminal() {
			t.Errorf("expected %s to be non-terminal", s)
		}
	}
}
