package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

var fixedTime = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "too few", err: ErrTooFewImages, want: KindValidation},
		{name: "wrapped too large", err: fmt.Errorf("ring.png: %w", ErrAssetTooLarge), want: KindValidation},
		{name: "unknown placement", err: fmt.Errorf("%w: %q", ErrUnknownPlacement, "toe"), want: KindValidation},
		{name: "credential", err: ErrMissingCredential, want: KindConfiguration},
		{name: "session store", err: ErrSessionUnconfigured, want: KindConfiguration},
		{name: "network", err: fmt.Errorf("variant catalog-top: %w", ErrNetworkUnavailable), want: KindNetwork},
		{name: "no result", err: ErrNoUsableResult, want: KindNoUsableResult},
		{name: "auth", err: &AuthError{Status: 400, Message: "Invalid login credentials"}, want: KindAuthProvider},
		{name: "transition", err: ErrInvalidTransition, want: KindTransition},
		{name: "other", err: errors.New("boom"), want: KindInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Fatalf("KindOf(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}

func TestAuthErrorMessageVerbatim(t *testing.T) {
	err := &AuthError{Message: "Email not confirmed"}
	if err.Error() != "Email not confirmed" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if (&AuthError{}).Error() != "authentication failed" {
		t.Fatalf("empty message should fall back")
	}
}

func TestParsePlacementAndStyle(t *testing.T) {
	p, err := ParsePlacement(" Necklace ")
	if err != nil || p != PlacementNecklace {
		t.Fatalf("ParsePlacement() = %q, %v", p, err)
	}
	if p, err := ParsePlacement(""); err != nil || p != DefaultPlacement {
		t.Fatalf("empty placement should default, got %q, %v", p, err)
	}
	if _, err := ParsePlacement("ankle"); !errors.Is(err, ErrUnknownPlacement) {
		t.Fatalf("expected ErrUnknownPlacement, got %v", err)
	}
	s, err := ParseStyle("gray")
	if err != nil || s != StyleGrey {
		t.Fatalf("ParseStyle(gray) = %q, %v", s, err)
	}
	if _, err := ParseStyle("neon"); !errors.Is(err, ErrUnknownStyle) {
		t.Fatalf("expected ErrUnknownStyle, got %v", err)
	}
}

func TestEveryPlacementHasCopy(t *testing.T) {
	for _, p := range Placements {
		if p.Label() == string(p) {
			t.Fatalf("placement %q missing label", p)
		}
		if p.Focus() == "" {
			t.Fatalf("placement %q missing focus", p)
		}
		if p.DefaultDirective() == "" {
			t.Fatalf("placement %q missing directive", p)
		}
	}
	for _, s := range Styles {
		if s.Backdrop() == "" {
			t.Fatalf("style %q missing backdrop", s)
		}
	}
}

func TestPhotoshootRequestIsolatedFromCaller(t *testing.T) {
	images := []ReferenceImage{{Name: "a.png", Data: []byte{1, 2, 3}}, {Name: "b.png", Data: []byte{4}}}
	req := NewPhotoshootRequest("id-1", PlacementRing, StyleWhite, "keep it exact", images, fixedTime)
	images[0].Data[0] = 9
	images[1].Name = "changed"
	got := req.ReferenceImages()
	if got[0].Data[0] != 1 || got[1].Name != "b.png" {
		t.Fatalf("request mutated through caller slice: %+v", got)
	}
	got[0].Name = "mutated"
	got[0].Data[0] = 99
	got[1].Data = append(got[1].Data[:0], 7, 7)
	again := req.ReferenceImages()
	if again[0].Name != "a.png" {
		t.Fatalf("request mutated through returned slice")
	}
	if again[0].Data[0] != 1 || len(again[1].Data) != 1 || again[1].Data[0] != 4 {
		t.Fatalf("request bytes mutated through returned slice: %v %v", again[0].Data, again[1].Data)
	}
}

func TestImagePayloadDataURL(t *testing.T) {
	p := ImagePayload{Data: []byte("png")}
	if got := p.DataURL(); got != "data:image/png;base64,cG5n" {
		t.Fatalf("DataURL() = %q", got)
	}
}
