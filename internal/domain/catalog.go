package domain

import (
	"fmt"
	"strings"
)

// Placement selects the display context the jewelry is framed for.
type Placement string

const (
	PlacementRing     Placement = "ring"
	PlacementNecklace Placement = "necklace"
	PlacementBracelet Placement = "bracelet"
	PlacementEarring  Placement = "earring"
	PlacementWatch    Placement = "watch"
	PlacementPendant  Placement = "pendant"

	// Legacy tags kept for older clients.
	PlacementHand   Placement = "hand"
	PlacementNeck   Placement = "neck"
	PlacementEar    Placement = "ear"
	PlacementStudio Placement = "studio"
)

// Placements lists every supported placement, current ones first.
var Placements = []Placement{
	PlacementRing,
	PlacementNecklace,
	PlacementBracelet,
	PlacementEarring,
	PlacementWatch,
	PlacementPendant,
	PlacementHand,
	PlacementNeck,
	PlacementEar,
	PlacementStudio,
}

// DefaultPlacement is preselected on the configuration screen.
const DefaultPlacement = PlacementRing

// ParsePlacement maps a loosely formatted tag onto the closed set.
func ParsePlacement(raw string) (Placement, error) {
	tag := Placement(strings.ToLower(strings.TrimSpace(raw)))
	if tag == "" {
		return DefaultPlacement, nil
	}
	for _, p := range Placements {
		if p == tag {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlacement, raw)
}

// Label returns the human readable name.
func (p Placement) Label() string {
	switch p {
	case PlacementRing:
		return "Ring"
	case PlacementNecklace:
		return "Necklace"
	case PlacementBracelet:
		return "Bracelet"
	case PlacementEarring:
		return "Earrings"
	case PlacementWatch:
		return "Timepiece"
	case PlacementPendant:
		return "Pendant"
	case PlacementHand:
		return "Hand"
	case PlacementNeck:
		return "Neck"
	case PlacementEar:
		return "Ear"
	case PlacementStudio:
		return "Studio"
	default:
		return string(p)
	}
}

// Focus is the composition hint appended to every prompt for the placement.
func (p Placement) Focus() string {
	switch p {
	case PlacementRing, PlacementHand:
		return "Ring presentation: literal symmetry of the band and setting, stone table facing the camera."
	case PlacementNecklace, PlacementNeck:
		return "Necklace presentation: full chain architecture laid out evenly, clasp and links unaltered."
	case PlacementBracelet:
		return "Bracelet presentation: true circular geometry, every link and clasp visible."
	case PlacementEarring, PlacementEar:
		return "Earring presentation: the pair shown together with matching orientation and refinement."
	case PlacementWatch:
		return "Timepiece presentation: dial, hands, indices and strap reproduced with precision."
	case PlacementPendant:
		return "Pendant presentation: the pendant is the focal point, bail and chain attachment unchanged."
	case PlacementStudio:
		return "Studio presentation: neutral catalog framing with the item centered."
	default:
		return ""
	}
}

// DefaultDirective is the editable instruction prefilled for the placement.
func (p Placement) DefaultDirective() string {
	const base = "Produce a hyper-realistic, high-fidelity e-commerce product photo. Ensure 1:1 physical matching with the reference jewelry. White background, neutral lighting, no props."
	switch p {
	case PlacementRing, PlacementHand:
		return base + " Keep the ring upright with the main stone facing forward."
	case PlacementNecklace, PlacementNeck:
		return base + " Lay the necklace flat so the full chain is visible."
	case PlacementBracelet:
		return base + " Show the bracelet closed in its natural round shape."
	case PlacementEarring, PlacementEar:
		return base + " Show both earrings side by side."
	case PlacementWatch:
		return base + " Set the hands at ten past ten with the dial facing the camera."
	case PlacementPendant:
		return base + " Center the pendant with its bail visible."
	case PlacementStudio:
		return base
	default:
		return base
	}
}

// BackgroundStyle selects the backdrop treatment.
type BackgroundStyle string

const (
	StyleWhite       BackgroundStyle = "white"
	StyleTransparent BackgroundStyle = "transparent"
	StyleGrey        BackgroundStyle = "grey"
	StyleSoft        BackgroundStyle = "soft"
	StyleLifestyle   BackgroundStyle = "lifestyle"
	StyleMarble      BackgroundStyle = "marble"
	StyleVelvet      BackgroundStyle = "velvet"
)

// Styles lists every supported background style.
var Styles = []BackgroundStyle{
	StyleWhite,
	StyleTransparent,
	StyleGrey,
	StyleSoft,
	StyleLifestyle,
	StyleMarble,
	StyleVelvet,
}

// DefaultStyle is preselected on the configuration screen.
const DefaultStyle = StyleWhite

// ParseStyle maps a loosely formatted tag onto the closed set.
func ParseStyle(raw string) (BackgroundStyle, error) {
	tag := BackgroundStyle(strings.ToLower(strings.TrimSpace(raw)))
	if tag == "" {
		return DefaultStyle, nil
	}
	if tag == "gray" {
		return StyleGrey, nil
	}
	for _, s := range Styles {
		if s == tag {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStyle, raw)
}

// Label returns the human readable name.
func (s BackgroundStyle) Label() string {
	switch s {
	case StyleWhite:
		return "E-Commerce (Neutral White)"
	case StyleTransparent:
		return "High-Res Alpha (Transparent)"
	case StyleGrey:
		return "Studio Grey (Architectural)"
	case StyleSoft:
		return "Soft Gradient"
	case StyleLifestyle:
		return "Lifestyle"
	case StyleMarble:
		return "Marble"
	case StyleVelvet:
		return "Velvet"
	default:
		return string(s)
	}
}

// Backdrop is the background phrase used in prompts.
func (s BackgroundStyle) Backdrop() string {
	switch s {
	case StyleWhite:
		return "Background: pure white (#FFFFFF), seamless."
	case StyleTransparent:
		return "Background: fully transparent alpha channel around a clean cut-out of the item."
	case StyleGrey:
		return "Background: flat neutral studio grey."
	case StyleSoft:
		return "Background: soft light gradient, no texture."
	case StyleLifestyle:
		return "Background: softly blurred upscale interior, no people or props in focus."
	case StyleMarble:
		return "Background: polished white marble surface."
	case StyleVelvet:
		return "Background: dark velvet display surface."
	default:
		return ""
	}
}
