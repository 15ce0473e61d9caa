package domain

import (
	"encoding/base64"
	"strings"
	"time"
)

const (
	// MinImages is the fewest reference angles accepted for a photoshoot.
	MinImages = 2
	// MaxImages caps the reference set.
	MaxImages = 6
	// MaxAssetBytes is the per-file ceiling for reference uploads.
	MaxAssetBytes = 10 << 20
)

// ReferenceImage is a decoded reference upload.
type ReferenceImage struct {
	Name     string
	MIMEType string
	Data     []byte
	Width    int
	Height   int
}

// Size returns the payload length in bytes.
func (r ReferenceImage) Size() int {
	return len(r.Data)
}

// ImagePayload is one generated raster returned by the synthesis capability.
type ImagePayload struct {
	VariantID string
	MIMEType  string
	Data      []byte
}

// DataURL renders the payload as a base64 data URL.
func (p ImagePayload) DataURL() string {
	mime := strings.TrimSpace(p.MIMEType)
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// PhotoshootRequest is the immutable, validated input of a generation run.
// It is only produced by the photoshoot builder.
type PhotoshootRequest struct {
	id        string
	placement Placement
	style     BackgroundStyle
	directive string
	images    []ReferenceImage
	createdAt time.Time
}

// NewPhotoshootRequest copies images so later changes by the caller do not
// leak into the request. Validation is the caller's job.
func NewPhotoshootRequest(id string, placement Placement, style BackgroundStyle, directive string, images []ReferenceImage, createdAt time.Time) *PhotoshootRequest {
	return &PhotoshootRequest{
		id:        id,
		placement: placement,
		style:     style,
		directive: directive,
		images:    cloneImages(images),
		createdAt: createdAt,
	}
}

func cloneImages(images []ReferenceImage) []ReferenceImage {
	out := make([]ReferenceImage, len(images))
	for i, img := range images {
		img.Data = append([]byte(nil), img.Data...)
		out[i] = img
	}
	return out
}

func (r *PhotoshootRequest) ID() string { return r.id }
func (r *PhotoshootRequest) Placement() Placement { return r.placement }
func (r *PhotoshootRequest) Style() BackgroundStyle { return r.style }
func (r *PhotoshootRequest) Directive() string { return r.directive }
func (r *PhotoshootRequest) CreatedAt() time.Time { return r.createdAt }
func (r *PhotoshootRequest) ImageCount() int { return len(r.images) }

// ReferenceImages returns a deep copy of the reference set; index 0 is the
// primary reference.
func (r *PhotoshootRequest) ReferenceImages() []ReferenceImage {
	return cloneImages(r.images)
}

// GenerationVariant is one of the fixed scene presets rendered per request.
type GenerationVariant struct {
	ID        string
	Label     string
	Scene     string
	Technical string
}

// Variants lists the presets in result order.
var Variants = []GenerationVariant{
	{
		ID:        "catalog-main",
		Label:     "Main Catalog Shot",
		Scene:     "A clean, centered product photograph on a pure white background.",
		Technical: "Exact 1:1 reproduction of the reference jewelry. Sharp focus, zero distortion.",
	},
	{
		ID:        "catalog-top",
		Label:     "Technical Top View",
		Scene:     "A technical top-down view of the jewelry, centered on a pure white background.",
		Technical: "Preserving every stone and metal link exactly. High clarity.",
	},
	{
		ID:        "catalog-macro",
		Label:     "Macro Detail View",
		Scene:     "A focused macro-detail shot of the most complex part of the jewelry design.",
		Technical: "Pure white background, emphasizing the exact material texture and stone facets as seen in reference.",
	},
}

// VariantLabel resolves a variant id to its label, falling back to the id.
func VariantLabel(id string) string {
	for _, v := range Variants {
		if v.ID == id {
			return v.Label
		}
	}
	return id
}
