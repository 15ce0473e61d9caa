package imagegen

import (
	"strings"

	"jewelshot/internal/domain"
)

// SystemInstruction carries the fidelity constraints shared by every variant.
const SystemInstruction = `You are an AI product-visualization engine for the jewellery industry.
Your PRIMARY responsibility is to preserve the exact physical identity of the jewellery provided in the reference images.

ABSOLUTE RULES:
1. SINGLE SOURCE OF TRUTH: Reproduce the jewellery EXACTLY as shown in the reference images. Preserve design, proportions, dimensions, stone count and stone placement.
2. FIDELITY: Preserve metal color, polish, engravings, textures, prongs and links. Visual accuracy is more important than creativity.
3. MUST NOT: Do NOT redesign, enhance, beautify or stylize the jewellery. Do NOT add, remove, merge or modify stones or metal parts.
4. BACKGROUND: Default background is pure white (#FFFFFF). No props, stands, mannequins, humans, hands or skin.
5. LIGHTING: Neutral studio lighting only. Even illumination. Minimal shadow directly under the product. No reflections that distort geometry.
6. GOAL: A clean, professional, e-commerce catalog-ready jewellery photo. Ultra-sharp, photorealistic and distortion-free.`

// BuildPrompt assembles the final prompt for one variant of req.
func BuildPrompt(variant domain.GenerationVariant, req *domain.PhotoshootRequest) string {
	parts := []string{
		SystemInstruction,
		"SCENE: " + variant.Scene,
		"TECHNICAL: " + variant.Technical,
	}
	if focus := req.Placement().Focus(); focus != "" {
		parts = append(parts, focus)
	}
	if backdrop := req.Style().Backdrop(); backdrop != "" {
		parts = append(parts, backdrop)
	}
	if n := req.ImageCount(); n > 1 {
		parts = append(parts, "The first reference image is the primary angle; the others show the same item from different sides.")
	}
	if directive := strings.TrimSpace(req.Directive()); directive != "" {
		parts = append(parts, directive)
	}
	return strings.Join(parts, "\n")
}
