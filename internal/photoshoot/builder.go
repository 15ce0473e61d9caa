// Package photoshoot validates reference uploads and generation parameters
// into immutable photoshoot requests.
package photoshoot

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"jewelshot/internal/domain"
)

var (
	now   = time.Now
	newID = uuid.NewString
)

// Validate checks the reference set and parameters and returns the request.
// It is the only way to obtain a *domain.PhotoshootRequest outside tests.
func Validate(images []domain.ReferenceImage, placement domain.Placement, style domain.BackgroundStyle, directive string) (*domain.PhotoshootRequest, error) {
	if len(images) < domain.MinImages {
		return nil, fmt.Errorf("%w: got %d, need at least %d", domain.ErrTooFewImages, len(images), domain.MinImages)
	}
	if len(images) > domain.MaxImages {
		return nil, fmt.Errorf("%w: got %d, at most %d allowed", domain.ErrTooManyImages, len(images), domain.MaxImages)
	}
	for i, img := range images {
		if img.Size() > domain.MaxAssetBytes {
			return nil, fmt.Errorf("%w: reference %d (%s) is %d bytes", domain.ErrAssetTooLarge, i, img.Name, img.Size())
		}
		if img.Size() == 0 {
			return nil, fmt.Errorf("%w: reference %d (%s) is empty", domain.ErrUnsupportedAsset, i, img.Name)
		}
	}
	p, err := domain.ParsePlacement(string(placement))
	if err != nil {
		return nil, err
	}
	s, err := domain.ParseStyle(string(style))
	if err != nil {
		return nil, err
	}
	directive = strings.TrimSpace(directive)
	if directive == "" {
		directive = p.DefaultDirective()
	}
	return domain.NewPhotoshootRequest(newID(), p, s, directive, images, now().UTC()), nil
}

// ValidateTags is Validate for callers holding raw placement and style tags.
func ValidateTags(images []domain.ReferenceImage, placement, style, directive string) (*domain.PhotoshootRequest, error) {
	p, err := domain.ParsePlacement(placement)
	if err != nil {
		return nil, err
	}
	s, err := domain.ParseStyle(style)
	if err != nil {
		return nil, err
	}
	return Validate(images, p, s, directive)
}
