package photoshoot

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"jewelshot/internal/domain"
)

const decodeConcurrency = 4

// Rejection names an upload that was dropped from a batch.
type Rejection struct {
	Name string
	Err  error
}

// AddResult reports what happened to one batch.
type AddResult struct {
	Accepted []domain.ReferenceImage
	Rejected []Rejection
}

// Draft is the reference set being assembled on the configuration screen.
type Draft struct {
	mu     sync.Mutex
	images []domain.ReferenceImage
}

// NewDraft returns an empty draft.
func NewDraft() *Draft {
	return &Draft{}
}

// Add decodes a batch concurrently and appends the usable files in
// submission order. A batch that would push the set past MaxImages is
// rejected as a whole and leaves the draft unchanged.
func (d *Draft) Add(ctx context.Context, uploads []Upload) (AddResult, error) {
	if len(uploads) == 0 {
		return AddResult{}, nil
	}
	if err := d.checkCapacity(len(uploads)); err != nil {
		return AddResult{}, err
	}

	decoded := make([]domain.ReferenceImage, len(uploads))
	errs := make([]error, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(decodeConcurrency)
	for i, up := range uploads {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			decoded[i], errs[i] = Decode(up)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return AddResult{}, err
	}

	var res AddResult
	for i, up := range uploads {
		if errs[i] != nil {
			res.Rejected = append(res.Rejected, Rejection{Name: up.Name, Err: errs[i]})
			continue
		}
		res.Accepted = append(res.Accepted, decoded[i])
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.images)+len(res.Accepted) > domain.MaxImages {
		return AddResult{}, fmt.Errorf("%w: at most %d reference assets permitted", domain.ErrTooManyImages, domain.MaxImages)
	}
	d.images = append(d.images, res.Accepted...)
	return res, nil
}

func (d *Draft) checkCapacity(incoming int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.images)+incoming > domain.MaxImages {
		return fmt.Errorf("%w: at most %d reference assets permitted", domain.ErrTooManyImages, domain.MaxImages)
	}
	return nil
}

// Remove drops the image at index.
func (d *Draft) Remove(index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index < 0 || index >= len(d.images) {
		return fmt.Errorf("reference %d: %w", index, domain.ErrNotFound)
	}
	d.images = append(d.images[:index:index], d.images[index+1:]...)
	return nil
}

// Images returns a copy of the current set.
func (d *Draft) Images() []domain.ReferenceImage {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.ReferenceImage, len(d.images))
	copy(out, d.images)
	return out
}

// Len returns the number of images in the draft.
func (d *Draft) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.images)
}

// Reset empties the draft.
func (d *Draft) Reset() {
	d.mu.Lock()
	d.images = nil
	d.mu.Unlock()
}

// Build validates the current set into a request.
func (d *Draft) Build(placement domain.Placement, style domain.BackgroundStyle, directive string) (*domain.PhotoshootRequest, error) {
	return Validate(d.Images(), placement, style, directive)
}
