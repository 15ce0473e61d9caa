package photoshoot

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	_ "golang.org/x/image/webp"

	"jewelshot/internal/domain"
)

// Upload is a reference file waiting to be read. Open is called once, from
// its own goroutine.
type Upload struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// FileUpload describes a file on disk.
func FileUpload(path string) Upload {
	up := Upload{
		Name: filepath.Base(path),
		Size: -1,
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
	if info, err := os.Stat(path); err == nil {
		up.Size = info.Size()
	}
	return up
}

// BytesUpload wraps an in-memory payload.
func BytesUpload(name string, data []byte) Upload {
	return Upload{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// Decode reads the upload and sniffs format and dimensions.
func Decode(up Upload) (domain.ReferenceImage, error) {
	if up.Size > domain.MaxAssetBytes {
		return domain.ReferenceImage{}, fmt.Errorf("%w: %s is %d bytes", domain.ErrAssetTooLarge, up.Name, up.Size)
	}
	if up.Open == nil {
		return domain.ReferenceImage{}, fmt.Errorf("%w: %s has no content", domain.ErrUnsupportedAsset, up.Name)
	}
	rc, err := up.Open()
	if err != nil {
		return domain.ReferenceImage{}, fmt.Errorf("open %s: %w", up.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, domain.MaxAssetBytes+1))
	if err != nil {
		return domain.ReferenceImage{}, fmt.Errorf("read %s: %w", up.Name, err)
	}
	if len(data) > domain.MaxAssetBytes {
		return domain.ReferenceImage{}, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrAssetTooLarge, up.Name, domain.MaxAssetBytes)
	}
	if len(data) == 0 {
		return domain.ReferenceImage{}, fmt.Errorf("%w: %s is empty", domain.ErrUnsupportedAsset, up.Name)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return domain.ReferenceImage{}, fmt.Errorf("%w: %s: %v", domain.ErrUnsupportedAsset, up.Name, err)
	}
	return domain.ReferenceImage{
		Name:     up.Name,
		MIMEType: "image/" + format,
		Data:     data,
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}
