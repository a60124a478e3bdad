package model

import (
	"github.com/slidekit/go-slide-cache/internal/shared/bytes"
)

// Blob is a compressed (typically PNG encoded) rendering of one page.
// It is immutable after construction: the store hands the same Blob to every
// reader and nobody may mutate the payload. The render backend tags each
// blob with the page, resolution and crop mode it was produced for, so a
// store can reject results that no longer match its own configuration
// instead of guessing from pixel dimensions.
type Blob struct {
	page       int
	resolution float64
	crop       CropMode
	payload    []byte
}

func NewBlob(page int, resolution float64, crop CropMode, payload []byte) *Blob {
	return &Blob{page: page, resolution: resolution, crop: crop, payload: payload}
}

func (b *Blob) Page() int           { return b.page }
func (b *Blob) Resolution() float64 { return b.resolution }
func (b *Blob) Crop() CropMode      { return b.crop }

// Bytes returns the compressed image. The slice is shared, not copied;
// callers must treat it as read-only.
func (b *Blob) Bytes() []byte { return b.payload }

func (b *Blob) Size() int64 { return int64(len(b.payload)) }

func (b *Blob) IsEmpty() bool { return b == nil || len(b.payload) == 0 }

// IsSamePayload reports whether two blobs carry the same image bytes.
// Large payloads are compared by sampled hashing, see bytes.IsBytesAreEquals.
func (b *Blob) IsSamePayload(other *Blob) bool {
	if b == nil || other == nil {
		return b == other
	}
	return bytes.IsBytesAreEquals(b.payload, other.payload)
}

// Matches reports whether the blob was rendered for the given store
// configuration. A mismatch means the result is stale (resize or crop
// change raced with the render) and must be discarded.
func (b *Blob) Matches(resolution float64, crop CropMode) bool {
	return b.resolution == resolution && b.crop == crop
}
