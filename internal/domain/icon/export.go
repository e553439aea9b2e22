package icon

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image/png"
	"io"
	"time"

	ico "github.com/sergeymakinen/go-ico"
)

// MaxFaviconSize is the largest edge an ICO entry can carry.
const MaxFaviconSize = 256

// ArchiveEntryName returns the file name used for a variant inside the archive.
func ArchiveEntryName(size int) string {
	return fmt.Sprintf("icon_%dx%d.png", size, size)
}

// WriteZip writes every variant as icon_NxN.png into a ZIP stream, in bundle order.
func (b *ResultBundle) WriteZip(w io.Writer) error {
	zw := zip.NewWriter(w)
	modified := time.Now()
	for _, v := range b.Variants {
		header := &zip.FileHeader{
			Name:     ArchiveEntryName(v.Size),
			Method:   zip.Store,
			Modified: modified,
		}
		entry, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("create zip entry %s: %w", header.Name, err)
		}
		if _, err := entry.Write(v.PNG); err != nil {
			return fmt.Errorf("write zip entry %s: %w", header.Name, err)
		}
	}
	return zw.Close()
}

// WriteICO encodes the variant of the given size as a Windows icon.
func (b *ResultBundle) WriteICO(w io.Writer, size int) error {
	if size <= 0 || size > MaxFaviconSize {
		return fmt.Errorf("favicon size must be between 1 and %d, got %d", MaxFaviconSize, size)
	}
	v, ok := b.Lookup(size)
	if !ok {
		return fmt.Errorf("no %dpx variant in bundle", size)
	}
	img, err := png.Decode(bytes.NewReader(v.PNG))
	if err != nil {
		return fmt.Errorf("decode %dpx variant: %w", size, err)
	}
	if err := ico.Encode(w, img); err != nil {
		return fmt.Errorf("encode ico: %w", err)
	}
	return nil
}
