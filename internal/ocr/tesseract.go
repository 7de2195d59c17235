//go:build tesseract

package ocr

import (
	"context"
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Reader recognizes mileage with Tesseract. It is safe for sequential use
// from multiple goroutines.
type Reader struct {
	mu     sync.Mutex
	client *gosseract.Client
	opts   Options
}

// Available reports whether this build can run OCR.
func Available() bool { return true }

// NewReader creates a Tesseract client for opts.
func NewReader(opts Options) (*Reader, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(opts.language()); err != nil {
		client.Close()
		return nil, fmt.Errorf("set ocr language: %w", err)
	}
	if err := client.SetWhitelist(DigitWhitelist); err != nil {
		client.Close()
		return nil, fmt.Errorf("set ocr whitelist: %w", err)
	}
	// Odometer digits are not dictionary words.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")
	if err := client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		client.Close()
		return nil, fmt.Errorf("set ocr page mode: %w", err)
	}
	return &Reader{client: client, opts: opts}, nil
}

// ReadMileage returns the mileage candidates recognized in the image at path.
func (r *Reader) ReadMileage(ctx context.Context, path string) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.client.SetImage(path); err != nil {
		return nil, fmt.Errorf("load image %s: %w", path, err)
	}
	text, err := r.client.Text()
	if err != nil {
		return nil, fmt.Errorf("recognize %s: %w", path, err)
	}
	return ExtractCandidates(text, r.opts.digits()), nil
}

// Close releases the Tesseract client.
func (r *Reader) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
