// Package images resizes source images into responsive variants and renders
// the <picture> markup for the image and galleryImage shortcodes.
package images

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"path"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Kush-Singh-26/shutter/builder/cache"
	"github.com/Kush-Singh-26/shutter/builder/models"
)

// Defaults for the image shortcodes.
var (
	DefaultWidths         = []int{320, 640, 960, 1280}
	DefaultFormats        = []string{FormatAVIF, FormatWebP, FormatJPEG}
	DefaultGalleryFormats = []string{FormatWebP, FormatJPEG}
)

const (
	DefaultSizes        = "(min-width: 800px) 800px, 100vw"
	DefaultGallerySizes = "(min-width: 900px) 900px, 100vw"
	DefaultURLPath      = "/img/"
	DefaultMaxAge       = 30 * 24 * time.Hour
)

// Options configures a Processor.
type Options struct {
	Widths    []int
	URLPath   string // public prefix of variant URLs
	OutputDir string // directory in the destination fs
	MaxAge    time.Duration
	Quality   Quality
	Workers   int // concurrent encodes per image
}

// Stats counts processor work for the build summary.
type Stats struct {
	Generated   int64 // variants encoded
	CacheHits   int64
	CacheMisses int64
}

// Processor produces image variants. It is safe for concurrent use: a
// given source and option set is resized at most once per process.
type Processor struct {
	srcFs  afero.Fs
	destFs afero.Fs
	cache  *cache.Manager
	opts   Options
	logger *slog.Logger

	group singleflight.Group
	mu    sync.Mutex
	done  map[string]models.ImageMetadata

	generated atomic.Int64
	hits      atomic.Int64
	misses    atomic.Int64
}

// NewProcessor returns a Processor reading sources from srcFs and writing
// variants into destFs. cm may be nil, which disables the on-disk cache.
func NewProcessor(srcFs, destFs afero.Fs, cm *cache.Manager, opts Options, logger *slog.Logger) *Processor {
	if len(opts.Widths) == 0 {
		opts.Widths = DefaultWidths
	}
	if opts.URLPath == "" {
		opts.URLPath = DefaultURLPath
	}
	if !strings.HasSuffix(opts.URLPath, "/") {
		opts.URLPath += "/"
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Quality == (Quality{}) {
		opts.Quality = Quality{AVIF: 50, AVIFSpeed: 8, WebP: 80, JPEG: 80}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		srcFs:  srcFs,
		destFs: destFs,
		cache:  cm,
		opts:   opts,
		logger: logger,
		done:   make(map[string]models.ImageMetadata),
	}
}

// Stats returns counters accumulated since the processor was created.
func (p *Processor) Stats() Stats {
	return Stats{
		Generated:   p.generated.Load(),
		CacheHits:   p.hits.Load(),
		CacheMisses: p.misses.Load(),
	}
}

// Metadata returns the variants of src in each of formats, generating or
// restoring them as needed.
func (p *Processor) Metadata(src string, formats []string) (models.ImageMetadata, error) {
	data, err := afero.ReadFile(p.srcFs, src)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", src, err)
	}
	key := p.cacheKey(src, data, formats)

	p.mu.Lock()
	meta, ok := p.done[key]
	p.mu.Unlock()
	if ok {
		return meta, nil
	}

	v, err, _ := p.group.Do(key, func() (interface{}, error) {
		p.mu.Lock()
		meta, ok := p.done[key]
		p.mu.Unlock()
		if ok {
			return meta, nil
		}
		variants, err := p.variants(key, src, data, formats)
		if err != nil {
			return nil, err
		}
		meta = groupVariants(variants, formats)
		p.mu.Lock()
		p.done[key] = meta
		p.mu.Unlock()
		return meta, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(models.ImageMetadata), nil
}

// cacheKey identifies a source by its bytes plus every option that changes
// the output.
func (p *Processor) cacheKey(src string, data []byte, formats []string) string {
	var b strings.Builder
	b.WriteString(src)
	b.WriteByte('|')
	b.WriteString(cache.HashContent(data))
	b.WriteByte('|')
	for _, w := range p.opts.Widths {
		b.WriteString(strconv.Itoa(w))
		b.WriteByte(',')
	}
	b.WriteByte('|')
	b.WriteString(strings.Join(formats, ","))
	fmt.Fprintf(&b, "|%s|%+v", p.opts.URLPath, p.opts.Quality)
	return cache.HashString(b.String())
}

func (p *Processor) variants(key, src string, data []byte, formats []string) ([]models.ImageVariant, error) {
	if p.cache != nil {
		rec, err := p.cache.GetImage(key)
		switch {
		case err != nil || rec.Expired(time.Now(), p.opts.MaxAge):
		case !p.cache.HasVariants(rec):
			p.logger.Debug("Image cache entry lost its blobs, regenerating", "src", src)
		default:
			if err := p.restore(rec); err == nil {
				p.hits.Add(1)
				return rec.Variants, nil
			}
			p.logger.Warn("Image cache entry unreadable, regenerating", "src", src, "error", err)
		}
	}
	p.misses.Add(1)
	return p.generate(key, src, data, formats)
}

// restore copies cached variant blobs into the destination fs.
func (p *Processor) restore(rec *cache.ImageRecord) error {
	for _, v := range rec.Variants {
		blob, err := p.cache.ReadVariant(v.Hash)
		if err != nil {
			return err
		}
		if err := p.write(v.OutputPath, blob); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) generate(key, src string, data []byte, formats []string) ([]models.ImageVariant, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", src, err)
	}
	bounds := img.Bounds()
	widths := resizeWidths(p.opts.Widths, bounds.Dx())

	resized := make([]image.Image, len(widths))
	for i, w := range widths {
		if w == bounds.Dx() {
			resized[i] = img
			continue
		}
		resized[i] = imaging.Resize(img, w, 0, imaging.Lanczos)
	}

	id := key[:10]
	variants := make([]models.ImageVariant, 0, len(formats)*len(widths))
	for _, format := range formats {
		for i, w := range widths {
			filename := fmt.Sprintf("%s-%d.%s", id, w, format)
			variants = append(variants, models.ImageVariant{
				Format:     format,
				Width:      w,
				Height:     resized[i].Bounds().Dy(),
				URL:        p.opts.URLPath + filename,
				SourceType: sourceTypes[format],
				OutputPath: path.Join(p.opts.OutputDir, filename),
				Filename:   filename,
			})
		}
	}

	blobs := make([][]byte, len(variants))
	var g errgroup.Group
	g.SetLimit(p.opts.Workers)
	for i := range variants {
		v := &variants[i]
		img := resized[i%len(widths)]
		g.Go(func() error {
			blob, err := encode(img, v.Format, p.opts.Quality)
			if err != nil {
				return fmt.Errorf("image %s: %w", src, err)
			}
			blobs[i] = blob
			v.Size = len(blob)
			return p.write(v.OutputPath, blob)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	p.generated.Add(int64(len(variants)))
	p.logger.Debug("Generated image variants", "src", src, "variants", len(variants))

	if p.cache != nil {
		rec := &cache.ImageRecord{
			Key:        key,
			Source:     src,
			SourceHash: cache.HashContent(data),
			Width:      bounds.Dx(),
			Height:     bounds.Dy(),
			Variants:   variants,
		}
		if err := p.cache.PutImage(rec, blobs); err != nil {
			p.logger.Warn("Failed to cache image", "src", src, "error", err)
		}
	}
	return variants, nil
}

func (p *Processor) write(outputPath string, data []byte) error {
	if err := p.destFs.MkdirAll(path.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}
	if err := afero.WriteFile(p.destFs, outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return nil
}

// groupVariants arranges variants by format, each list ordered by width.
func groupVariants(variants []models.ImageVariant, formats []string) models.ImageMetadata {
	meta := make(models.ImageMetadata, len(formats))
	for _, v := range variants {
		meta[v.Format] = append(meta[v.Format], v)
	}
	return meta
}
