package images

import (
	"fmt"
	"html"
	"html/template"
	"strconv"
	"strings"

	"github.com/Kush-Singh-26/shutter/builder/models"
)

// HTMLOptions are the attributes placed on the generated <img>.
type HTMLOptions struct {
	Alt      string
	Sizes    string
	Loading  string
	Decoding string
}

// GenerateHTML renders meta as a <picture> with one <source> per format and
// a fallback <img>. The fallback format is the last of formats present in
// meta. A single format renders a bare <img>.
func GenerateHTML(meta models.ImageMetadata, formats []string, opts HTMLOptions) string {
	var present []string
	for _, f := range formats {
		if len(meta[f]) > 0 {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return ""
	}

	fallback := present[len(present)-1]
	smallest, _ := meta.Smallest(fallback)
	largest, _ := meta.Largest(fallback)

	var b strings.Builder
	img := func() {
		b.WriteString(`<img alt="`)
		b.WriteString(html.EscapeString(opts.Alt))
		b.WriteString(`"`)
		if opts.Loading != "" {
			fmt.Fprintf(&b, ` loading="%s"`, opts.Loading)
		}
		if opts.Decoding != "" {
			fmt.Fprintf(&b, ` decoding="%s"`, opts.Decoding)
		}
		fmt.Fprintf(&b, ` src="%s" width="%d" height="%d"`, smallest.URL, largest.Width, largest.Height)
		if len(meta[fallback]) > 1 {
			fmt.Fprintf(&b, ` srcset="%s" sizes="%s"`, srcset(meta[fallback]), html.EscapeString(opts.Sizes))
		}
		b.WriteString(`>`)
	}

	if len(present) == 1 {
		img()
		return b.String()
	}

	b.WriteString("<picture>")
	for _, f := range present[:len(present)-1] {
		fmt.Fprintf(&b, `<source type="%s" srcset="%s" sizes="%s">`, sourceTypes[f], srcset(meta[f]), html.EscapeString(opts.Sizes))
	}
	img()
	b.WriteString("</picture>")
	return b.String()
}

func srcset(variants []models.ImageVariant) string {
	parts := make([]string, len(variants))
	for i, v := range variants {
		parts[i] = v.URL + " " + strconv.Itoa(v.Width) + "w"
	}
	return strings.Join(parts, ", ")
}

func pickSizes(sizes []string, def string) string {
	for _, s := range sizes {
		if s != "" {
			return s
		}
	}
	return def
}

// Image is the image shortcode: responsive avif/webp/jpeg markup for src.
func (p *Processor) Image(src, alt string, sizes ...string) (template.HTML, error) {
	if alt == "" {
		return "", &AltTextError{Src: src}
	}
	meta, err := p.Metadata(src, DefaultFormats)
	if err != nil {
		return "", err
	}
	return template.HTML(GenerateHTML(meta, DefaultFormats, HTMLOptions{
		Alt:      alt,
		Sizes:    pickSizes(sizes, DefaultSizes),
		Loading:  "lazy",
		Decoding: "async",
	})), nil
}

// GalleryImage is the galleryImage shortcode. The markup is wrapped in a
// lightbox thumbnail button carrying the largest jpeg URL, the alt text and
// index.
func (p *Processor) GalleryImage(src, alt string, index int, sizes ...string) (template.HTML, error) {
	if alt == "" {
		return "", &AltTextError{Src: src}
	}
	meta, err := p.Metadata(src, DefaultGalleryFormats)
	if err != nil {
		return "", err
	}
	largest, ok := meta.Largest(FormatJPEG)
	if !ok {
		return "", fmt.Errorf("image %s: no jpeg variant", src)
	}
	markup := GenerateHTML(meta, DefaultGalleryFormats, HTMLOptions{
		Alt:      alt,
		Sizes:    pickSizes(sizes, DefaultGallerySizes),
		Loading:  "lazy",
		Decoding: "async",
	})
	return template.HTML(fmt.Sprintf(`<button class="lb-thumb" type="button" data-lightbox-src="%s" data-lightbox-alt="%s" data-lightbox-index="%d">%s</button>`,
		largest.URL, strings.ReplaceAll(alt, `"`, "&quot;"), index, markup)), nil
}
