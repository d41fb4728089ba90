// Package lightbox models the client-side gallery viewer. Controller is the
// reference state machine; the embedded script implements the same machine
// in the browser against the dialog markup from Dialog.
package lightbox

// Thumb is one gallery thumbnail, as carried by its data-lightbox-*
// attributes.
type Thumb struct {
	Src   string
	Alt   string
	Index int
}

// Slide is what the open dialog displays.
type Slide struct {
	Src     string
	Alt     string
	Caption string
}

// Target identifies where a click inside the dialog landed.
type Target int

const (
	TargetBackdrop Target = iota
	TargetContent
	TargetClose
	TargetPrev
	TargetNext
)

// Controller is closed or open on a current index over a fixed thumbnail
// sequence. A nil *Controller is valid: every method is a no-op, matching
// a page without a dialog or without thumbnails.
type Controller struct {
	thumbs  []Thumb
	current int
	open    bool
	slide   Slide
}

// New returns a controller over thumbs, or nil when there are none.
func New(thumbs []Thumb) *Controller {
	if len(thumbs) == 0 {
		return nil
	}
	return &Controller{thumbs: append([]Thumb(nil), thumbs...)}
}

// Wrap maps any integer onto [0, n).
func Wrap(i, n int) int {
	return ((i % n) + n) % n
}

// Show displays thumbnail i, wrapped into range. The open state is unchanged.
func (c *Controller) Show(i int) {
	if c == nil {
		return
	}
	c.current = Wrap(i, len(c.thumbs))
	t := c.thumbs[c.current]
	c.slide = Slide{Src: t.Src, Alt: t.Alt, Caption: t.Alt}
}

// OpenAt shows thumbnail i and opens the dialog.
func (c *Controller) OpenAt(i int) {
	if c == nil {
		return
	}
	c.Show(i)
	c.open = true
}

// Close hides the dialog. The current index is kept.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.open = false
}

func (c *Controller) Next() {
	if c == nil {
		return
	}
	c.Show(c.current + 1)
}

func (c *Controller) Prev() {
	if c == nil {
		return
	}
	c.Show(c.current - 1)
}

// Current returns the current index, or -1 on a nil controller.
func (c *Controller) Current() int {
	if c == nil {
		return -1
	}
	return c.current
}

func (c *Controller) IsOpen() bool {
	return c != nil && c.open
}

// Slide returns what the dialog currently displays.
func (c *Controller) Slide() Slide {
	if c == nil {
		return Slide{}
	}
	return c.slide
}

// Len returns the number of thumbnails.
func (c *Controller) Len() int {
	if c == nil {
		return 0
	}
	return len(c.thumbs)
}

// HandleKey processes a window keydown. Keys are ignored while closed.
// It reports whether the key changed anything.
func (c *Controller) HandleKey(key string) bool {
	if !c.IsOpen() {
		return false
	}
	switch key {
	case "Escape":
		c.Close()
	case "ArrowLeft":
		c.Prev()
	case "ArrowRight":
		c.Next()
	default:
		return false
	}
	return true
}

// ActivateThumb is a pointer activation of the thumbnail at position i.
func (c *Controller) ActivateThumb(i int) {
	c.OpenAt(i)
}

// ActivateThumbKey is a keydown on the thumbnail at position i. Enter and
// Space open it; the return value says whether the default action should be
// suppressed.
func (c *Controller) ActivateThumbKey(i int, key string) bool {
	if c == nil || (key != "Enter" && key != " ") {
		return false
	}
	c.OpenAt(i)
	return true
}

// Click handles a click that reached the dialog.
func (c *Controller) Click(target Target) {
	switch target {
	case TargetBackdrop, TargetClose:
		c.Close()
	case TargetPrev:
		c.Prev()
	case TargetNext:
		c.Next()
	}
}
