package run

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Kush-Singh-26/shutter/builder/utils"
)

var (
	// ErrOutputConflict is returned when two pages map to the same file.
	ErrOutputConflict = errors.New("output conflict")
	// ErrUnsafeTag is returned for tags that cannot form one URL segment.
	ErrUnsafeTag = errors.New("tag cannot be used as a URL segment")
)

// tagSegmentSafe reports whether tag stays a single path segment once its
// URL is decoded. Dot segments are normalised away by browsers even when
// percent-encoded, and a decoded "/" splits the segment.
func tagSegmentSafe(tag string) bool {
	return tag != "" && tag != "." && tag != ".." && !strings.Contains(tag, "/")
}

// homeNeeded reports whether home.html fills in for a missing "/" page.
func (s *site) homeNeeded() bool {
	for _, it := range s.render {
		if it.URL == "/" {
			return false
		}
	}
	return s.rnd.HasLayout("home.html")
}

// checkOutputs maps every page of the build to its output file and fails
// on unsafe tags or on two pages sharing a file. It runs before anything
// is rendered.
func (b *Builder) checkOutputs(s *site) error {
	owners := make(map[string]string)
	claim := func(url, owner string) error {
		out := utils.URLToPath(b.cfg.OutputDir, url)
		if prev, ok := owners[out]; ok {
			return fmt.Errorf("%w: %s and %s both write %s", ErrOutputConflict, prev, owner, out)
		}
		owners[out] = owner
		return nil
	}

	for _, it := range s.render {
		if err := claim(it.URL, it.InputPath); err != nil {
			return err
		}
	}
	if s.homeNeeded() {
		if err := claim("/", "home.html"); err != nil {
			return err
		}
	}
	if err := claim("/tags/", "tag index"); err != nil {
		return err
	}
	for _, tp := range s.tagPages {
		if !tagSegmentSafe(tp.Tag) {
			return fmt.Errorf("%w: %q", ErrUnsafeTag, tp.Tag)
		}
		owner := fmt.Sprintf("tag %q page %d", tp.Tag, tp.PageNumber+1)
		if err := claim(TagPageURL(tp.Tag, tp.PageNumber), owner); err != nil {
			return err
		}
	}
	return nil
}
