package collections

import "github.com/Kush-Singh-26/shutter/builder/models"

// Adjacent finds the post at url in posts (newest first) and returns its
// neighbours. An unknown url or an empty list yields no links.
func Adjacent(url string, posts []*models.Item) models.AdjacentPosts {
	idx := -1
	for i, p := range posts {
		if p.URL == url {
			idx = i
			break
		}
	}
	if idx == -1 {
		return models.AdjacentPosts{}
	}

	var nav models.AdjacentPosts
	if idx > 0 {
		nav.Newer = posts[idx-1]
	}
	if idx < len(posts)-1 {
		nav.Older = posts[idx+1]
	}
	return nav
}
