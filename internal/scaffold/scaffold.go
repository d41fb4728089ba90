package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Kush-Singh-26/shutter/builder/config"
)

const defaultSiteYaml = `# Site Configuration
title: "My Photo Blog"
description: "Photos and notes"
author: "Author Name"
baseURL: ""
language: "en"

# Layout
contentDir: "src"
postsGlob: "posts/*.md"
includesDir: "src/_includes"
outputDir: "_site"

passthrough:
  src/assets: assets
  src/images: images

# Images
imageWidths: [320, 640, 960, 1280]
imageCacheDuration: "30d"

pageSize: 12
compress: false
`

const firstPost = `---
title: "Hello World"
date: "%s"
description: "The first post"
tags: ["welcome"]
draft: false
---

This is your first post. Drop a photo into ` + "`src/images/`" + ` and show it with:

` + "```text" + `
{{"{{"}} galleryImage "src/images/photo.jpg" "Describe the photo" 0 {{"}}"}}
` + "```" + `
`

// Run initializes a new shutter project in root.
func Run(root string, now time.Time) error {
	fmt.Println("🌱 Initializing new shutter project...")

	for _, dir := range []string{
		filepath.Join("src", "posts"),
		filepath.Join("src", "_includes"),
		filepath.Join("src", "images"),
		filepath.Join("src", "assets"),
	} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			return fmt.Errorf("failed to create directory '%s': %w", dir, err)
		}
		fmt.Printf("   📁 Created '%s/'\n", dir)
	}

	files := []struct {
		name string
		data string
	}{
		{config.DefaultConfigFile, defaultSiteYaml},
		{filepath.Join("src", "posts", "hello-world.md"), fmt.Sprintf(firstPost, now.Format(time.DateOnly))},
	}
	for _, f := range files {
		p := filepath.Join(root, f.name)
		if _, err := os.Stat(p); err == nil {
			fmt.Printf("   ⚠️ '%s' already exists, skipping.\n", f.name)
			continue
		}
		if err := os.WriteFile(p, []byte(f.data), 0644); err != nil {
			return fmt.Errorf("failed to create %s: %w", f.name, err)
		}
		fmt.Printf("   📄 Created '%s'\n", f.name)
	}

	fmt.Println("\n✅ Project initialized successfully!")
	fmt.Println("   👉 Run 'shutter serve' to preview it.")
	return nil
}
