package ui

import "github.com/mattn/go-runewidth"

const (
	fallbackSprite = "bird"
	flyingSprite   = "bird_flying"
)

var sprites = map[string][]string{
	"bird": {
		"    __    ",
		"  <(o )___",
		"   ( ._> /",
		"    '---' ",
	},
	"bird_happy": {
		"    __  * ",
		"  <(^ )___",
		"   ( ._> /",
		"    '---' ",
	},
	"bird_neutral": {
		"    __    ",
		"  <(o )___",
		"   ( ._> /",
		"    '---' ",
	},
	"bird_annoyed": {
		"    __  ..",
		"  <(- )___",
		"   ( ._> /",
		"    '---' ",
	},
	"bird_pissed": {
		"  ~~__~~ #",
		"  <(# )___",
		"   ( ._> /",
		"    '---' ",
	},
	flyingSprite: {
		"\\\\  __  //",
		"  <(^ )___",
		"   ( ._> /",
		"    '---' ",
	},
}

var spriteWidth, spriteHeight = spriteBounds()

// HasSprite reports whether name can be drawn.
func HasSprite(name string) bool {
	_, ok := sprites[name]
	return ok
}

func sprite(name string) []string {
	if lines, ok := sprites[name]; ok {
		return lines
	}
	return sprites[fallbackSprite]
}

func spriteBounds() (w, h int) {
	for _, lines := range sprites {
		h = max(h, len(lines))
		for _, l := range lines {
			w = max(w, runewidth.StringWidth(l))
		}
	}
	return w, h
}
