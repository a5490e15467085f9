// Package gofont exports the Go fonts, plus a Noto Sans Arabic face for
// script coverage outside Latin, as a font.Collection ready to hand to a
// font.CollectionRegistry.
//
// See https://blog.golang.org/go-fonts for a description of the Go fonts.
package gofont

import (
	"fmt"
	"sync"

	nsareg "eliasnaur.com/font/noto/sans/arabic/regular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"

	"github.com/forenoonwatch/richtext/font"
	"github.com/forenoonwatch/richtext/font/opentype"
)

var (
	once       sync.Once
	collection *font.Collection
)

// Collection lazily builds and returns the default Collection: the Go font
// family under the "Go" typeface, plus Noto Sans Arabic under "Go Arabic"
// so a registry built from it can resolve Arabic script runs too.
func Collection() *font.Collection {
	once.Do(func() {
		c := font.NewCollection()
		register(c, font.Font{}, goregular.TTF)
		register(c, font.Font{Style: font.Italic}, goitalic.TTF)
		register(c, font.Font{Weight: font.Bold}, gobold.TTF)
		register(c, font.Font{Style: font.Italic, Weight: font.Bold}, gobolditalic.TTF)
		register(c, font.Font{Weight: font.Medium}, gomedium.TTF)
		register(c, font.Font{Weight: font.Medium, Style: font.Italic}, gomediumitalic.TTF)
		register(c, font.Font{Variant: "Mono"}, gomono.TTF)
		register(c, font.Font{Variant: "Mono", Weight: font.Bold}, gomonobold.TTF)
		register(c, font.Font{Variant: "Mono", Weight: font.Bold, Style: font.Italic}, gomonobolditalic.TTF)
		register(c, font.Font{Variant: "Mono", Style: font.Italic}, gomonoitalic.TTF)
		register(c, font.Font{Variant: "Smallcaps"}, gosmallcaps.TTF)
		register(c, font.Font{Variant: "Smallcaps", Style: font.Italic}, gosmallcapsitalic.TTF)
		registerArabic(c, font.Font{}, nsareg.TTF)
		collection = c
	})
	return collection
}

func register(c *font.Collection, fnt font.Font, ttf []byte) {
	face, err := opentype.Parse(ttf)
	if err != nil {
		panic(fmt.Sprintf("failed to parse font: %v", err))
	}
	fnt.Typeface = "Go"
	c.Register(fnt, face)
}

func registerArabic(c *font.Collection, fnt font.Font, ttf []byte) {
	face, err := opentype.Parse(ttf)
	if err != nil {
		panic(fmt.Sprintf("failed to parse font: %v", err))
	}
	fnt.Typeface = "Go Arabic"
	c.Register(fnt, face)
}
