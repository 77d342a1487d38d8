package main

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

var (
	navy     = color.RGBA{R: 0x14, G: 0x1e, B: 0x30, A: 0xff}
	coral    = color.RGBA{R: 0xde, G: 0x79, B: 0x7c, A: 0xff}
	charcoal = color.RGBA{R: 0x2f, G: 0x2f, B: 0x2f, A: 0xff}
	paper    = color.RGBA{R: 0xeb, G: 0xeb, B: 0xeb, A: 0xff}
)

var darkPalette = map[fyne.ThemeColorName]color.Color{
	theme.ColorNameBackground:        charcoal,
	theme.ColorNameMenuBackground:    charcoal,
	theme.ColorNameOverlayBackground: charcoal,
	theme.ColorNameButton:            navy,
	theme.ColorNamePrimary:           coral,
	theme.ColorNamePressed:           color.RGBA{R: 0x0f, G: 0x16, B: 0x24, A: 0xff},
	theme.ColorNameSelection:         color.RGBA{R: 0x14, G: 0x1e, B: 0x30, A: 0x66},
	theme.ColorNameForeground:        paper,
	theme.ColorNameHover:             color.RGBA{R: 0x3f, G: 0x3f, B: 0x3f, A: 0xff},
	theme.ColorNameInputBackground:   color.RGBA{R: 0x1a, G: 0x1a, B: 0x1a, A: 0xff},
	theme.ColorNameInputBorder:       color.RGBA{R: 0x4a, G: 0x4a, B: 0x4a, A: 0xff},
	theme.ColorNameDisabledButton:    color.RGBA{R: 0x4a, G: 0x4a, B: 0x4a, A: 0xff},
	theme.ColorNamePlaceHolder:       color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff},
	// the output box is a disabled entry, keep it readable
	theme.ColorNameDisabled: color.RGBA{R: 0xc8, G: 0xc8, B: 0xc8, A: 0xff},
}

var lightPalette = map[fyne.ThemeColorName]color.Color{
	theme.ColorNameBackground:        paper,
	theme.ColorNameMenuBackground:    paper,
	theme.ColorNameOverlayBackground: paper,
	theme.ColorNameButton:            coral,
	theme.ColorNamePrimary:           navy,
	theme.ColorNamePressed:           color.RGBA{R: 0xc8, G: 0x60, B: 0x63, A: 0xff},
	theme.ColorNameSelection:         color.RGBA{R: 0xde, G: 0x79, B: 0x7c, A: 0x66},
	theme.ColorNameForeground:        color.RGBA{R: 0x1d, G: 0x1d, B: 0x1f, A: 0xff},
	theme.ColorNameHover:             color.RGBA{R: 0xd5, G: 0xd5, B: 0xd5, A: 0xff},
	theme.ColorNameInputBackground:   color.White,
	theme.ColorNameInputBorder:       color.RGBA{R: 0xd1, G: 0xd1, B: 0xd6, A: 0xff},
	theme.ColorNameDisabledButton:    color.RGBA{R: 0xbb, G: 0xbb, B: 0xbb, A: 0xff},
	theme.ColorNamePlaceHolder:       color.RGBA{R: 0x8e, G: 0x8e, B: 0x93, A: 0xff},
	theme.ColorNameDisabled:          color.RGBA{R: 0x44, G: 0x44, B: 0x48, A: 0xff},
}

// shellTheme is the window theme: navy and coral accents over the default
// fyne theme.
type shellTheme struct{}

var _ fyne.Theme = shellTheme{}

func (shellTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	palette := lightPalette
	if variant == theme.VariantDark {
		palette = darkPalette
	}
	if c, ok := palette[name]; ok {
		return c
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (shellTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (shellTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (shellTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 8
	case theme.SizeNameInlineIcon:
		return 20
	case theme.SizeNameScrollBar:
		return 12
	default:
		return theme.DefaultTheme().Size(name)
	}
}
