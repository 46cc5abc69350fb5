package main

import (
	"bytes"
	"log"

	text "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

var fontSource *text.GoTextFaceSource

func initFont() {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		log.Fatalf("failed to parse font: %v", err)
	}
	fontSource = src
}

func fontFace(size float64) text.Face {
	return &text.GoTextFace{Source: fontSource, Size: size}
}
