// Copyright 2018 Zanicar. All rights reserved.
// Utilizes a BSD-3 license. Refer to the included LICENSE file for details.

// Package imageio is the external collaborator spec.md scopes out of the
// BPCS core: it loads any lossless raster the registered codecs can decode
// into a 32-bit RGBA pixel buffer, and saves a stego image back out to one
// of the three lossless extensions the format requires (bmp, png, tga).
// The bpcs package never imports this package or the standard image
// package directly; it only knows stegano.Image.
package imageio

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg" // decode-only cover input, matching the teacher's png package
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/bmp"
	_ "golang.org/x/image/webp" // decode-only cover input

	stegano "github.com/zanicar/bpcs-stegano"
)

// SupportedOutputExtensions are the lossless raster formats this package
// can save a stego image to. Any other extension would risk destroying
// the embedded bit-planes under recompression.
var SupportedOutputExtensions = map[string]bool{
	"bmp": true,
	"png": true,
	"tga": true,
}

// ExtOf returns the lowercased extension (without the leading dot) of
// path.
func ExtOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Decode reads any registered lossless raster format from r and returns
// its pixels as a 32-bit RGBA stegano.Image. TGA is not included: the
// classic format carries no leading magic bytes for image.Decode to sniff
// (see LoadFile, which dispatches to DecodeTGA by extension instead).
func Decode(r io.Reader) (*stegano.Image, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "image decode")
	}
	log.Debug().Str("format", format).Msg("decoded cover image")
	return toSteganoImage(src), nil
}

// toSteganoImage converts a decoded image.Image into a stegano.Image,
// reusing its backing pixel buffer directly when it is already a tightly
// packed, origin-zeroed *image.NRGBA and copying via image/draw otherwise.
func toSteganoImage(src image.Image) *stegano.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if nrgba, ok := src.(*image.NRGBA); ok && nrgba.Stride == 4*width && bounds.Min == (image.Point{}) {
		return &stegano.Image{Width: width, Height: height, Pix: nrgba.Pix}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	return &stegano.Image{Width: width, Height: height, Pix: dst.Pix}
}

// LoadFile reads a cover image from disk, dispatching to DecodeTGA when
// the extension is "tga" (since TGA has no sniffable signature) and to the
// generic registered-codec Decode otherwise.
func LoadFile(path string) (*stegano.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open cover image")
	}
	defer f.Close()

	if ExtOf(path) == "tga" {
		src, err := DecodeTGA(f)
		if err != nil {
			return nil, errors.Wrap(err, "tga decode")
		}
		return toSteganoImage(src), nil
	}
	return Decode(f)
}

// SaveFile writes img to path in the lossless raster format its extension
// names (one of "bmp", "png", "tga").
func SaveFile(path string, img *stegano.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output image")
	}
	defer f.Close()
	return Encode(f, img, ExtOf(path))
}

// Encode writes img to w in the lossless raster format named by ext (one
// of "bmp", "png", "tga"). Any other extension is rejected: a lossy
// format would destroy the embedded bit-planes.
func Encode(w io.Writer, img *stegano.Image, ext string) error {
	ext = strings.ToLower(ext)
	if !SupportedOutputExtensions[ext] {
		return errors.Errorf("unsupported output extension %q (must be bmp, png or tga)", ext)
	}

	nrgba := &image.NRGBA{
		Pix:    img.Pix,
		Stride: 4 * img.Width,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}

	var err error
	switch ext {
	case "png":
		err = png.Encode(w, nrgba)
	case "bmp":
		err = bmp.Encode(w, nrgba)
	case "tga":
		err = EncodeTGA(w, nrgba)
	default:
		err = fmt.Errorf("unreachable: extension %q passed validation", ext)
	}
	if err != nil {
		return errors.Wrapf(err, "%s encode", ext)
	}
	return nil
}
