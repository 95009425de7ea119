// Copyright 2018 Zanicar. All rights reserved.
// Utilizes a BSD-3 license. Refer to the included LICENSE file for details.

package imageio

import (
	"encoding/binary"
	"image"
	"io"

	"github.com/pkg/errors"
)

// TGA is written directly against the standard library: it is one of the
// three lossless output extensions this spec requires, but no example
// repo or common ecosystem package in the retrieval pack implements it
// (see DESIGN.md). This codec only handles the uncompressed 32-bit and
// 24-bit true-color variant (image type 2), which is all an encoder ever
// needs to produce and the only variant worth decoding back for round
// trip testing.

const tgaHeaderLen = 18

// tgaImageTypeTrueColor is the uncompressed true-color TGA image type.
const tgaImageTypeTrueColor = 2

// EncodeTGA writes img as an uncompressed 32-bit true-color TGA, storing
// rows top-to-bottom (image descriptor bit 5 set) so the pixel order
// matches img.Pix directly.
func EncodeTGA(w io.Writer, img *image.NRGBA) error {
	width, height := img.Rect.Dx(), img.Rect.Dy()
	if width > 0xFFFF || height > 0xFFFF {
		return errors.Errorf("tga: dimensions %dx%d exceed the 16-bit header fields", width, height)
	}

	header := make([]byte, tgaHeaderLen)
	header[2] = tgaImageTypeTrueColor
	binary.LittleEndian.PutUint16(header[12:14], uint16(width))
	binary.LittleEndian.PutUint16(header[14:16], uint16(height))
	header[16] = 32   // bits per pixel
	header[17] = 0x28 // 8 bits of alpha, origin top-left
	if _, err := w.Write(header); err != nil {
		return err
	}

	row := make([]byte, width*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := img.PixOffset(img.Rect.Min.X+x, img.Rect.Min.Y+y)
			r, g, b, a := img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3]
			row[x*4+0], row[x*4+1], row[x*4+2], row[x*4+3] = b, g, r, a
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// DecodeTGA reads an uncompressed 24- or 32-bit true-color TGA image with
// no color map and no RLE compression.
func DecodeTGA(r io.Reader) (image.Image, error) {
	header := make([]byte, tgaHeaderLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, errors.Wrap(err, "tga: read header")
	}

	idLength := int(header[0])
	colorMapType := header[1]
	imageType := header[2]
	width := int(binary.LittleEndian.Uint16(header[12:14]))
	height := int(binary.LittleEndian.Uint16(header[14:16]))
	bpp := int(header[16])
	descriptor := header[17]

	if colorMapType != 0 {
		return nil, errors.New("tga: color-mapped images are not supported")
	}
	if imageType != tgaImageTypeTrueColor {
		return nil, errors.Errorf("tga: unsupported image type %d (only uncompressed true-color is supported)", imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, errors.Errorf("tga: unsupported bit depth %d", bpp)
	}

	if idLength > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(idLength)); err != nil {
			return nil, errors.Wrap(err, "tga: skip image id")
		}
	}

	bytesPerPixel := bpp / 8
	data := make([]byte, width*height*bytesPerPixel)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, errors.Wrap(err, "tga: read pixel data")
	}

	topDown := descriptor&0x20 != 0
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		srcY := y
		if !topDown {
			srcY = height - 1 - y
		}
		rowStart := srcY * width * bytesPerPixel
		for x := 0; x < width; x++ {
			src := data[rowStart+x*bytesPerPixel:]
			b, g, r := src[0], src[1], src[2]
			a := byte(0xFF)
			if bytesPerPixel == 4 {
				a = src[3]
			}
			off := img.PixOffset(x, y)
			img.Pix[off+0], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3] = r, g, b, a
		}
	}
	return img, nil
}
