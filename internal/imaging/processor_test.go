// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/olegiv/ypng-go/internal/model"
)

// createTestImage creates a simple test image with the given dimensions.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, createTestImage(width, height)); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestProcessCreatesAllSizes(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	res, err := p.Process(bytes.NewReader(encodePNG(t, 2000, 1200)), "abc-123", "photo.png")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if res.Width != 2000 || res.Height != 1200 {
		t.Errorf("dimensions = %dx%d, want 2000x1200", res.Width, res.Height)
	}
	if res.MimeType != model.MimeTypePNG {
		t.Errorf("MimeType = %q, want %q", res.MimeType, model.MimeTypePNG)
	}
	if len(res.Sizes) != len(model.ImageSizes) {
		t.Fatalf("got %d sizes, want %d", len(res.Sizes), len(model.ImageSizes))
	}

	for name, cfg := range model.ImageSizes {
		size, ok := res.Sizes[name]
		if !ok {
			t.Errorf("size %s missing", name)
			continue
		}
		if size.Width != cfg.Width || size.Height != cfg.Height {
			t.Errorf("%s = %dx%d, want %dx%d", name, size.Width, size.Height, cfg.Width, cfg.Height)
		}

		f, err := os.Open(filepath.Join(dir, filepath.FromSlash(size.Filename)))
		if err != nil {
			t.Errorf("%s file: %v", name, err)
			continue
		}
		got, _, err := image.DecodeConfig(f)
		_ = f.Close()
		if err != nil {
			t.Errorf("%s decode: %v", name, err)
			continue
		}
		if got.Width != cfg.Width || got.Height != cfg.Height {
			t.Errorf("%s stored as %dx%d", name, got.Width, got.Height)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "originals", "abc-123", "photo.png")); err != nil {
		t.Errorf("original not stored: %v", err)
	}
}

func TestProcessSkipsSizesLargerThanSource(t *testing.T) {
	p := NewProcessor(t.TempDir())

	res, err := p.Process(bytes.NewReader(encodePNG(t, 640, 640)), "small", "small.png")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if _, ok := res.Sizes[model.SizeThumbnail]; !ok {
		t.Error("thumbnail should be generated")
	}
	if _, ok := res.Sizes[model.SizeSquare]; !ok {
		t.Error("square should be generated")
	}
	if _, ok := res.Sizes[model.SizeHero]; ok {
		t.Error("hero is larger than the source and should be skipped")
	}
	if _, ok := res.Sizes[model.SizeCard]; ok {
		t.Error("card is wider than the source and should be skipped")
	}
}

func TestProcessRejectsNonImages(t *testing.T) {
	p := NewProcessor(t.TempDir())
	if _, err := p.Process(strings.NewReader("plain text"), "x", "notes.png"); err == nil {
		t.Error("Process() accepted a non-image")
	}
}

func TestSaveFileAndDelete(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	n, err := p.SaveFile(strings.NewReader("%PDF-1.4"), "doc-1", "../../agenda.pdf")
	if err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	if n != 8 {
		t.Errorf("size = %d, want 8", n)
	}

	stored := filepath.Join(dir, "originals", "doc-1", "agenda.pdf")
	if _, err := os.Stat(stored); err != nil {
		t.Fatalf("file not stored inside uploads: %v", err)
	}

	if err := p.DeleteMediaFiles("doc-1"); err != nil {
		t.Fatalf("DeleteMediaFiles: %v", err)
	}
	if _, err := os.Stat(stored); !os.IsNotExist(err) {
		t.Errorf("file still present after delete: %v", err)
	}
}

func TestDeleteMediaFilesRejectsTraversal(t *testing.T) {
	p := NewProcessor(t.TempDir())
	if err := p.DeleteMediaFiles("../../etc"); err == nil {
		t.Error("DeleteMediaFiles() accepted a traversal uuid")
	}
}

func TestProcessorIsImage(t *testing.T) {
	p := NewProcessor("./uploads")

	tests := []struct {
		mimeType string
		want     bool
	}{
		{model.MimeTypeJPEG, true},
		{model.MimeTypePNG, true},
		{model.MimeTypeGIF, true},
		{model.MimeTypeWebP, true},
		{model.MimeTypePDF, false},
		{"application/octet-stream", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			if got := p.IsImage(tt.mimeType); got != tt.want {
				t.Errorf("IsImage(%q) = %v, want %v", tt.mimeType, got, tt.want)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg magic bytes", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "jpeg"},
		{"png magic bytes", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "png"},
		{"gif magic bytes", []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61}, "gif"},
		{"tiff rejected", []byte{0x49, 0x49, 0x2A, 0x00}, ""},
		{"unknown", []byte{0x00, 0x01, 0x02, 0x03}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFormat(tt.data); got != tt.want {
				t.Errorf("detectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOutputFilename(t *testing.T) {
	if got := outputFilename("a.webp", "webp"); got != "a.jpg" {
		t.Errorf("outputFilename(webp) = %q", got)
	}
	if got := outputFilename("a.png", "png"); got != "a.png" {
		t.Errorf("outputFilename(png) = %q", got)
	}
}

func TestURL(t *testing.T) {
	if got := URL("u1", "a.png", ""); got != "/uploads/originals/u1/a.png" {
		t.Errorf("URL(original) = %q", got)
	}
	if got := URL("u1", "a.png", model.SizeHero); got != "/uploads/hero/u1/a.png" {
		t.Errorf("URL(hero) = %q", got)
	}
}

func TestApplyOrientation(t *testing.T) {
	img := createTestImage(20, 10)
	tests := []struct {
		orientation int
		wantW       int
	}{
		{1, 20}, {2, 20}, {3, 20}, {4, 20},
		{5, 10}, {6, 10}, {7, 10}, {8, 10},
		{0, 20}, {9, 20},
	}

	for _, tt := range tests {
		result := applyOrientation(img, tt.orientation)
		if result.Bounds().Dx() != tt.wantW {
			t.Errorf("orientation %d width = %d, want %d", tt.orientation, result.Bounds().Dx(), tt.wantW)
		}
	}
}
