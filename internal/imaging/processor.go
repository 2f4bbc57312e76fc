// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging decodes uploaded images and writes the original together
// with its centre-cropped size variants under the uploads directory.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/olegiv/ypng-go/internal/model"
	"github.com/olegiv/ypng-go/internal/util"
)

// originalsDir holds the processed originals.
const originalsDir = "originals"

// Result describes a processed upload.
type Result struct {
	Width    int
	Height   int
	MimeType string
	Size     int64
	Filename string
	Sizes    map[string]model.MediaSize
}

// Processor handles image processing operations using pure Go libraries.
type Processor struct {
	uploadDir string
}

// NewProcessor creates a new image processor.
func NewProcessor(uploadDir string) *Processor {
	return &Processor{
		uploadDir: uploadDir,
	}
}

// Process decodes an uploaded image, applies its EXIF orientation, stores
// the original and generates every configured size. A size is skipped when
// the source is smaller than it in either dimension.
func (p *Processor) Process(reader io.Reader, uuid, filename string) (*Result, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	format := detectFormat(data)
	if format == "" {
		return nil, fmt.Errorf("unsupported image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	// Pure Go encoders drop EXIF, so the stored original carries none.
	processed, err := encodeImage(img, format, 95)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	name := outputFilename(filename, format)
	if _, err := p.saveFile(originalsDir, uuid, name, processed); err != nil {
		return nil, fmt.Errorf("failed to save original image: %w", err)
	}

	bounds := img.Bounds()
	result := &Result{
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		MimeType: formatToMimeType(format),
		Size:     int64(len(processed)),
		Filename: name,
		Sizes:    make(map[string]model.MediaSize),
	}

	var errs []string
	for sizeName, cfg := range model.ImageSizes {
		size, ok, err := p.createSize(img, uuid, name, format, sizeName, cfg)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", sizeName, err))
			continue
		}
		if ok {
			result.Sizes[sizeName] = size
		}
	}
	if len(errs) > 0 {
		_ = p.DeleteMediaFiles(uuid)
		return nil, fmt.Errorf("failed to create sizes: %s", strings.Join(errs, "; "))
	}

	return result, nil
}

// createSize crops img from its centre to the exact configured dimensions.
func (p *Processor) createSize(img image.Image, uuid, filename, format, sizeName string, cfg model.ImageSizeConfig) (model.MediaSize, bool, error) {
	bounds := img.Bounds()
	if bounds.Dx() < cfg.Width || bounds.Dy() < cfg.Height {
		return model.MediaSize{}, false, nil
	}

	resized := imaging.Fill(img, cfg.Width, cfg.Height, imaging.Center, imaging.Lanczos)
	processed, err := encodeImage(resized, format, cfg.Quality)
	if err != nil {
		return model.MediaSize{}, false, fmt.Errorf("failed to encode: %w", err)
	}

	rel, err := p.saveFile(sizeName, uuid, filename, processed)
	if err != nil {
		return model.MediaSize{}, false, err
	}

	return model.MediaSize{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Filename: rel,
		Size:     int64(len(processed)),
	}, true, nil
}

// SaveFile stores a non-image upload as-is and returns its size in bytes.
func (p *Processor) SaveFile(reader io.Reader, uuid, filename string) (int64, error) {
	dir, err := util.SafeJoinPath(p.uploadDir, originalsDir, uuid)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	safe, err := util.SanitizeFilename(filename)
	if err != nil {
		return 0, err
	}
	path := filepath.Join(dir, safe)
	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = out.Close() }()

	size, err := io.Copy(out, reader)
	if err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	return size, nil
}

// IsImage checks if a MIME type represents an image that can be processed.
func (p *Processor) IsImage(mimeType string) bool {
	m := model.Media{MimeType: mimeType}
	return m.IsImage()
}

// DetectMimeType detects the MIME type of uploaded data.
func (p *Processor) DetectMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	// http.DetectContentType returns types like "text/plain; charset=utf-8"
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return contentType
}

// DeleteMediaFiles removes the original and every size of a media item.
func (p *Processor) DeleteMediaFiles(uuid string) error {
	dirs := []string{originalsDir}
	for sizeName := range model.ImageSizes {
		dirs = append(dirs, sizeName)
	}
	for _, d := range dirs {
		path, err := util.SafeJoinPath(p.uploadDir, d, uuid)
		if err != nil {
			return err
		}
		if err := os.RemoveAll(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete %s: %w", d, err)
		}
	}
	return nil
}

// URL returns the public path of a stored file. An empty size names the original.
func URL(uuid, filename, size string) string {
	if size == "" {
		size = originalsDir
	}
	return fmt.Sprintf("/uploads/%s/%s/%s", size, uuid, filename)
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation applies EXIF orientation transformation to an image.
// Orientation values:
// 1: Normal
// 2: Flip horizontal
// 3: Rotate 180°
// 4: Flip vertical
// 5: Rotate 90° CW + flip horizontal
// 6: Rotate 90° CW
// 7: Rotate 90° CCW + flip horizontal
// 8: Rotate 90° CCW
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// encodeImage encodes an image in format. WebP has no pure Go encoder and
// is written as JPEG.
func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// outputFilename returns the stored name for an upload; WebP sources get a
// .jpg extension to match their encoding.
func outputFilename(filename, format string) string {
	if format != "webp" {
		return filename
	}
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ".jpg"
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// Explicitly reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

// formatToMimeType converts format string to MIME type. WebP sources are
// stored as JPEG.
func formatToMimeType(format string) string {
	switch format {
	case "jpeg", "jpg", "webp":
		return model.MimeTypeJPEG
	case "png":
		return model.MimeTypePNG
	case "gif":
		return model.MimeTypeGIF
	default:
		return "application/octet-stream"
	}
}

// saveFile writes data to <uploadDir>/<dir>/<uuid>/<filename> and returns
// the path relative to the uploads directory.
func (p *Processor) saveFile(dir, uuid, filename string, data []byte) (string, error) {
	safe, err := util.SanitizeFilename(filename)
	if err != nil {
		return "", err
	}
	target, err := util.SafeJoinPath(p.uploadDir, dir, uuid)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(target, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(target, safe), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return filepath.ToSlash(filepath.Join(dir, uuid, safe)), nil
}
