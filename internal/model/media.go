// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"time"
)

// Image size variants generated for every uploaded image.
const (
	SizeThumbnail = "thumbnail"
	SizeCard      = "card"
	SizeSquare    = "square"
	SizeHero      = "hero"
)

// Media categories.
const (
	MediaCategoryEvent   = "event"
	MediaCategoryBoard   = "board"
	MediaCategoryMember  = "member"
	MediaCategoryGeneral = "general"
)

// Supported MIME types
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
	MimeTypePDF  = "application/pdf"
)

// ImageSizeConfig defines how a size variant is produced. Variants are
// centre-cropped to the exact dimensions.
type ImageSizeConfig struct {
	Width   int
	Height  int
	Quality int
}

// ImageSizes defines the generated size variants.
var ImageSizes = map[string]ImageSizeConfig{
	SizeThumbnail: {Width: 400, Height: 300, Quality: 80},
	SizeCard:      {Width: 768, Height: 576, Quality: 80},
	SizeSquare:    {Width: 600, Height: 600, Quality: 80},
	SizeHero:      {Width: 1920, Height: 1080, Quality: 85},
}

// Media is a stored asset with its generated size variants.
type Media struct {
	ID         int64                `json:"id"`
	UUID       string               `json:"uuid"`
	Filename   string               `json:"filename"`
	MimeType   string               `json:"mimeType"`
	Size       int64                `json:"filesize"`
	Width      int                  `json:"width,omitempty"`
	Height     int                  `json:"height,omitempty"`
	Alt        string               `json:"alt"`
	Caption    string               `json:"caption,omitempty"`
	Category   string               `json:"category,omitempty"`
	Credit     string               `json:"credit,omitempty"`
	Sizes      map[string]MediaSize `json:"sizes,omitempty"`
	UploadedBy int64                `json:"uploadedBy"`
	CreatedAt  time.Time            `json:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt"`
}

// MediaSize describes one generated variant.
type MediaSize struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Filename string `json:"filename"`
	Size     int64  `json:"filesize"`
}

// IsImage returns true if the media type is an image.
func (m *Media) IsImage() bool {
	switch m.MimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	default:
		return false
	}
}

// SupportedImageTypes returns a list of supported image MIME types.
func SupportedImageTypes() []string {
	return []string{MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP}
}

// IsSupportedMimeType checks if a MIME type may be uploaded.
func IsSupportedMimeType(mimeType string) bool {
	if mimeType == MimeTypePDF {
		return true
	}
	for _, t := range SupportedImageTypes() {
		if t == mimeType {
			return true
		}
	}
	return false
}
