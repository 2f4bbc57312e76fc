// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/olegiv/ypng-go/internal/imaging"
	"github.com/olegiv/ypng-go/internal/model"
	"github.com/olegiv/ypng-go/internal/store"
	"github.com/olegiv/ypng-go/internal/util"
	"github.com/olegiv/ypng-go/internal/validation"
)

const collMedia = model.CollectionMedia

// MaxUploadSize is the largest accepted upload.
const MaxUploadSize = 20 * 1024 * 1024 // 20MB

// ErrNoStorage is returned by uploads when no upload directory is configured.
var ErrNoStorage = errors.New("media storage is not configured")

// MediaService handles uploads and their stored files.
type MediaService struct {
	*base
	processor *imaging.Processor
}

// Upload stores a file with the metadata in meta. Images are decoded and
// get their size variants; other supported types are stored as-is.
func (s *MediaService) Upload(ctx context.Context, actor model.Actor, r io.Reader, filename string, meta model.Media) (model.Media, error) {
	if _, err := authorize(collMedia, model.OpCreate, actor); err != nil {
		return model.Media{}, err
	}
	if s.processor == nil {
		return model.Media{}, ErrNoStorage
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return model.Media{}, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return model.Media{}, invalidField(collMedia, "file", fmt.Sprintf("File size exceeds maximum allowed (%d bytes)", MaxUploadSize))
	}
	if len(data) == 0 {
		return model.Media{}, invalidField(collMedia, "file", "File is empty")
	}
	name, err := util.SanitizeFilename(filename)
	if err != nil {
		return model.Media{}, invalidField(collMedia, "filename", "Invalid filename")
	}

	m := meta
	m.ID = 0
	m.UUID = uuid.New().String()
	m.Filename = name
	m.MimeType = s.processor.DetectMimeType(data)
	m.Size = int64(len(data))
	m.Width, m.Height = 0, 0
	m.Sizes = nil
	m.UploadedBy = actor.ID
	m = s.derive.Media(m, model.OpCreate)

	errs := validation.Media(m)
	if !model.IsSupportedMimeType(m.MimeType) && !errs.Has("mimeType") {
		errs.Add("mimeType", "Unsupported file type")
	}
	if len(errs) > 0 {
		return model.Media{}, invalid(collMedia, errs)
	}

	if s.processor.IsImage(m.MimeType) {
		res, err := s.processor.Process(bytes.NewReader(data), m.UUID, name)
		if err != nil {
			return model.Media{}, invalidField(collMedia, "file", "Could not process image: "+err.Error())
		}
		m.Filename = res.Filename
		m.MimeType = res.MimeType
		m.Size = res.Size
		m.Width, m.Height = res.Width, res.Height
		m.Sizes = res.Sizes
	} else if _, err := s.processor.SaveFile(bytes.NewReader(data), m.UUID, name); err != nil {
		return model.Media{}, fmt.Errorf("saving file: %w", err)
	}

	now := s.now()
	m.CreatedAt, m.UpdatedAt = now, now
	saved, err := s.queries.CreateMedia(ctx, m)
	if err != nil {
		if derr := s.processor.DeleteMediaFiles(m.UUID); derr != nil {
			s.logger.Warn("failed to clean up media files", "uuid", m.UUID, "error", derr)
		}
		return model.Media{}, saveErr(collMedia, err)
	}
	return saved, nil
}

// Update edits the metadata of a media item. Files never change.
func (s *MediaService) Update(ctx context.Context, actor model.Actor, id int64, patch []byte) (model.Media, error) {
	if _, err := authorize(collMedia, model.OpUpdate, actor); err != nil {
		return model.Media{}, err
	}
	prev, err := s.queries.GetMedia(ctx, id)
	if err != nil {
		return model.Media{}, lookupErr(collMedia, id, err)
	}

	next, err := mergePatch(collMedia, prev, patch)
	if err != nil {
		return model.Media{}, err
	}
	next.ID, next.UUID, next.Filename = prev.ID, prev.UUID, prev.Filename
	next.MimeType, next.Size = prev.MimeType, prev.Size
	next.Width, next.Height, next.Sizes = prev.Width, prev.Height, prev.Sizes
	next.UploadedBy, next.CreatedAt = prev.UploadedBy, prev.CreatedAt
	next = s.derive.Media(next, model.OpUpdate)

	if errs := validation.Media(next); len(errs) > 0 {
		return model.Media{}, invalid(collMedia, errs)
	}
	next.UpdatedAt = s.now()

	saved, err := s.queries.UpdateMedia(ctx, next)
	if err != nil {
		return model.Media{}, saveErr(collMedia, err)
	}
	return saved, nil
}

// Get returns a media item.
func (s *MediaService) Get(ctx context.Context, actor model.Actor, id int64) (model.Media, error) {
	if _, err := authorize(collMedia, model.OpRead, actor); err != nil {
		return model.Media{}, err
	}
	m, err := s.queries.GetMedia(ctx, id)
	if err != nil {
		return model.Media{}, lookupErr(collMedia, id, err)
	}
	return m, nil
}

// List returns a page of media items, newest first.
func (s *MediaService) List(ctx context.Context, actor model.Actor, limit, offset int64) ([]model.Media, error) {
	d, err := authorize(collMedia, model.OpRead, actor)
	if err != nil {
		return nil, err
	}
	return s.queries.ListMedia(ctx, store.ListParams{Filter: filterOf(d), Limit: limit, Offset: offset})
}

// Delete removes a media item and its files. File removal failures are
// logged; the record is already gone.
func (s *MediaService) Delete(ctx context.Context, actor model.Actor, id int64) error {
	if _, err := authorize(collMedia, model.OpDelete, actor); err != nil {
		return err
	}
	m, err := s.queries.GetMedia(ctx, id)
	if err != nil {
		return lookupErr(collMedia, id, err)
	}
	if err := s.queries.DeleteMedia(ctx, id); err != nil {
		return fmt.Errorf("deleting media %d: %w", id, err)
	}
	if s.processor != nil {
		if err := s.processor.DeleteMediaFiles(m.UUID); err != nil {
			s.logger.Warn("failed to delete media files", "media_id", id, "error", err)
		}
	}
	return nil
}

// MediaURL returns the public path of a media file. An empty size names the original.
func MediaURL(m model.Media, size string) string {
	if _, ok := m.Sizes[size]; size != "" && !ok {
		return ""
	}
	return imaging.URL(m.UUID, m.Filename, size)
}
