package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"

	"animehost/internal/ids"
	"animehost/internal/media"
	"animehost/internal/models"
	"animehost/internal/storage"
)

var (
	ErrNoFile          = errors.New("no file uploaded")
	ErrFileTooLarge    = errors.New("file exceeds the maximum upload size")
	ErrUnsupportedFile = errors.New("only image files are allowed")
	ErrForbidden       = errors.New("forbidden")
)

const galleryPageSize = 9

// ImageRepo is the slice of the image repository the gallery and
// ingestion workflows need.
type ImageRepo interface {
	Create(ctx context.Context, image models.Image) error
	GetByID(ctx context.Context, id string) (models.Image, error)
	ListPage(ctx context.Context, search string, limit, offset int) ([]models.Image, int, error)
	ListByUser(ctx context.Context, userID string) ([]models.Image, error)
	UpdateFields(ctx context.Context, id string, title, description, tags string) error
	Delete(ctx context.Context, id string) error
}

type ImageService struct {
	images       ImageRepo
	files        storage.FileStore
	maxSizeBytes int64
	maxDimension int
	log          zerolog.Logger
}

func NewImageService(images ImageRepo, files storage.FileStore, maxSizeBytes int64, maxDimension int, log zerolog.Logger) *ImageService {
	return &ImageService{
		images:       images,
		files:        files,
		maxSizeBytes: maxSizeBytes,
		maxDimension: maxDimension,
		log:          log,
	}
}

type UploadInput struct {
	OwnerID     string
	OwnerName   string
	File        multipart.File
	Header      *multipart.FileHeader
	Title       string
	Description string
	Tags        []string
}

// Upload runs the ingestion pipeline: validate, derive orientation,
// resize, persist the file, persist the record. Size and content checks
// happen before anything is written anywhere. If the metadata insert fails
// after the file write, the file is removed again and the combined error
// surfaced.
func (s *ImageService) Upload(ctx context.Context, input UploadInput) (models.Image, error) {
	if input.File == nil || input.Header == nil {
		return models.Image{}, ErrNoFile
	}
	if input.Header.Size > s.maxSizeBytes {
		return models.Image{}, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(input.File, s.maxSizeBytes+1))
	if err != nil {
		return models.Image{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxSizeBytes {
		return models.Image{}, ErrFileTooLarge
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	if _, err := media.DetectHead(head); err != nil {
		return models.Image{}, ErrUnsupportedFile
	}

	// A failed dimension read degrades to "unknown"; it never fails the upload.
	orientation := media.Orient(data)

	optimized, err := media.Optimize(data, s.maxDimension)
	if err != nil {
		return models.Image{}, fmt.Errorf("optimize image: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.png", input.OwnerID, ids.New())
	if err := s.files.Save(ctx, filename, optimized, "image/png"); err != nil {
		return models.Image{}, fmt.Errorf("store file: %w", err)
	}

	image := models.Image{
		ID:          ids.New(),
		UserID:      input.OwnerID,
		Username:    input.OwnerName,
		Title:       defaultTitle(input.Title),
		Description: strings.TrimSpace(input.Description),
		Tags:        normalizeTags(input.Tags),
		Orientation: orientation,
		Filename:    filename,
		URL:         s.files.URL(filename),
	}

	if err := s.images.Create(ctx, image); err != nil {
		if rmErr := s.files.Remove(ctx, filename); rmErr != nil {
			s.log.Error().Err(rmErr).Str("filename", filename).Msg("compensating file removal failed")
			return models.Image{}, errors.Join(fmt.Errorf("save metadata: %w", err), rmErr)
		}
		return models.Image{}, fmt.Errorf("save metadata: %w", err)
	}

	s.log.Info().
		Str("image_id", image.ID).
		Str("user_id", input.OwnerID).
		Str("orientation", string(orientation)).
		Int("size_bytes", len(optimized)).
		Msg("image uploaded")

	return image, nil
}

type ImagePage struct {
	Images     []models.Image
	Search     string
	Page       int
	TotalPages int
	Total      int
}

// List returns one gallery page, newest first, optionally filtered by a
// case-insensitive substring match on title or tags.
func (s *ImageService) List(ctx context.Context, search string, page int) (ImagePage, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * galleryPageSize

	images, total, err := s.images.ListPage(ctx, strings.TrimSpace(search), galleryPageSize, offset)
	if err != nil {
		return ImagePage{}, err
	}

	return ImagePage{
		Images:     images,
		Search:     strings.TrimSpace(search),
		Page:       page,
		TotalPages: (total + galleryPageSize - 1) / galleryPageSize,
		Total:      total,
	}, nil
}

func (s *ImageService) ListByOwner(ctx context.Context, ownerID string) ([]models.Image, error) {
	return s.images.ListByUser(ctx, ownerID)
}

func (s *ImageService) Get(ctx context.Context, id string) (models.Image, error) {
	return s.images.GetByID(ctx, id)
}

type EditInput struct {
	Title       string
	Description string
	Tags        []string
}

// Edit applies title/description/tags to an image after existence and
// ownership checks, with the same defaulting as ingestion.
func (s *ImageService) Edit(ctx context.Context, requesterID, imageID string, input EditInput) error {
	image, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return err
	}
	if image.UserID != requesterID {
		return ErrForbidden
	}

	return s.images.UpdateFields(ctx, imageID,
		defaultTitle(input.Title),
		strings.TrimSpace(input.Description),
		normalizeTags(input.Tags),
	)
}

// Delete checks existence and ownership strictly before mutating anything,
// then removes the metadata row and finally the backing file. A missing
// file is tolerated; a failed removal is logged and left to the janitor.
func (s *ImageService) Delete(ctx context.Context, requesterID, imageID string) error {
	image, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return err
	}
	if image.UserID != requesterID {
		return ErrForbidden
	}

	if err := s.images.Delete(ctx, imageID); err != nil {
		return err
	}

	if err := s.files.Remove(ctx, image.Filename); err != nil {
		s.log.Warn().Err(err).Str("filename", image.Filename).Msg("file removal failed, janitor will sweep")
	}

	s.log.Info().Str("image_id", imageID).Str("user_id", requesterID).Msg("image deleted")
	return nil
}

func defaultTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Untitled"
	}
	return title
}

// normalizeTags collapses form input (repeated fields or one delimited
// string) into a single comma-delimited string.
func normalizeTags(tags []string) string {
	var parts []string
	for _, tag := range tags {
		for _, piece := range strings.Split(tag, ",") {
			piece = strings.TrimSpace(piece)
			if piece != "" {
				parts = append(parts, piece)
			}
		}
	}
	return strings.Join(parts, ", ")
}
