package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"animehost/internal/models"
)

var ErrImageNotFound = errors.New("image not found")

type ImageRepository struct {
	pool *pgxpool.Pool
}

func NewImageRepository(pool *pgxpool.Pool) *ImageRepository {
	return &ImageRepository{pool: pool}
}

func (r *ImageRepository) Create(ctx context.Context, image models.Image) error {
	const query = `
		INSERT INTO images (
			id, user_id, username, title, description, tags, orientation,
			filename, url, likes, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		image.ID,
		image.UserID,
		image.Username,
		image.Title,
		image.Description,
		image.Tags,
		image.Orientation,
		image.Filename,
		image.URL,
		image.Likes,
	)
	return err
}

func (r *ImageRepository) GetByID(ctx context.Context, id string) (models.Image, error) {
	const query = `
		SELECT id, user_id, username, title, description, tags, orientation,
		       filename, url, likes, created_at
		FROM images WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	image, err := scanImage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Image{}, ErrImageNotFound
		}
		return models.Image{}, err
	}
	return image, nil
}

// ListPage returns one page of images newest first, plus the total count of
// matching rows so callers can compute the page count. An empty search
// matches everything; otherwise title and tags are matched case-insensitively
// by substring.
func (r *ImageRepository) ListPage(ctx context.Context, search string, limit, offset int) ([]models.Image, int, error) {
	const countQuery = `
		SELECT COUNT(*)
		FROM images
		WHERE $1 = '' OR title ILIKE '%' || $1 || '%' OR tags ILIKE '%' || $1 || '%'
	`
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
		SELECT id, user_id, username, title, description, tags, orientation,
		       filename, url, likes, created_at
		FROM images
		WHERE $1 = '' OR title ILIKE '%' || $1 || '%' OR tags ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var images []models.Image
	for rows.Next() {
		image, err := scanImage(rows)
		if err != nil {
			return nil, 0, err
		}
		images = append(images, image)
	}
	return images, total, rows.Err()
}

func (r *ImageRepository) ListByUser(ctx context.Context, userID string) ([]models.Image, error) {
	const query = `
		SELECT id, user_id, username, title, description, tags, orientation,
		       filename, url, likes, created_at
		FROM images
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []models.Image
	for rows.Next() {
		image, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

func (r *ImageRepository) UpdateFields(ctx context.Context, id string, title, description, tags string) error {
	const query = `
		UPDATE images
		SET title = $2, description = $3, tags = $4
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, title, description, tags)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrImageNotFound
	}
	return nil
}

func (r *ImageRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM images WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrImageNotFound
	}
	return nil
}

// FilenameExists reports whether any metadata row references the stored
// filename. The janitor uses it to tell orphaned files from live ones.
func (r *ImageRepository) FilenameExists(ctx context.Context, filename string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM images WHERE filename = $1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, filename).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func scanImage(row pgx.Row) (models.Image, error) {
	var image models.Image
	err := row.Scan(
		&image.ID,
		&image.UserID,
		&image.Username,
		&image.Title,
		&image.Description,
		&image.Tags,
		&image.Orientation,
		&image.Filename,
		&image.URL,
		&image.Likes,
		&image.CreatedAt,
	)
	return image, err
}
