package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"animehost/internal/models"
	"animehost/internal/repository"
	"animehost/internal/storage"
)

type fakeImageRepo struct {
	byID       map[string]models.Image
	failCreate error
	clock      time.Time
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{
		byID:  make(map[string]models.Image),
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *fakeImageRepo) Create(_ context.Context, image models.Image) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	r.clock = r.clock.Add(time.Minute)
	image.CreatedAt = r.clock
	r.byID[image.ID] = image
	return nil
}

func (r *fakeImageRepo) GetByID(_ context.Context, id string) (models.Image, error) {
	image, ok := r.byID[id]
	if !ok {
		return models.Image{}, repository.ErrImageNotFound
	}
	return image, nil
}

func (r *fakeImageRepo) ListPage(_ context.Context, search string, limit, offset int) ([]models.Image, int, error) {
	var matched []models.Image
	needle := strings.ToLower(search)
	for _, image := range r.byID {
		if search == "" ||
			strings.Contains(strings.ToLower(image.Title), needle) ||
			strings.Contains(strings.ToLower(image.Tags), needle) {
			matched = append(matched, image)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *fakeImageRepo) ListByUser(_ context.Context, userID string) ([]models.Image, error) {
	var owned []models.Image
	for _, image := range r.byID {
		if image.UserID == userID {
			owned = append(owned, image)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	return owned, nil
}

func (r *fakeImageRepo) UpdateFields(_ context.Context, id string, title, description, tags string) error {
	image, ok := r.byID[id]
	if !ok {
		return repository.ErrImageNotFound
	}
	image.Title = title
	image.Description = description
	image.Tags = tags
	r.byID[id] = image
	return nil
}

func (r *fakeImageRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return repository.ErrImageNotFound
	}
	delete(r.byID, id)
	return nil
}

// memFile adapts a byte slice to multipart.File.
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func uploadInput(owner string, data []byte) UploadInput {
	return UploadInput{
		OwnerID:   owner,
		OwnerName: owner,
		File:      memFile{bytes.NewReader(data)},
		Header:    &multipart.FileHeader{Filename: "test.png", Size: int64(len(data))},
	}
}

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newImageFixture(t *testing.T) (*ImageService, *fakeImageRepo, string) {
	t.Helper()
	dir := t.TempDir()
	files, err := storage.NewLocalStore(dir, "/uploads")
	require.NoError(t, err)

	repo := newFakeImageRepo()
	svc := NewImageService(repo, files, 5<<20, 1200, zerolog.Nop())
	return svc, repo, dir
}

func dirEntries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func TestUploadPersistsFileAndRecord(t *testing.T) {
	svc, repo, dir := newImageFixture(t)

	input := uploadInput("user-a", testPNG(t, 200, 100))
	input.Title = "  Sunset  "
	input.Description = "a sunset"
	input.Tags = []string{"sky, evening", "orange"}

	img, err := svc.Upload(context.Background(), input)
	require.NoError(t, err)

	require.Equal(t, "Sunset", img.Title)
	require.Equal(t, "a sunset", img.Description)
	require.Equal(t, "sky, evening, orange", img.Tags)
	require.Equal(t, models.OrientationLandscape, img.Orientation)
	require.True(t, strings.HasPrefix(img.Filename, "user-a_"))
	require.True(t, strings.HasSuffix(img.Filename, ".png"))
	require.Equal(t, "/uploads/"+img.Filename, img.URL)

	require.Len(t, dirEntries(t, dir), 1)
	require.Contains(t, repo.byID, img.ID)
}

func TestUploadDefaultsTitle(t *testing.T) {
	svc, _, _ := newImageFixture(t)

	img, err := svc.Upload(context.Background(), uploadInput("user-a", testPNG(t, 100, 200)))
	require.NoError(t, err)
	require.Equal(t, "Untitled", img.Title)
	require.Equal(t, models.OrientationPortrait, img.Orientation)
}

func TestUploadRejectsNonImageBeforeDiskWrite(t *testing.T) {
	svc, repo, dir := newImageFixture(t)

	_, err := svc.Upload(context.Background(), uploadInput("user-a", []byte("<html>not an image</html>")))
	require.ErrorIs(t, err, ErrUnsupportedFile)

	require.Empty(t, dirEntries(t, dir))
	require.Empty(t, repo.byID)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	svc, _, dir := newImageFixture(t)

	input := uploadInput("user-a", testPNG(t, 10, 10))
	input.Header.Size = 6 << 20

	_, err := svc.Upload(context.Background(), input)
	require.ErrorIs(t, err, ErrFileTooLarge)
	require.Empty(t, dirEntries(t, dir))
}

func TestUploadMissingFile(t *testing.T) {
	svc, _, _ := newImageFixture(t)

	_, err := svc.Upload(context.Background(), UploadInput{OwnerID: "user-a"})
	require.ErrorIs(t, err, ErrNoFile)
}

func TestUploadCompensatesFailedInsert(t *testing.T) {
	svc, repo, dir := newImageFixture(t)
	repo.failCreate = errors.New("connection reset")

	_, err := svc.Upload(context.Background(), uploadInput("user-a", testPNG(t, 50, 50)))
	require.Error(t, err)

	// The written file must be gone again.
	require.Empty(t, dirEntries(t, dir))
}

func TestEditRequiresOwnership(t *testing.T) {
	svc, repo, _ := newImageFixture(t)
	ctx := context.Background()

	img, err := svc.Upload(ctx, uploadInput("user-a", testPNG(t, 50, 50)))
	require.NoError(t, err)

	err = svc.Edit(ctx, "user-b", img.ID, EditInput{Title: "hijacked"})
	require.ErrorIs(t, err, ErrForbidden)
	require.Equal(t, "Untitled", repo.byID[img.ID].Title)
}

func TestEditAppliesFieldsWithDefaults(t *testing.T) {
	svc, repo, _ := newImageFixture(t)
	ctx := context.Background()

	img, err := svc.Upload(ctx, uploadInput("user-a", testPNG(t, 50, 50)))
	require.NoError(t, err)

	err = svc.Edit(ctx, "user-a", img.ID, EditInput{
		Description: "updated",
		Tags:        []string{"one", "two"},
	})
	require.NoError(t, err)

	got := repo.byID[img.ID]
	require.Equal(t, "Untitled", got.Title)
	require.Equal(t, "updated", got.Description)
	require.Equal(t, "one, two", got.Tags)
}

func TestEditMissingImage(t *testing.T) {
	svc, _, _ := newImageFixture(t)

	err := svc.Edit(context.Background(), "user-a", "missing", EditInput{})
	require.ErrorIs(t, err, repository.ErrImageNotFound)
}

func TestDeleteRequiresOwnership(t *testing.T) {
	svc, repo, dir := newImageFixture(t)
	ctx := context.Background()

	img, err := svc.Upload(ctx, uploadInput("user-a", testPNG(t, 50, 50)))
	require.NoError(t, err)

	err = svc.Delete(ctx, "user-b", img.ID)
	require.ErrorIs(t, err, ErrForbidden)
	require.Contains(t, repo.byID, img.ID)
	require.Len(t, dirEntries(t, dir), 1)
}

func TestDeleteRemovesFileAndRecord(t *testing.T) {
	svc, repo, dir := newImageFixture(t)
	ctx := context.Background()

	img, err := svc.Upload(ctx, uploadInput("user-a", testPNG(t, 50, 50)))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "user-a", img.ID))
	require.Empty(t, repo.byID)
	require.Empty(t, dirEntries(t, dir))

	// The second delete finds nothing.
	err = svc.Delete(ctx, "user-a", img.ID)
	require.ErrorIs(t, err, repository.ErrImageNotFound)
}

func TestListSearchMatchesTags(t *testing.T) {
	svc, _, _ := newImageFixture(t)
	ctx := context.Background()

	tagged := uploadInput("user-a", testPNG(t, 50, 50))
	tagged.Title = "plain title"
	tagged.Tags = []string{"catgirl"}
	img, err := svc.Upload(ctx, tagged)
	require.NoError(t, err)

	other := uploadInput("user-a", testPNG(t, 50, 50))
	other.Title = "another"
	_, err = svc.Upload(ctx, other)
	require.NoError(t, err)

	page, err := svc.List(ctx, "CATGIRL", 1)
	require.NoError(t, err)
	require.Len(t, page.Images, 1)
	require.Equal(t, img.ID, page.Images[0].ID)
}

func TestListPagination(t *testing.T) {
	svc, _, _ := newImageFixture(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		_, err := svc.Upload(ctx, uploadInput("user-a", testPNG(t, 50, 50)))
		require.NoError(t, err)
	}

	first, err := svc.List(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, first.Images, 9)
	require.Equal(t, 20, first.Total)
	require.Equal(t, 3, first.TotalPages) // ceil(20/9)

	last, err := svc.List(ctx, "", 3)
	require.NoError(t, err)
	require.Len(t, last.Images, 2)

	// Newest first across the whole set.
	require.True(t, first.Images[0].CreatedAt.After(last.Images[len(last.Images)-1].CreatedAt))
}

func TestListDefaultsPage(t *testing.T) {
	svc, _, _ := newImageFixture(t)

	page, err := svc.List(context.Background(), "", 0)
	require.NoError(t, err)
	require.Equal(t, 1, page.Page)
}
