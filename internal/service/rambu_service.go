package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sigapbencana/rambu_api/internal/models"
	"github.com/sigapbencana/rambu_api/internal/repository"
	"github.com/sigapbencana/rambu_api/internal/utils"
)

// PhotoUpload is one incoming attachment. The first upload of a rambu is
// always the GPS-tagged photo.
type PhotoUpload struct {
	Filename string
	Reader   io.Reader
}

// RambuService orchestrates rambu persistence and photo storage.
type RambuService struct {
	rambuRepo *repository.RambuRepository
	uploadDir string
	maxPhotos int
}

// NewRambuService constructs a new RambuService.
func NewRambuService(rambuRepo *repository.RambuRepository, uploadDir string, maxPhotos int) *RambuService {
	return &RambuService{rambuRepo: rambuRepo, uploadDir: uploadDir, maxPhotos: maxPhotos}
}

// List returns all non-trashed rambu matching the filter.
func (s *RambuService) List(ctx context.Context, f *models.RambuFilter) ([]models.Rambu, error) {
	return s.rambuRepo.List(ctx, f)
}

// ListPage returns one page of rambu plus the total matching count.
func (s *RambuService) ListPage(ctx context.Context, f *models.RambuFilter, page, pageSize int) ([]models.Rambu, int, error) {
	return s.rambuRepo.ListPage(ctx, f, page, pageSize)
}

// GetByID returns one rambu with photos.
func (s *RambuService) GetByID(ctx context.Context, id int) (*models.Rambu, error) {
	rambu, err := s.rambuRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrRambuNotFound
		}
		return nil, err
	}
	return rambu, nil
}

// Create validates and stores a new rambu together with its photos.
// At least the GPS photo is required; simulation points may omit photos.
func (s *RambuService) Create(ctx context.Context, rambu *models.Rambu, photos []PhotoUpload) error {
	if err := s.validate(rambu); err != nil {
		return err
	}
	if !rambu.IsSimulation && len(photos) == 0 {
		return utils.ErrPhotoRequired
	}
	if len(photos) > s.maxPhotos {
		return utils.ErrTooManyPhotos
	}

	if err := s.rambuRepo.Create(ctx, rambu); err != nil {
		return err
	}

	for i, upload := range photos {
		kind := "additional"
		if i == 0 {
			kind = "gps"
		}
		path, err := s.storePhoto(upload)
		if err != nil {
			return err
		}
		photo := &models.RambuPhoto{RambuID: rambu.ID, Kind: kind, Path: path}
		if err := s.rambuRepo.AddPhoto(ctx, photo); err != nil {
			return err
		}
		rambu.Photos = append(rambu.Photos, *photo)
	}

	log.Info().Int("id", rambu.ID).Bool("simulation", rambu.IsSimulation).Msg("Rambu created")
	return nil
}

// Update overwrites a rambu's fields after validation.
func (s *RambuService) Update(ctx context.Context, rambu *models.Rambu) error {
	if err := s.validate(rambu); err != nil {
		return err
	}
	if err := s.rambuRepo.Update(ctx, rambu); err != nil {
		if repository.IsNotFound(err) {
			return utils.ErrRambuNotFound
		}
		return err
	}
	return nil
}

// UpdateStatus transitions a rambu to a known status value.
func (s *RambuService) UpdateStatus(ctx context.Context, id int, status string) error {
	if !models.ValidStatus(status) {
		return utils.ErrInvalidStatus
	}
	if err := s.rambuRepo.UpdateStatus(ctx, id, status); err != nil {
		if repository.IsNotFound(err) {
			return utils.ErrRambuNotFound
		}
		return err
	}
	return nil
}

// Trash soft-deletes a rambu.
func (s *RambuService) Trash(ctx context.Context, id int) error {
	if err := s.rambuRepo.Trash(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return utils.ErrRambuNotFound
		}
		return err
	}
	return nil
}

// Delete permanently removes a rambu, its photo rows and the stored files.
func (s *RambuService) Delete(ctx context.Context, id int) error {
	photos, err := s.rambuRepo.GetPhotos(ctx, id)
	if err != nil {
		return err
	}
	if err := s.rambuRepo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return utils.ErrRambuNotFound
		}
		return err
	}
	for _, p := range photos {
		if err := os.Remove(filepath.Join(s.uploadDir, p.Path)); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", p.Path).Msg("Failed to remove photo file")
		}
	}
	return nil
}

// StatusCounts exposes the per-status totals for the report endpoint.
func (s *RambuService) StatusCounts(ctx context.Context) (map[string]int, error) {
	return s.rambuRepo.StatusCounts(ctx)
}

// CategoryCounts exposes the per-category totals for the report endpoint.
func (s *RambuService) CategoryCounts(ctx context.Context) (map[string]int, error) {
	return s.rambuRepo.CategoryCounts(ctx)
}

// ProvinceCounts exposes the per-province totals for the report endpoint.
func (s *RambuService) ProvinceCounts(ctx context.Context) (map[string]int, error) {
	return s.rambuRepo.ProvinceCounts(ctx)
}

func (s *RambuService) validate(rambu *models.Rambu) error {
	if math.IsNaN(rambu.Lat) || math.IsInf(rambu.Lat, 0) ||
		math.IsNaN(rambu.Lon) || math.IsInf(rambu.Lon, 0) {
		return utils.ErrInvalidCoordinate
	}
	if rambu.Lat < -90 || rambu.Lat > 90 || rambu.Lon < -180 || rambu.Lon > 180 {
		return utils.ErrInvalidCoordinate
	}
	if rambu.Status == "" {
		rambu.Status = models.StatusDraft
	}
	if !models.ValidStatus(rambu.Status) {
		return utils.ErrInvalidStatus
	}
	return nil
}

// storePhoto writes the upload under the upload directory with a random name
// and returns the relative path to record.
func (s *RambuService) storePhoto(upload PhotoUpload) (string, error) {
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	name := uuid.New().String() + ext

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", err
	}
	dst, err := os.Create(filepath.Join(s.uploadDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, upload.Reader); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("store photo: %w", err)
	}
	return name, nil
}
