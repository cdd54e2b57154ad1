package service

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigapbencana/rambu_api/internal/models"
	"github.com/sigapbencana/rambu_api/internal/utils"
)

func TestValidateRambu(t *testing.T) {
	svc := NewRambuService(nil, t.TempDir(), 4)

	t.Run("defaults empty status to draft", func(t *testing.T) {
		r := &models.Rambu{Lat: -6.2, Lon: 106.8}
		require.NoError(t, svc.validate(r))
		assert.Equal(t, models.StatusDraft, r.Status)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		r := &models.Rambu{Lat: -6.2, Lon: 106.8, Status: "retired"}
		assert.ErrorIs(t, svc.validate(r), utils.ErrInvalidStatus)
	})

	t.Run("rejects non-finite and out-of-range coordinates", func(t *testing.T) {
		for _, tc := range []struct{ lat, lon float64 }{
			{math.NaN(), 106.8},
			{-6.2, math.Inf(-1)},
			{-91, 106.8},
			{-6.2, 200},
		} {
			r := &models.Rambu{Lat: tc.lat, Lon: tc.lon}
			assert.ErrorIs(t, svc.validate(r), utils.ErrInvalidCoordinate, "lat=%v lon=%v", tc.lat, tc.lon)
		}
	})
}

func TestStorePhoto(t *testing.T) {
	dir := t.TempDir()
	svc := NewRambuService(nil, dir, 4)

	name, err := svc.storePhoto(PhotoUpload{Filename: "Sign.JPG", Reader: bytes.NewReader([]byte("jpeg bytes"))})
	require.NoError(t, err)
	assert.Equal(t, ".jpg", filepath.Ext(name))

	content, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(content))

	// Extension defaults when the upload has none.
	name, err = svc.storePhoto(PhotoUpload{Filename: "noext", Reader: bytes.NewReader(nil)})
	require.NoError(t, err)
	assert.Equal(t, ".jpg", filepath.Ext(name))
}
