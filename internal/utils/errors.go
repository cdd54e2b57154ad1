package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
	ErrInvalidToken       = errors.New("INVALID_TOKEN")
	ErrAccountInactive    = errors.New("ACCOUNT_INACTIVE")
	ErrRambuNotFound      = errors.New("RAMBU_NOT_FOUND")
	ErrUserNotFound       = errors.New("USER_NOT_FOUND")
	ErrInvalidCoordinate  = errors.New("INVALID_COORDINATE")
	ErrInvalidStatus      = errors.New("INVALID_STATUS")
	ErrPhotoRequired      = errors.New("PHOTO_REQUIRED")
	ErrTooManyPhotos      = errors.New("TOO_MANY_PHOTOS")
	ErrRegionNotFound     = errors.New("REGION_NOT_FOUND")

	ErrRegionBoundaryInvalid = errors.New("REGION_BOUNDARY_INVALID")
)
