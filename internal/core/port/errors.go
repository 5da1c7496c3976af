package port

import "errors"

var (
	// ErrBrandNotFound is returned when a referenced brand does not exist.
	ErrBrandNotFound = errors.New("brand not found")
	// ErrCampaignNotFound is returned when a referenced campaign does not exist.
	ErrCampaignNotFound = errors.New("campaign not found")
	// ErrScheduleNotFound is returned when a referenced schedule does not exist.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrInvalidAmount is returned for a non-positive spend amount.
	ErrInvalidAmount = errors.New("spend amount must be positive")
	// ErrCampaignMismatch is returned when the supplied campaign does not
	// belong to the supplied brand.
	ErrCampaignMismatch = errors.New("campaign does not belong to brand")

	// ErrScheduleInvalidRange is returned when a schedule's end time is not
	// after its start time and the window is not the full-day marker.
	ErrScheduleInvalidRange = errors.New("schedule end time must be after start time")
	// ErrScheduleOverlap is returned when an active schedule overlaps another
	// active schedule for the same campaign and day.
	ErrScheduleOverlap = errors.New("schedule overlaps an existing schedule")
	// ErrScheduleInvalid is returned for out-of-range schedule fields.
	ErrScheduleInvalid = errors.New("invalid schedule")
)
