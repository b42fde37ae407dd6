package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrEmptyPromptSet = errors.New("prompt set has no prompts")
	ErrPromptSetBusy  = errors.New("prompt set already has an active job")
	ErrJobFinished    = errors.New("job already reached a terminal state")
	ErrMissingAPIKey  = errors.New("api key is not configured")
	ErrLowPromptYield = errors.New("generated fewer prompts than acceptable")
	ErrNoImages       = errors.New("no images to archive")
)
