package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/sona-ai/sona/pkg/models"
)

// Client is the generative backend collaborator. Implementations may
// block until ctx is done and may fail transiently or permanently.
type Client interface {
	// Generate sends a prompt and optional image attachments to the
	// named model and returns the generated text.
	Generate(ctx context.Context, model, prompt string, images []models.Attachment) (string, error)
}

// ErrBlocked reports that the backend refused to answer for safety
// reasons. It is permanent; retrying the same content cannot succeed.
var ErrBlocked = errors.New("response blocked by safety filters")

// StatusError is a non-2xx backend response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Body)
}

// IsTransient reports whether an error warrants a retry. Rate-limit and
// server-side statuses are transient, as are transport-level failures.
// Safety blocks and client-side statuses are not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrBlocked) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == 429 || se.Code >= 500
	}
	return true
}
