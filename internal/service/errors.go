package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"ipal-monitor/internal/model"
	"ipal-monitor/internal/store"
)

// Sentinel errors mapped to HTTP status codes by the API layer.
var (
	ErrInvalidReading     = errors.New("invalid sensor data")
	ErrInvalidThreshold   = errors.New("invalid threshold")
	ErrInvalidUser        = errors.New("invalid user")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidRetention   = errors.New("invalid retention period")
	ErrNoData             = errors.New("no data available")

	ErrNotFound      = store.ErrNotFound
	ErrDuplicateUser = store.ErrDuplicateUser
)

var validate = validator.New()

// validationError flattens validator errors into err's message.
func validationError(sentinel error, err error) error {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("%w: %v", sentinel, err)
	}

	msgs := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", sentinel, strings.Join(msgs, "; "))
}

// LatestCache is the optional latest-reading cache.
type LatestCache interface {
	SetLatest(ctx context.Context, r *model.Reading) error
	WarmLatest(ctx context.Context, r *model.Reading) (bool, error)
	Latest(ctx context.Context) (*model.Reading, error)
	Invalidate(ctx context.Context) error
}

// Broadcaster pushes live events to dashboards.
type Broadcaster interface {
	Broadcast(event string, data interface{})
}
