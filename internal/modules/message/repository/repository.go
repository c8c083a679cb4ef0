package repository

import (
	"github.com/reshetovitsme/channel-steward/internal/modules/message/domain"
)

// Repository persists the shared messages document.
type Repository interface {
	LoadDefaults() (domain.Defaults, error)
	SaveDefaults(defaults domain.Defaults) error
}
