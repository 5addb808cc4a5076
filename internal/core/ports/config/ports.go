package configports

import (
	"context"

	configdomain "showip.dev/cli/internal/core/domain/config"
)

type Loader interface {
	Load(ctx context.Context) (configdomain.Snapshot, error)
	Name() string
}

type Validator interface {
	Validate(cfg configdomain.InstallConfig) error
}
