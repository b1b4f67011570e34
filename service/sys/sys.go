package sys

import (
	"context"

	"lendfi/core"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
)

type sysService struct {
	property property.Store
}

// New new system service
func New(property property.Store) core.ISystemService {
	return &sysService{property: property}
}

// Paused reads the pause switch. Read failures leave the service running;
// pausing is an operator action, not a failure mode.
func (s *sysService) Paused(ctx context.Context) bool {
	v, err := s.property.Get(ctx, core.SysPausedKey)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("property.Get", core.SysPausedKey)
		return false
	}

	return v.Int64() != 0
}

func (s *sysService) SetPaused(ctx context.Context, paused bool) error {
	value := int64(0)
	if paused {
		value = 1
	}

	return s.property.Save(ctx, core.SysPausedKey, value)
}
