package valuation

import (
	"github.com/opendrive/drivevalue/internal/valuation/repository"
	"github.com/opendrive/drivevalue/internal/valuation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("valuation.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
