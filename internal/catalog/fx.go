package catalog

import (
	"github.com/opendrive/drivevalue/internal/catalog/repository"
	"github.com/opendrive/drivevalue/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
