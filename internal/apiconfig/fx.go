package apiconfig

import (
	"github.com/opendrive/drivevalue/internal/apiconfig/repository"
	"github.com/opendrive/drivevalue/internal/apiconfig/service"
	"go.uber.org/fx"
)

var Module = fx.Module("apiconfig.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
