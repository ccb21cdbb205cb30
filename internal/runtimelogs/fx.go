package runtimelogs

import (
	"github.com/smallbiznis/flowsight/internal/runtimelogs/service"
	"go.uber.org/fx"
)

var Module = fx.Module("runtimelogs",
	fx.Provide(service.NewService),
)
