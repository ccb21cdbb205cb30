package connectorstatus

import (
	"github.com/smallbiznis/flowsight/internal/connectorstatus/service"
	"go.uber.org/fx"
)

var Module = fx.Module("connectorstatus",
	fx.Provide(service.NewService),
)
