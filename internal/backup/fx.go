package backup

import (
	"github.com/smallbiznis/flowsight/internal/backup/service"
	"go.uber.org/fx"
)

var Module = fx.Module("backup",
	fx.Provide(service.NewService),
)
