package creditusage

import (
	"github.com/smallbiznis/flowsight/internal/creditusage/repository"
	"github.com/smallbiznis/flowsight/internal/creditusage/rollup"
	"github.com/smallbiznis/flowsight/internal/creditusage/service"
	"go.uber.org/fx"
)

var Module = fx.Module("creditusage",
	fx.Provide(
		repository.New,
		service.NewService,
		rollup.NewService,
	),
)
