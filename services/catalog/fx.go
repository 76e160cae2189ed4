package catalog

import (
	"go.uber.org/fx"

	"workshop-backend/pkg/httpapi"
)

var Module = fx.Module("catalog",
	fx.Provide(
		NewService,
		NewHandler,
		httpapi.AsRoutes(func(h *Handler) *Handler { return h }),
	),
)
