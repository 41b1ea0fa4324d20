package modules

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"

	"github.com/caronelabs/mediad/internal/config"
	"github.com/caronelabs/mediad/internal/handlers"
	"github.com/caronelabs/mediad/internal/imgproc"
	"github.com/caronelabs/mediad/internal/media"
	mediapg "github.com/caronelabs/mediad/internal/media/postgres"
	"github.com/caronelabs/mediad/internal/server"
	"github.com/caronelabs/mediad/internal/storage"
)

var DomainModule = fx.Module(
	"domain",
	fx.Provide(
		provideRepository,
		providePipeline,
		provideLayout,
		provideRules,
		provideRegistry,
		media.NewStoreService,
		media.NewGetService,
		media.NewDeleteService,
		provideServerHandler(handlers.NewPingHandler),
		provideServerHandler(provideMediaHandler),
	),
)

// ---------------------------------------------------------------------------
// domain providers
// ---------------------------------------------------------------------------

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideRepository(log *slog.Logger, pool *pgxpool.Pool) media.Repository {
	return mediapg.NewRepository(log, pool)
}

func providePipeline(log *slog.Logger, cfg config.Config) media.ImagePipeline {
	return imgproc.NewPipeline(log, cfg.Media.Image, cfg.Media.Thumbnail)
}

func provideLayout(cfg config.Config) media.Layout {
	return media.NewLayout(cfg.Storage)
}

func provideRules(cfg config.Config) media.Rules {
	return media.NewRules(cfg.Media)
}

func provideRegistry(log *slog.Logger, repo media.Repository, disks *storage.Manager, layout media.Layout, pipeline media.ImagePipeline) *media.Registry {
	return media.NewRegistry(log, repo, disks, layout, pipeline)
}

func provideMediaHandler(log *slog.Logger, cfg config.Config, store *media.StoreService, get *media.GetService, del *media.DeleteService) *handlers.MediaHandler {
	return handlers.NewMediaHandler(log, store, get, del, cfg.Media.CacheMinutes)
}
