package bootstrap

import (
	"log"

	"mongolens-be/internal/config"
	"mongolens-be/internal/controller"
	"mongolens-be/internal/pkg/logger"
	"mongolens-be/internal/repository/contract"
	"mongolens-be/internal/repository/implementation"
	"mongolens-be/internal/repository/memory"
	"mongolens-be/internal/service"
	"mongolens-be/pkg/attempt"
	"mongolens-be/pkg/mongodb"
	"mongolens-be/pkg/mongodb/catalog"
	"mongolens-be/pkg/mongodb/query"
)

type Container struct {
	ProfileController    controller.IProfileController
	ConnectionController controller.IConnectionController
	QueryController      controller.IQueryController

	// Exposed for shutdown handling in main.go
	SessionService service.ISessionService
}

func NewContainer(cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	var profileRepo contract.IProfileRepository
	if cfg.Profiles.StorePath == "" {
		profileRepo = memory.NewProfileRepository()
	} else {
		var err error
		profileRepo, err = implementation.NewFileProfileRepository(cfg.Profiles.StorePath)
		if err != nil {
			log.Fatalf("[FATAL] Failed to open profile store: %v", err)
		}
	}

	negotiator := mongodb.NewNegotiator(mongodb.DefaultCandidates(cfg.Mongo.ConnectTimeout), sysLogger)
	cat := catalog.New(cfg.Mongo.CacheTTL, cfg.Mongo.SampleSize, sysLogger)
	compiler := query.NewCompiler(sysLogger)

	connectionAttempts := attempt.NewRegistry("connection", sysLogger)
	queryAttempts := attempt.NewRegistry("query", sysLogger)

	profileService := service.NewProfileService(profileRepo)
	sessionService := service.NewSessionService(profileRepo, negotiator, cat, connectionAttempts, sysLogger)
	queryService := service.NewQueryService(cat, compiler, queryAttempts, sysLogger)

	return &Container{
		ProfileController:    controller.NewProfileController(profileService),
		ConnectionController: controller.NewConnectionController(sessionService),
		QueryController:      controller.NewQueryController(queryService),

		SessionService: sessionService,
	}
}
