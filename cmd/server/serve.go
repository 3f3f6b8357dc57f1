package main

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"agrisentry/config"
	"agrisentry/database"
	"agrisentry/router"

	activityCtrlImp "agrisentry/pkg/activity/controllerImp"
	activityRepoImp "agrisentry/pkg/activity/repositoryImp"
	activitySvcImp "agrisentry/pkg/activity/serviceImp"

	advisorCtrlImp "agrisentry/pkg/advisor/controllerImp"
	advisorRepoImp "agrisentry/pkg/advisor/repositoryImp"
	advisorSvcImp "agrisentry/pkg/advisor/serviceImp"

	"agrisentry/pkg/ai"
	authCtrlImp "agrisentry/pkg/auth/controllerImp"
	"agrisentry/pkg/climate"

	cropCtrlImp "agrisentry/pkg/crop/controllerImp"
	cropRepoImp "agrisentry/pkg/crop/repositoryImp"
	cropSvcImp "agrisentry/pkg/crop/serviceImp"

	fieldCtrlImp "agrisentry/pkg/field/controllerImp"
	fieldSvcImp "agrisentry/pkg/field/serviceImp"

	healthCtrlImp "agrisentry/pkg/health/controllerImp"

	kbCtrlImp "agrisentry/pkg/kb/controllerImp"
	kbEmbedder "agrisentry/pkg/kb/embedder"
	"agrisentry/pkg/kb/fetcher"
	kbRepoImp "agrisentry/pkg/kb/repositoryImp"
	kbSvcImp "agrisentry/pkg/kb/serviceImp"

	"agrisentry/pkg/live"
	marketCtrlImp "agrisentry/pkg/market/controllerImp"
	marketSvcImp "agrisentry/pkg/market/serviceImp"
	"agrisentry/pkg/middleware"
	"agrisentry/pkg/simulation"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the simulation engine and the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1) DB
	db, err := database.OpenSQLite(cfg.DBPath, log.Named("db"))
	if err != nil {
		return err
	}

	// 2) Crop rules
	rules := loadRules(cfg, log)

	// 3) Simulation + live hub
	eng, err := newEngine(cfg, log)
	if err != nil {
		return err
	}
	hub := live.NewHub(log.Named("live"))
	go hub.Run(ctx)
	unsubscribe := eng.Subscribe(hub.Publish)
	eng.Start()

	// 4) AI backend (mock fallback)
	llm, err := ai.New(ctx, ai.Options{
		GeminiAPIKey:      cfg.GeminiAPIKey,
		GeminiModel:       cfg.GeminiModel,
		GeminiVisionModel: cfg.GeminiVisionModel,
		LLMEndpoint:       cfg.LLMEndpoint,
		LLMAPIKey:         cfg.LLMAPIKey,
		LLMModel:          cfg.LLMModel,
	})
	if err != nil {
		log.Warn("ai backend unavailable, using mock", zap.Error(err))
		llm = ai.NewMock()
	}
	if c, ok := llm.(io.Closer); ok {
		defer c.Close()
	}
	log.Info("ai backend", zap.String("name", llm.Name()))

	// 5) Services
	kbSvc := kbSvcImp.New(
		kbRepoImp.New(db),
		kbEmbedder.New(cfg.EmbEndpoint, cfg.EmbAPIKey, cfg.EmbModel),
		log.Named("kb"),
	)
	actSvc := activitySvcImp.NewActivityService(activityRepoImp.New(db))
	cropSvc := cropSvcImp.NewCropService(cropRepoImp.New(db), eng, rules)
	advSvc := advisorSvcImp.NewAdvisorService(advisorSvcImp.Deps{
		Engine:     eng,
		Rules:      rules,
		AI:         llm,
		Chats:      advisorRepoImp.New(db),
		Activities: actSvc,
		KB:         kbSvc,
		Location:   cfg.FarmLocation,
		Log:        log.Named("advisor"),
	})

	// 6) HTTP
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.RequestLogger(log.Named("http")))

	router.New(e, router.Handlers{
		Fields:     fieldCtrlImp.New(fieldSvcImp.NewFieldService(eng, rules)),
		Activities: activityCtrlImp.New(actSvc),
		Crops:      cropCtrlImp.New(cropSvc),
		Advisor:    advisorCtrlImp.New(advSvc),
		KB:         kbCtrlImp.New(kbSvc, fetcher.New(cfg.KBAllowedDomains, cfg.KBMaxBytesPerPage)),
		Market:     marketCtrlImp.New(marketSvcImp.NewMarketService(cfg.MarketAPIURL, cfg.GeocoderURL)),
		Auth:       authCtrlImp.NewAuthController(),
		Health:     healthCtrlImp.NewHealthCtrl(db, eng, llm.Name()),
		Live:       live.NewHandler(hub, eng.Snapshot),
	}, cfg.EnableAuth)

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", ":"+cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err = <-errCh:
		log.Error("server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := e.Shutdown(shutdownCtx); serr != nil {
		log.Warn("http shutdown", zap.Error(serr))
	}
	eng.Stop()
	unsubscribe()
	stop()
	<-hub.Done()
	return err
}

func loadRules(cfg config.AppConfig, log *zap.Logger) climate.RulesEngine {
	if cfg.CropRulesCSV == "" && cfg.CropRulesXLSX == "" {
		return climate.Default()
	}
	rules, err := climate.LoadFromFiles(cfg.CropRulesCSV, cfg.CropRulesXLSX)
	if err != nil {
		log.Warn("crop rules not loaded, using defaults", zap.Error(err))
		return climate.Default()
	}
	log.Info("crop rules loaded", zap.Strings("crops", rules.Crops()))
	return rules
}

// newEngine builds the engine from cfg. A non-zero SIM_SEED makes the run
// reproducible.
func newEngine(cfg config.AppConfig, log *zap.Logger) (*simulation.Engine, error) {
	opts := []simulation.Option{simulation.WithLogger(log.Named("simulation"))}
	if cfg.SimSeed != 0 {
		opts = append(opts, simulation.WithSource(rand.New(rand.NewPCG(cfg.SimSeed, cfg.SimSeed))))
	}
	return simulation.NewEngine(cfg.Simulation(), opts...)
}
