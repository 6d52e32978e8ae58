package main

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chainboard/internal/api"
	"chainboard/internal/config"
	"chainboard/internal/engine"
)

var (
	cfgFile    string
	listenFlag string
	dataFlag   string
)

func main() {
	root := &cobra.Command{
		Use:   "chainboard",
		Short: "Supply-chain analytics dashboard backend",
		RunE:  run,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./chainboard.yaml)")
	root.Flags().StringVar(&listenFlag, "listen", "", "listen address (overrides config)")
	root.Flags().StringVar(&dataFlag, "data", "", "local CSV path (overrides config)")

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if listenFlag != "" {
		cfg.ListenAddr = listenFlag
	}
	if dataFlag != "" {
		cfg.DataPath = dataFlag
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	loader := engine.NewLoader(cfg.DataPath, cfg.HTTPTimeout(), logger)
	h := api.NewHandler(loader, logger, cfg.DefaultTopN, cfg.PreviewRows)
	h.RegisterRoutes(e)

	// Optional warm start: parse the local file in the background so the
	// server is reachable immediately and the data shows up when ready.
	if cfg.Preload {
		go func() {
			t0 := time.Now()
			ds, err := loader.FromLocal(cfg.DataPath)
			if err != nil {
				logger.Warn("preload failed", zap.String("path", cfg.DataPath), zap.Error(err))
				return
			}
			h.SetDataset(ds, "local:"+cfg.DataPath)
			logger.Info("preload complete", zap.Duration("took", time.Since(t0)))
		}()
	}

	logger.Info("server starting", zap.String("addr", cfg.ListenAddr))
	return e.Start(cfg.ListenAddr)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
