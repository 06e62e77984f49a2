package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/theplant/pagequery"
	"github.com/theplant/pagequery/config"
	"github.com/theplant/pagequery/gormquery"
	"github.com/theplant/pagequery/httpapi"
	"github.com/theplant/pagequery/logging"
	"github.com/theplant/pagequery/lubricant"
	"github.com/theplant/pagequery/memstore"
	"github.com/theplant/pagequery/report"
)

func main() {
	args, usage, err := parseArgs(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type repositories struct {
	lubricants pagequery.Repository[lubricant.Lubricant]
	reports    pagequery.Repository[report.Report]
	close      func() error
}

func openRepositories(cfg *config.Config, log *logrus.Logger, args *appArgs) (*repositories, error) {
	if *args.Memory {
		if *args.Migrate {
			log.Warn("--migrate has no effect with --memory")
		}
		return &repositories{
			lubricants: memstore.New[lubricant.Lubricant](),
			reports:    memstore.New[report.Report](memstore.WithUnique("FormNumber")),
			close:      func() error { return nil },
		}, nil
	}

	db, err := gormquery.Open(cfg.DB, logging.GormLogger(log, cfg.IsProduction()))
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}
	if *args.Migrate {
		if err := gormquery.Migrate(db, &lubricant.Lubricant{}, &report.Report{}); err != nil {
			sqlDB.Close()
			return nil, err
		}
		log.Info("database migrated")
	}
	return &repositories{
		lubricants: gormquery.NewRepository[lubricant.Lubricant](db),
		reports:    gormquery.NewRepository[report.Report](db),
		close:      sqlDB.Close,
	}, nil
}

func run(args *appArgs) error {
	cfg, err := config.Load(*args.EnvFiles...)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log, os.Stdout)
	if err != nil {
		return err
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	repos, err := openRepositories(cfg, log, args)
	if err != nil {
		return err
	}
	defer func() {
		if err := repos.close(); err != nil {
			log.WithError(err).Error("close database")
		}
	}()

	lubricants := lubricant.NewService(repos.lubricants, cfg.Pagination.DefaultPerPage, cfg.Pagination.MaxPerPage)
	reports := report.NewService(repos.reports, lubricants, cfg.Pagination.DefaultPerPage, cfg.Pagination.MaxPerPage)

	srv := &http.Server{
		Addr: ":" + cfg.App.Port,
		Handler: httpapi.NewRouter(log, cfg.App.Origins, httpapi.Services{
			Lubricants: lubricants,
			Reports:    reports,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": srv.Addr, "mode": cfg.App.Mode}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return errors.Wrap(err, "serve")
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	log.Info("server stopped")
	return nil
}
