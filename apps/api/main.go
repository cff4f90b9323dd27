package main

import (
	"context"
	"database/sql"
	"expvar"
	"fmt"
	"log"
	"os"

	echoapi "github.com/tulamba/mafunzo/apps/api/echo"
	"github.com/tulamba/mafunzo/core"
	"github.com/tulamba/mafunzo/core/course"
	"github.com/tulamba/mafunzo/core/employee"
	emailsvc "github.com/tulamba/mafunzo/services/email"
	logsvc "github.com/tulamba/mafunzo/services/logger"
	"github.com/tulamba/mafunzo/storage/database"
	inmemdb "github.com/tulamba/mafunzo/storage/database/inmem"
	"github.com/tulamba/mafunzo/storage/snapshot"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.Conf
	ctx := context.Background()

	logger := newLogger(conf)

	// set up snapshot store
	snaps, dbClose, err := newSnapshotStore(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up snapshot store: %v", err), err)
	}
	if dbClose != nil {
		defer dbClose()
	}

	db, err := inmemdb.Open(ctx, snaps, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("restoring collections: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	crsRepo := inmemdb.NewCourseRepository(db)
	crsSvc := course.NewService(crsRepo)
	empSvc := employee.NewService(inmemdb.NewEmployeeRepository(db), crsRepo, mailSvc, logger)
	crsSvc.SetProgressSyncer(empSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// expose important info under /debug/vars
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		&echoapi.Options{
			Addr:        conf.Server.Address(),
			Logger:      logger,
			CourseSvc:   crsSvc,
			EmployeeSvc: empSvc,
		},
	)
	server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		sctx, cancel := context.WithTimeout(ctx, conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(sctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func newLogger(conf *core.Config) core.Logger {
	if conf.RollbarToken != "" {
		logger := logsvc.NewRollbarLogger(
			log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
			conf,
		)
		logger.Enable(!conf.Debug)
		return logger
	}

	logger, err := logsvc.NewZapLogger(conf)
	if err != nil {
		log.Fatalf("setting up logger: %v", err)
	}
	return logger
}

// newSnapshotStore picks the snapshot backend from configuration; "file" needs
// no extra infrastructure, "postgres" opens and migrates the database first.
func newSnapshotStore(conf *core.Config) (snapshot.Store, func(), error) {
	switch conf.Snapshot.Engine {
	case "postgres":
		db, err := setUpDB(conf)
		if err != nil {
			return nil, nil, err
		}
		return snapshot.NewPostgresStore(db, conf.Database.Engine), func() { _ = db.Close() }, nil
	default:
		store, err := snapshot.NewFileStore(conf.Snapshot.Dir)
		return store, nil, err
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
