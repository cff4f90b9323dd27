package main

import (
	"log"
	"os"

	"github.com/tulamba/mafunzo/core"
	"github.com/tulamba/mafunzo/storage/database"
	"github.com/tulamba/mafunzo/storage/snapshot"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	cli := commandLine{conf: core.Conf}

	// the migrate and seed commands need the backing store; hashpassword does not
	if len(os.Args) > 1 && os.Args[1] != "hashpassword" {
		switch core.Conf.Snapshot.Engine {
		case "postgres":
			errAndDie(database.CreateIfNotExist(core.Conf))
			db, err := database.Open(core.Conf)
			errAndDie(err)
			defer db.Close()
			errAndDie(db.Ping())
			cli.db = db
			cli.snaps = snapshot.NewPostgresStore(db, core.Conf.Database.Engine)
		default:
			snaps, err := snapshot.NewFileStore(core.Conf.Snapshot.Dir)
			errAndDie(err)
			cli.snaps = snaps
		}
	}

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
