package main

import (
	"log"
	"os"

	"github.com/tmusoni/darasa/core"
	"github.com/tmusoni/darasa/core/class"
	"github.com/tmusoni/darasa/core/student"
	"github.com/tmusoni/darasa/storage/database"
	pgrepos "github.com/tmusoni/darasa/storage/database/postgres"
	"github.com/tmusoni/darasa/storage/database/redisdb"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	cli := commandLine{conf: conf}

	switch conf.Database.Engine {
	case "postgres":
		errAndDie(database.CreateIfNotExist(conf))
		db, err := database.Open(conf)
		errAndDie(err)
		defer db.Close()

		cli.db = db.DB
		cli.studentSvc = student.NewService(pgrepos.NewStudentRepository(db))
		cli.classSvc = class.NewService(pgrepos.NewClassRepository(db))
		cli.authRepo = pgrepos.NewAuthRepository(db)
	default: // redis
		rdb, err := redisdb.Open(conf)
		errAndDie(err)
		defer rdb.Close()

		cli.studentSvc = student.NewService(redisdb.NewStudentRepository(rdb))
		cli.classSvc = class.NewService(redisdb.NewClassRepository(rdb))
		cli.authRepo = redisdb.NewAuthRepository(rdb)
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
