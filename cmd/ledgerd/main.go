package main

import (
	"flag"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"

	"github.com/aptosedu/aptpay/cmd/ledgerd/internal/router"
)

var app struct {
	debug  bool
	config string
}

func init() {
	flagset := flag.NewFlagSet("ledgerd", flag.ExitOnError)
	flagset.BoolVar(&app.debug, "debug", false, "set debug mode")
	flagset.StringVar(&app.config, "config", "config.yaml", "YAML configuration")
	err := flagset.Parse(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	if app.debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	configContents, err := os.ReadFile(app.config)
	if err != nil {
		log.Fatal(err)
	}

	var cfg Config
	err = yaml.Unmarshal(configContents, &cfg)
	if err != nil {
		log.Fatal(err)
	}

	db, logger, err := cfg.Compile()
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	e := gin.Default()
	var r = router.Router{
		Store: db,
		Base:  e,
		Log:   logger,
	}
	r.Register()

	err = e.Run(cfg.ListenAddress)
	if err != nil {
		log.Fatal(err)
	}
}
