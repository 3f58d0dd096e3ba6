package main

import (
	"flag"
	"os"

	log "github.com/golang/glog"
	"github.com/joho/godotenv"

	"github.com/joincivil/civil-content-gate/pkg/gatemain"
	"github.com/joincivil/civil-content-gate/pkg/utils"
)

func main() {
	config := &utils.GateConfig{}
	flag.Usage = func() {
		config.OutputUsage()
		os.Exit(0)
	}
	envFile := flag.String("envfile", ".env", "Optional file of environment vars to load")
	flag.Parse()

	err := godotenv.Load(*envFile)
	if err != nil && !os.IsNotExist(err) {
		log.Errorf("Error loading env file %v: err: %v", *envFile, err)
		os.Exit(2)
	}

	err = config.PopulateFromEnv()
	if err != nil {
		config.OutputUsage()
		log.Errorf("Invalid content gate config: err: %v\n", err)
		os.Exit(2)
	}

	g, err := gatemain.InitGate(config)
	if err != nil {
		log.Errorf("Error initializing content gate: err: %v", err)
		os.Exit(2)
	}

	err = g.Run()
	if err != nil {
		log.Errorf("Content gate stopped: err: %v", err)
		os.Exit(1)
	}
	log.Info("Content gate stopped")
}
