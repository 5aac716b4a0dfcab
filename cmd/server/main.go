package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/simp-lee/amcham/internal/app"
	"github.com/simp-lee/amcham/internal/config"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	envFile := flag.String("env", ".env", "optional dotenv file with APP__ overrides")
	flag.Parse()

	// A missing dotenv file is fine; real environment variables still apply.
	_ = godotenv.Load(*envFile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal("failed to create app: ", err)
	}

	if err := a.Run(); err != nil {
		log.Fatal("server error: ", err)
	}
}
