package main

import (
	"flag"
	"fmt"
	"os"
	"rld/internal/di"
	"rld/internal/structures"

	"github.com/joho/godotenv"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config/config.yml", "Path to the YAML config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "Log to console as well as to files")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %s\n", err)
	}

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "rld: %s\n", err)
		os.Exit(1)
	}
}
