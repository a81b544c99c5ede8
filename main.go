package main

import (
	"log"
	"os"

	"github.com/avoelkl/mietscout/cmd"

	"github.com/joho/godotenv"
)

func main() {
	// Values from a local .env file feed the viper env bindings.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using the environment as is")
	}

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
