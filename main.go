/*
Copyright © 2025 songwish
*/
package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/songwish/assistant-be/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}
}
