package main

import (
	"github.com/gofiber/fiber/v2/log"

	"github.com/courseloft/api/app"
)

func main() {
	err := app.SetupAndRunServer()
	if err != nil {
		log.Trace(err)
		panic(err)
	}
}
