package main

import (
	"log"

	"shorty/cmd/api/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
