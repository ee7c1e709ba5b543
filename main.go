package main

import (
	"log"

	"Sobremesa/cmd"
)

func main() {
	log.SetFlags(log.Ltime)
	cmd.Execute()
}
