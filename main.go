package main

import (
	"log"

	_ "github.com/treklog/treklog/docs"

	"github.com/treklog/treklog/cmd"
	"github.com/treklog/treklog/config"
)

func main() {
	log.Printf("treklog %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
