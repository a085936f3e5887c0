package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "kanban",
		Usage: "Multi-tenant kanban board API",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
		},
		// Running without a subcommand serves the API.
		Action: serve,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("kanban: %v", err)
	}
}
