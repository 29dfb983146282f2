package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

const (
	configKey = "config"
	itersKey  = "iters"
)

func main() {
	cmd := &cli.Command{
		Name:  "reactivity",
		Usage: "Exercise the reactive engine",
		Commands: []*cli.Command{
			{
				Name:  "bench",
				Usage: "Measure propagation through chains of computed values",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  configKey,
						Usage: "YAML scenario file",
					},
					&cli.UintFlag{
						Name:  itersKey,
						Usage: "Writes per chain shape, overrides the scenario",
					},
				},
				Action: runBench,
			},
			{
				Name:   "graph",
				Usage:  "Print the dependency store of a small todo list model",
				Action: runGraph,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
