package realtime

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/nextdepartures/pkg/config"
	"github.com/travigo/nextdepartures/pkg/dataaggregator"
	"github.com/urfave/cli/v2"
)

var configFlag = &cli.StringFlag{
	Name:  "config",
	Usage: "path to the configuration file",
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "realtime",
		Usage: "Reconcile live departures with the static fallback",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the departures tracker until interrupted",
				Flags: []cli.Flag{configFlag},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					reconciler, err := dataaggregator.Setup(cfg)
					if err != nil {
						return err
					}

					ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()

					tracker := Tracker{
						Reconciler:            reconciler,
						DeparturesRefreshRate: cfg.DeparturesInterval(),
						FallbackRefreshRate:   cfg.FallbackInterval(),
					}
					tracker.Run(ctx)

					log.Info().Msg("Departures tracker stopped")

					return nil
				},
			},
			{
				Name:  "once",
				Usage: "reconcile a single line and print the result",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:     "line",
						Usage:    "id of the configured line",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					reconciler, err := dataaggregator.Setup(cfg)
					if err != nil {
						return err
					}

					line := reconciler.GetLine(c.String("line"))
					if line == nil {
						return fmt.Errorf("unknown line %q", c.String("line"))
					}

					ctx := c.Context
					if ctx == nil {
						ctx = context.Background()
					}

					for _, state := range reconciler.RefreshLine(ctx, line) {
						pretty.Println(state)
					}
					for _, message := range reconciler.Board.TrafficMessages(line.ID) {
						pretty.Println(message)
					}

					return nil
				},
			},
		},
	}
}
