package api

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/travigo/nextdepartures/pkg/config"
	"github.com/travigo/nextdepartures/pkg/dataaggregator"
	"github.com/travigo/nextdepartures/pkg/realtime"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the departures web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server alongside the departures tracker",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
					&cli.StringFlag{
						Name:  "config",
						Usage: "path to the configuration file",
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

					ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()

					tracker := realtime.Tracker{
						Reconciler:            reconciler,
						DeparturesRefreshRate: cfg.DeparturesInterval(),
						FallbackRefreshRate:   cfg.FallbackInterval(),
					}

					var wg conc.WaitGroup
					wg.Go(func() {
						tracker.Run(ctx)
					})

					webApp := NewApp(reconciler)
					wg.Go(func() {
						<-ctx.Done()
						if err := webApp.Shutdown(); err != nil {
							log.Error().Err(err).Msg("Failed to shut down web server")
						}
					})

					log.Info().Str("listen", c.String("listen")).Msg("Starting web API")
					err = webApp.Listen(c.String("listen"))

					stop()
					wg.Wait()

					return err
				},
			},
		},
	}
}
