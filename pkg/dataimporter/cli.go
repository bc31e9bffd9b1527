package dataimporter

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/nextdepartures/pkg/config"
	"github.com/travigo/nextdepartures/pkg/dataimporter/firstlast"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "data-importer",
		Usage: "Convert third party datasets into the static fallback documents",
		Subcommands: []*cli.Command{
			{
				Name:  "firstlast",
				Usage: "Generate the first/last departure document from a GTFS zip",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "gtfs",
						Usage:    "Path to the GTFS zip",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "output",
						Usage:    "Where to write the first/last JSON document",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "config",
						Usage: "Path to the config file",
					},
					&cli.StringFlag{
						Name:  "date",
						Usage: "Service day as YYYY-MM-DD, defaults to today",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					day := time.Now().In(cfg.Location)
					if c.String("date") != "" {
						day, err = time.ParseInLocation(time.DateOnly, c.String("date"), cfg.Location)
						if err != nil {
							return fmt.Errorf("invalid date: %w", err)
						}
					}

					file, err := os.Open(c.String("gtfs"))
					if err != nil {
						return err
					}
					defer file.Close()

					schedule := &firstlast.Schedule{}
					if err := schedule.ParseFile(file); err != nil {
						return err
					}

					table := schedule.FirstLast(cfg.Lines, day)

					document, err := json.MarshalIndent(table, "", "  ")
					if err != nil {
						return err
					}

					if err := os.WriteFile(c.String("output"), document, 0o644); err != nil {
						return err
					}

					log.Info().
						Str("output", c.String("output")).
						Str("day", day.Format(time.DateOnly)).
						Int("lines", len(table)).
						Msg("Wrote first/last document")

					return nil
				},
			},
		},
	}
}
