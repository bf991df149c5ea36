// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:   "scout",
		Usage:  "Candidate search with feedback-adjusted ranking",
		Flags:  globalFlags(),
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Usage:   "Listen address",
						Value:   ":8000",
						EnvVars: []string{"SCOUT_ADDR"},
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search candidates and print the ranked results",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(searchFlags(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the raw JSON response",
					},
				),
			},
			{
				Name:      "export",
				Usage:     "Search candidates and write the results to an Excel workbook",
				ArgsUsage: "<query>",
				Action:    exportCommand,
				Flags: append(searchFlags(),
					&cli.StringFlag{
						Name:     "out",
						Aliases:  []string{"o"},
						Usage:    "Output .xlsx path",
						Required: true,
					},
				),
			},
			{
				Name:   "feedback",
				Usage:  "Record a vote on a candidate",
				Action: feedbackCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "candidate",
						Aliases:  []string{"c"},
						Usage:    "Candidate id",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "type",
						Aliases:  []string{"t"},
						Usage:    "Vote direction (up, down)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "reason",
						Aliases: []string{"r"},
						Usage:   "Free-text reason, used for tagging",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Print feedback tag statistics",
				Action: statsCommand,
			},
			{
				Name:   "index",
				Usage:  "Embed candidate profiles and professional standards into the vector index",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "candidates",
						Usage: "JSON file with candidate profiles",
					},
					&cli.StringFlag{
						Name:  "standards",
						Usage: "JSON file with professional standards",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents embedded per call",
						Value: 32,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of batches embedded concurrently",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "health",
				Usage:  "Print the health report",
				Action: healthCommand,
			},
		},
	}
}

func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "top-k",
			Aliases: []string{"k"},
			Usage:   "Number of results (1-20)",
			Value:   5,
		},
		&cli.StringFlag{
			Name:  "industry",
			Usage: "Only candidates of this industry",
		},
		&cli.IntFlag{
			Name:  "salary-min",
			Usage: "Minimum monthly salary",
		},
		&cli.IntFlag{
			Name:  "salary-max",
			Usage: "Maximum monthly salary",
		},
		&cli.Float64Flag{
			Name:  "radius",
			Usage: "Only candidates within this many km of the reference location",
		},
	}
}
