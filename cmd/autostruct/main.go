package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Dhanunjay2704/autostruct/pkg/config"
	"github.com/Dhanunjay2704/autostruct/pkg/layout"
	"github.com/Dhanunjay2704/autostruct/pkg/structures"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	structureService := structures.NewService(cfg)

	inputFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "read the structure from `PATH` instead of stdin",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "input format: ascii, json, or yaml (inferred from the file extension, ascii for stdin)",
		},
	}
	baseFlag := &cli.StringFlag{
		Name:     "base",
		Aliases:  []string{"b"},
		Usage:    "absolute `DIR` the structure is rooted at",
		Required: true,
	}

	app := &cli.App{
		Name:        "autostruct",
		Usage:       "CLI to turn structure definitions into directories and files",
		Description: "CLI to turn structure definitions into directories and files",
		Commands: []*cli.Command{
			{
				Name:  "parse",
				Usage: "parse a structure and print its entries",
				Flags: inputFlags,
				Action: func(c *cli.Context) error {
					text, format, err := readInput(c)
					if err != nil {
						return err
					}

					tree, err := structureService.ParseTree(c.Context, structures.ParseOptions{
						Text:   text,
						Format: format,
					})
					if err != nil {
						return err
					}

					err = tree.Walk(func(relPath string, node *layout.Node) error {
						fmt.Println(entryLine(relPath, node.Kind))
						return nil
					})
					if err != nil {
						return err
					}

					nodes, maxDepth := tree.Stats()
					fmt.Printf("\n%d entries, %d levels deep\n", nodes, maxDepth)
					return nil
				},
			},
			{
				Name:  "preview",
				Usage: "show what create would do without touching the disk",
				Flags: append([]cli.Flag{baseFlag}, inputFlags...),
				Action: func(c *cli.Context) error {
					summary, err := runStructure(c, structureService, true)
					if err != nil {
						return err
					}

					for _, outcome := range summary.Results {
						fmt.Println(entryLine(outcome.Path, outcome.Kind))
					}
					fmt.Printf("\nWould create %d entries under %s\n", len(summary.Results), summary.BaseDir)
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "create the structure on disk",
				Flags: append([]cli.Flag{
					baseFlag,
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "report what would happen without touching the disk",
					},
				}, inputFlags...),
				Action: func(c *cli.Context) error {
					summary, err := runStructure(c, structureService, c.Bool("dry-run"))
					if err != nil {
						return err
					}

					for _, outcome := range summary.Results {
						line := fmt.Sprintf("%s: %s", outcome.Status, entryLine(outcome.Path, outcome.Kind))
						if outcome.Error != "" {
							line += " (" + outcome.Error + ")"
						}
						fmt.Println(line)
					}
					fmt.Printf("\n%d created, %d already existed, %d failed\n", summary.Created, summary.AlreadyExisted, summary.Failed)

					if summary.Failed > 0 {
						return errors.Errorf("%d of %d entries failed", summary.Failed, len(summary.Results))
					}
					return nil
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

func runStructure(c *cli.Context, svc *structures.Service, dryRun bool) (*structures.RunSummary, error) {
	text, format, err := readInput(c)
	if err != nil {
		return nil, err
	}

	return svc.Run(c.Context, structures.RunOptions{
		Text:    text,
		Format:  format,
		BaseDir: c.String("base"),
		DryRun:  dryRun,
	})
}

// readInput reads the structure text from --file or stdin and settles the
// format, inferring it from the file extension when possible.
func readInput(c *cli.Context) (string, string, error) {
	path := c.String("file")
	format := c.String("format")

	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
		if format == "" {
			if inferred, ferr := layout.FormatFromFilename(path); ferr == nil {
				format = inferred
			}
		}
	}
	if err != nil {
		return "", "", errors.WithStack(err)
	}

	if format == "" {
		format = layout.FormatASCII
	}
	return string(data), format, nil
}

func entryLine(relPath, kind string) string {
	if kind == layout.KindDirectory {
		return relPath + "/"
	}
	return relPath
}
