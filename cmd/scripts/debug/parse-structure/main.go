package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Dhanunjay2704/autostruct/pkg/layout"
	"github.com/jessevdk/go-flags"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
)

func main() {
	log := logger.New()

	var opts struct {
		Format string `short:"f" long:"format" description:"Input format (ascii, json, or yaml); inferred from the file extension when omitted"`
		JSON   bool   `short:"j" long:"json" description:"Print the canonical tree as JSON instead of a listing"`
	}

	args, err := flags.Parse(&opts)
	if err != nil {
		log.Err(err).Fatal("flags parse error")
	}

	if len(args) != 1 {
		fmt.Println("go run ./cmd/scripts/debug/parse-structure <path/to/structure.txt>")
		os.Exit(1)
	}

	format := opts.Format
	if format == "" {
		format, err = layout.FormatFromFilename(args[0])
		if err != nil {
			log.Err(err).Fatal("format inference error")
		}
	}
	format, err = layout.ParseFormat(format)
	if err != nil {
		log.Err(err).Fatal("format error")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Err(err).Fatal("read file error")
	}

	tree, err := layout.Parse(string(data), format)
	if err != nil {
		log.Err(err).Fatal("structure parse error")
	}

	if opts.JSON {
		out, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			log.Err(err).Fatal("marshal error")
		}
		fmt.Println(string(out))
		return
	}

	err = tree.Walk(func(relPath string, node *layout.Node) error {
		indent := strings.Repeat("  ", strings.Count(relPath, "/"))
		name := node.Name
		if node.IsDir() {
			name += "/"
		}
		fmt.Printf("%s%s\n", indent, name)
		return nil
	})
	if err != nil {
		log.Err(err).Fatal("walk error")
	}

	nodes, maxDepth := tree.Stats()
	fmt.Printf("\nEntries: %d\nMax Depth: %d\n", nodes, maxDepth)
}
