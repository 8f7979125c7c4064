package sqlkit

import (
	"context"
	"fmt"

	"github.com/oarkflow/cli/contracts"

	"github.com/oarkflow/sqlkit/merger"
)

type MergeCommand struct {
	Driver IManager
}

func (c *MergeCommand) Signature() string {
	return "merge"
}

func (c *MergeCommand) Description() string {
	return "Merge SQL files, in the given order, into one DML script and one SELECT script."
}

func (c *MergeCommand) Extend() contracts.Extend {
	return contracts.Extend{
		Flags: []contracts.Flag{
			{
				Name:    "manifest",
				Aliases: []string{"m"},
				Usage:   "BCL manifest listing the files to merge",
				Value:   "",
			},
			{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory the merged scripts are written to",
				Value:   "",
			},
			{
				Name:  "header",
				Usage: "First line of the merged DML script",
				Value: "",
			},
			{
				Name:  "dry-run",
				Usage: "Report groups and duplicates without writing files",
				Value: "false",
			},
			{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (table, json)",
				Value:   "table",
			},
		},
	}
}

func (c *MergeCommand) Handle(ctx contracts.Context) error {
	var paths []string
	for i := 0; ; i++ {
		arg := ctx.Argument(i)
		if arg == "" {
			break
		}
		paths = append(paths, arg)
	}
	dir := ctx.Option("output")
	header := ctx.Option("header")
	if manifest := ctx.Option("manifest"); manifest != "" {
		m, err := merger.LoadManifest(manifest)
		if err != nil {
			return err
		}
		paths = append(m.Files, paths...)
		if dir == "" {
			dir = m.Output
		}
		if header == "" {
			header = m.Header
		}
		logger.Info().Msgf("Loaded merge manifest %s with %d file(s)", m.Name, len(m.Files))
	}
	if len(paths) == 0 {
		return fmt.Errorf("please provide the SQL files to merge or a --manifest")
	}
	if dir == "" {
		dir = c.Driver.Config().Merge.OutputDir
	}

	result, err := c.Driver.Merge(context.Background(), paths, header)
	if err != nil {
		return err
	}
	out := c.Driver.Output()
	if ctx.Option("format") == "json" {
		if err := renderJSON(out, result); err != nil {
			return err
		}
	} else {
		renderMerge(out, result)
	}
	if ctx.Option("dry-run") == "true" {
		return nil
	}
	mergedPath, selectPath, err := c.Driver.WriteMerge(result, dir)
	if err != nil {
		return err
	}
	logger.Info().Msgf("Merged script written to %s", mergedPath)
	if selectPath != "" {
		logger.Info().Msgf("Select script written to %s", selectPath)
	}
	return nil
}
