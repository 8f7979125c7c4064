package sqlkit

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oarkflow/cli/contracts"
)

type SplitCommand struct {
	Driver IManager
}

func (c *SplitCommand) Signature() string {
	return "split"
}

func (c *SplitCommand) Description() string {
	return "Split a SQL file into statements and write them as chunk files."
}

func (c *SplitCommand) Extend() contracts.Extend {
	return contracts.Extend{
		Flags: []contracts.Flag{
			{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "Chunking mode (size, count, none)",
				Value:   "",
			},
			{
				Name:    "max-bytes",
				Aliases: []string{"b"},
				Usage:   "Byte budget per chunk in size mode",
				Value:   "",
			},
			{
				Name:    "max-dml",
				Aliases: []string{"n"},
				Usage:   "DML statements per chunk in count mode",
				Value:   "",
			},
			{
				Name:  "size-limit",
				Usage: "Flag count-mode chunks larger than this many bytes",
				Value: "",
			},
			{
				Name:  "header",
				Usage: "Line written at the top of every chunk",
				Value: "",
			},
			{
				Name:  "name",
				Usage: "Chunk name used when no INTO target is found",
				Value: "",
			},
			{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory the chunk files are written to",
				Value:   "",
			},
			{
				Name:  "dry-run",
				Usage: "Report chunks without writing files",
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

func (c *SplitCommand) Handle(ctx contracts.Context) error {
	path := ctx.Argument(0)
	if path == "" {
		return fmt.Errorf("please provide the SQL file to split (use - for stdin)")
	}
	sql, err := readInput(path)
	if err != nil {
		return err
	}
	opts := SplitOptions{
		Mode:     ctx.Option("mode"),
		Header:   ctx.Option("header"),
		Fallback: ctx.Option("name"),
	}
	if opts.Fallback == "" && path != "-" {
		opts.Fallback = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if opts.MaxBytes, err = intOption(ctx, "max-bytes"); err != nil {
		return err
	}
	if opts.MaxDML, err = intOption(ctx, "max-dml"); err != nil {
		return err
	}
	if opts.SizeLimit, err = intOption(ctx, "size-limit"); err != nil {
		return err
	}
	if opts.Mode != "" && opts.Mode != "size" && opts.Mode != "count" && opts.Mode != "none" {
		return fmt.Errorf("unsupported mode: %s", opts.Mode)
	}

	resp, err := c.Driver.Split(context.Background(), sql, opts)
	if err != nil {
		return err
	}

	out := c.Driver.Output()
	if ctx.Option("format") == "json" {
		return renderJSON(out, resp)
	}
	if len(resp.Chunks) == 0 {
		renderStatements(out, resp.Statements)
		return nil
	}
	renderChunks(out, resp)
	if ctx.Option("dry-run") == "true" {
		return nil
	}
	dir := ctx.Option("output")
	if dir == "" {
		dir = c.Driver.Config().Split.OutputDir
	}
	paths, err := c.Driver.WriteChunks(resp, dir)
	if err != nil {
		return err
	}
	logger.Info().Msgf("Wrote %d chunk file(s) to %s", len(paths), dir)
	return nil
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func intOption(ctx contracts.Context, name string) (int, error) {
	v := ctx.Option(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid value for --%s: %s", name, v)
	}
	return n, nil
}
