package cmd

import (
	"os"
	"strings"

	"github.com/oarkflow/sqlkit"
)

type Config struct {
	ConfigFile string // path to a .json or .bcl config file (e.g., sqlkit.json)
	Options    []sqlkit.ManagerOption
}

// ExtractConfigFromArgs looks for --config or -c in args and returns the
// config path and args with those flags removed so the CLI parser doesn't
// see them.
func ExtractConfigFromArgs(args []string) (string, []string) {
	var cfg string
	out := make([]string, 0, len(args))
	if len(args) > 0 {
		out = append(out, args[0])
	}
	for i := 1; i < len(args); i++ {
		a := args[i]
		if a == "--config" || a == "-c" {
			if i+1 < len(args) {
				cfg = args[i+1]
				i++
			}
			continue
		}
		if strings.HasPrefix(a, "--config=") {
			cfg = strings.TrimPrefix(a, "--config=")
			continue
		}
		if strings.HasPrefix(a, "-c=") {
			cfg = strings.TrimPrefix(a, "-c=")
			continue
		}
		out = append(out, a)
	}
	return cfg, out
}

// Run builds a manager and runs the CLI against os.Args. The config file
// comes from cfg, then --config on the command line, then ./sqlkit.json.
func Run(cfg ...Config) error {
	var config Config
	if len(cfg) > 0 {
		config = cfg[0]
	}
	path, filtered := ExtractConfigFromArgs(os.Args)
	if config.ConfigFile != "" {
		path = config.ConfigFile
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return err
		}
	}
	manager, err := sqlkit.NewManagerFromConfig(path, config.Options...)
	if err != nil {
		return err
	}
	os.Args = filtered
	manager.Run()
	return nil
}
