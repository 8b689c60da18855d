package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"github.com/revmux/revmux/internal/app"
)

// ProvidersCommand returns the CLI command that lists usable providers.
func ProvidersCommand() *cli.Command {
	return &cli.Command{
		Name:        "providers",
		Usage:       "List the providers enabled by the current configuration",
		Description: "A provider is enabled when its API key (or endpoint, for local backends) is configured.",
		Action:      providersAction,
	}
}

func providersAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	enabled := application.Providers.Enabled()
	if len(enabled) == 0 {
		fmt.Println("No providers enabled. Set at least one REVMUX_*_API_KEY (or REVMUX_OLLAMA_ENDPOINT).")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Provider", "Model"})

	for _, name := range enabled {
		adapter, err := application.Providers.Resolve(name)
		if err != nil {
			continue
		}
		t.AppendRow(table.Row{adapter.Name(), adapter.Model()})
	}

	t.Render()
	return nil
}
