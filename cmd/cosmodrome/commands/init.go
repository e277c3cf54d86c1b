package commands

import (
	"fmt"

	"git.home.luguber.info/inful/cosmodrome/internal/config"
	"git.home.luguber.info/inful/cosmodrome/internal/scaffold"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Path  string `arg:"" optional:"" default:"." help:"Site directory to initialize"`
	Force bool   `help:"Overwrite existing starter files"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(i.Path, root.Config)
	if err != nil {
		return err
	}
	return RunInit(g, cfg, i.Force)
}

// RunInit scaffolds the site described by cfg and prints one line per item.
func RunInit(g *Global, cfg *config.Config, force bool) error {
	out := g.stdout()
	_, _ = fmt.Fprintf(out, "Initializing directory %s\n", cfg.BaseDir)
	items, err := scaffold.Scaffold(cfg, force)
	for _, it := range items {
		_, _ = fmt.Fprintf(out, "  %-24s %-11s %s\n", it.Label, it.Status, it.Path)
	}
	if err != nil {
		_, _ = fmt.Fprintln(out, "Initialization failed")
		return err
	}
	_, _ = fmt.Fprintln(out, "Initialization completed!")
	return nil
}
