// Command cosmodrome builds a static website and a Gemini capsule from one
// tree of gemtext sources.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/cosmodrome/cmd/cosmodrome/commands"
	ferrors "git.home.luguber.info/inful/cosmodrome/internal/foundation/errors"
	"git.home.luguber.info/inful/cosmodrome/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var cli commands.CLI
	globals := &commands.Global{Stdout: stdout, Stderr: stderr}

	parser, err := kong.New(&cli,
		kong.Name("cosmodrome"),
		kong.Description("Build a static website and a Gemini capsule from gemtext sources."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Vars{"version": version.String()},
		kong.Bind(globals),
	)
	if err != nil {
		return ferrors.NewCLIErrorAdapter(false, nil).WithOutput(stderr).
			Handle(ferrors.WrapError(err, ferrors.CategoryInternal, "invalid command definition").Build())
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		if !ferrors.IsClassified(err) {
			err = ferrors.WrapError(err, ferrors.CategoryValidation, "invalid arguments").Build()
		}
		return ferrors.NewCLIErrorAdapter(cli.Verbose, globals.Logger).WithOutput(stderr).Handle(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))

	err = kctx.Run(&cli)
	return ferrors.NewCLIErrorAdapter(cli.Verbose, globals.Logger).WithOutput(stderr).Handle(err)
}
