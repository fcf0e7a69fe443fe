package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/easycert/cmd/easycert/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		RootCA  commands.RootCACmd  `cmd:"" name:"root-ca" help:"Generate a self-signed root CA"`
		Issue   commands.IssueCmd   `cmd:"" help:"Issue a leaf certificate for a hostname or IP"`
		Inspect commands.InspectCmd `cmd:"" help:"Inspect a PEM certificate"`
		Debug   bool                `help:"Enable debug mode."`
		Version kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("easycert"),
		kong.Description("Issue self-signed root CAs and leaf certificates."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
