package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/roomzy/cmd/roomzy/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Register    commands.RegisterCmd    `cmd:"" help:"Create an account"`
		Login       commands.LoginCmd       `cmd:"" help:"Sign in"`
		VerifyEmail commands.VerifyEmailCmd `cmd:"" name:"verify-email" help:"Confirm your email with the code you received"`
		ResendCode  commands.ResendCodeCmd  `cmd:"" name:"resend-code" help:"Send a new verification code"`
		Logout      commands.LogoutCmd      `cmd:"" help:"Sign out"`
		Whoami      commands.WhoamiCmd      `cmd:"" help:"Show the signed in user"`
		Status      commands.StatusCmd      `cmd:"" help:"Show local session and token state"`
		Password    commands.PasswordCmd    `cmd:"" help:"Change or reset your password"`
		Profile     commands.ProfileCmd     `cmd:"" help:"View and edit profiles"`
		Admin       commands.AdminCmd       `cmd:"" help:"Administration"`

		Debug    bool          `help:"Enable debug mode."`
		Config   string        `help:"Path to a YAML config file" type:"path" env:"ROOMZY_CONFIG"`
		APIURL   string        `help:"API base URL" name:"api-url" env:"ROOMZY_API_URL"`
		StateDir string        `help:"Directory holding the session state" type:"path" env:"ROOMZY_STATE_DIR"`
		Timeout  time.Duration `help:"Request timeout" env:"ROOMZY_TIMEOUT"`
		Cache    bool          `help:"Cache GET responses on disk" env:"ROOMZY_CACHE"`
		CacheDir string        `help:"Directory for the response cache" type:"path" env:"ROOMZY_CACHE_DIR"`
		Tracing  bool          `help:"Export traces and metrics over OTLP" env:"ROOMZY_TRACING"`
		Version  kong.VersionFlag
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("roomzy"),
		kong.Description("Roomzy command line client"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{
		Debug:    cli.Debug,
		Version:  version,
		Config:   cli.Config,
		APIURL:   cli.APIURL,
		StateDir: cli.StateDir,
		Timeout:  cli.Timeout,
		Cache:    cli.Cache,
		CacheDir: cli.CacheDir,
		Tracing:  cli.Tracing,
	})
	cmd.FatalIfErrorf(err)
}
