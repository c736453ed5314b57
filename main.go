package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/km-arc/go-mvc/framework/app"
	"github.com/km-arc/go-mvc/framework/config"
	"github.com/km-arc/go-mvc/framework/logging"

	// Components register themselves with the default class path.
	_ "github.com/km-arc/go-mvc/demo/controller"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if err == errUsage {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("invalid arguments")

// files collects repeated -config flags.
type files []string

func (f *files) String() string     { return strings.Join(*f, ",") }
func (f *files) Set(v string) error { *f = append(*f, v); return nil }

func run(ctx context.Context, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("go-mvc", flag.ContinueOnError)
	fs.SetOutput(out)
	var configFiles files
	fs.Var(&configFiles, "config", "configuration file (.env, .properties, .yaml); repeatable. Default: .env, system.properties")
	routes := fs.Bool("routes", false, "print the route table and exit")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return errUsage
	}

	cfg, err := config.Load(configFiles...)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	application, err := app.New(cfg, log, nil)
	if err != nil {
		return err
	}
	if err := application.Boot(); err != nil {
		return err
	}

	if *routes {
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PATH\tBEAN\tHANDLER")
		for _, rt := range application.Mapping().Routes() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", rt.Path, rt.Bean, rt.Handler())
		}
		return tw.Flush()
	}
	return application.Run(ctx)
}
