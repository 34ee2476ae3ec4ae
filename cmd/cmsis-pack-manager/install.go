package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/pyocd/cmsis-pack-manager/config"
	"github.com/pyocd/cmsis-pack-manager/update"
)

type installCommand struct{}

func (cmd *installCommand) Name() string      { return "install" }
func (cmd *installCommand) Args() string      { return "<pdsc>..." }
func (cmd *installCommand) ShortHelp() string { return "download pack archives named by descriptors" }
func (cmd *installCommand) LongHelp() string {
	return "install reads each given package descriptor and downloads the pack\n" +
		"archive of its latest release into the pack store."
}

func (cmd *installCommand) Register(fs *flag.FlagSet) {}

func (cmd *installCommand) Run(env *Env, args []string) error {
	if len(args) == 0 {
		return errors.New("install: at least one .pdsc path is required")
	}

	cfg, err := config.New(env.PackStore)
	if err != nil {
		return err
	}

	sink := newLogSink(env.Stdout)
	result, err := update.Install(context.Background(), cfg, http.DefaultClient, args, sink)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Stdout, "installed %d archives\n", len(result.Paths))
	for _, f := range result.Failures {
		fmt.Fprintf(env.Stderr, "failed %s: %v\n", f.Job.URI, f.Err)
	}
	return nil
}
