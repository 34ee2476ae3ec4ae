package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"

	"github.com/pyocd/cmsis-pack-manager/config"
	"github.com/pyocd/cmsis-pack-manager/progress"
	"github.com/pyocd/cmsis-pack-manager/update"
)

type updateCommand struct {
	vidxList string
}

func (cmd *updateCommand) Name() string      { return "update" }
func (cmd *updateCommand) Args() string      { return "" }
func (cmd *updateCommand) ShortHelp() string { return "crawl vendor indices and download descriptors" }
func (cmd *updateCommand) LongHelp() string {
	return "update crawls every vendor index reachable from the pack store's seed list\n" +
		"and downloads each package descriptor it discovers."
}

func (cmd *updateCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.vidxList, "vidx-list", "", "read vendor-index seeds from this file instead of the pack store's own list")
}

func (cmd *updateCommand) Run(env *Env, args []string) error {
	cfg, err := config.New(env.PackStore)
	if err != nil {
		return err
	}

	sink := newLogSink(env.Stdout)
	ctx := context.Background()

	var result update.Result
	if cmd.vidxList != "" {
		seeds, err := config.ReadVendorIndexListFrom(cmd.vidxList)
		if err != nil {
			return err
		}
		result, err = update.IndexWithSeeds(ctx, cfg, http.DefaultClient, seeds, sink)
		if err != nil {
			return err
		}
	} else {
		result, err = update.Index(ctx, cfg, http.DefaultClient, sink)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(env.Stdout, "fetched %d descriptors\n", len(result.Paths))
	for _, f := range result.Failures {
		fmt.Fprintf(env.Stderr, "failed %s: %v\n", f.Job.URI, f.Err)
	}
	return nil
}

// logSink is a progress.Sink that writes a "resolved N items" line for
// each Size call and a single "." per completed file to an io.Writer, the
// CLI's equivalent of the teacher's plain log.Logger status lines.
type logSink struct {
	w io.Writer
}

func newLogSink(w io.Writer) *logSink { return &logSink{w: w} }

func (s *logSink) Size(n int)            { fmt.Fprintf(s.w, "resolved %d items\n", n) }
func (s *logSink) Progress(int)          {}
func (s *logSink) Complete()             { fmt.Fprint(s.w, ".") }
func (s *logSink) ForFile(string) progress.Sink { return s }
