package main

import (
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/pyocd/cmsis-pack-manager/pdsc"
	"github.com/pyocd/cmsis-pack-manager/xmlutil"
)

type checkCommand struct{}

func (cmd *checkCommand) Name() string      { return "check" }
func (cmd *checkCommand) Args() string      { return "<pdsc>" }
func (cmd *checkCommand) ShortHelp() string { return "validate a package descriptor's condition graph" }
func (cmd *checkCommand) LongHelp() string {
	return "check parses a single package descriptor and reports every condition\n" +
		"reference that points nowhere, and every condition nothing refers to."
}

func (cmd *checkCommand) Register(fs *flag.FlagSet) {}

func (cmd *checkCommand) Run(env *Env, args []string) error {
	if len(args) != 1 {
		return errors.New("check: exactly one .pdsc path is required")
	}

	p, err := xmlutil.FromPath(pdsc.FromElement, args[0])
	if err != nil {
		return err
	}

	for _, w := range p.Warnings {
		fmt.Fprintf(env.Stderr, "warning: %s\n", w)
	}

	findings := p.CheckConditions()
	for _, f := range findings {
		fmt.Fprintf(env.Stdout, "%s: %s\n", f.Severity, f.Message)
	}

	for _, f := range findings {
		if f.Severity == "error" {
			return errors.New("check: unresolved condition references found")
		}
	}
	return nil
}
