package main

import (
	"flag"
	"fmt"
)

// buildVersion is overridden at link time with -ldflags "-X main.buildVersion=...".
var buildVersion = "dev"

type versionCommand struct{}

func (cmd *versionCommand) Name() string      { return "version" }
func (cmd *versionCommand) Args() string      { return "" }
func (cmd *versionCommand) ShortHelp() string { return "print the build version" }
func (cmd *versionCommand) LongHelp() string  { return "version prints the build version and exits." }

func (cmd *versionCommand) Register(fs *flag.FlagSet) {}

func (cmd *versionCommand) Run(env *Env, args []string) error {
	fmt.Fprintln(env.Stdout, buildVersion)
	return nil
}
