// Command cmsis-pack-manager is the CLI front end over the core packages:
// crawl vendor indices, download descriptors and archives, and aggregate
// device/board/component catalogs (spec.md §6, "CLI surface").
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pyocd/cmsis-pack-manager/internal/logutil"
)

// programName is threaded through every usage message below instead of
// being repeated as a string literal, so the binary can be renamed in one
// place.
const programName = "cmsis-pack-manager"

// command is the subcommand contract every cmsis-pack-manager verb
// implements, mirroring the teacher's own flag.FlagSet-based dispatcher
// rather than reaching for a third-party CLI framework the rest of this
// module's domain stack has no other use for.
type command interface {
	Name() string
	Args() string
	ShortHelp() string
	LongHelp() string
	Register(*flag.FlagSet)
	Run(env *Env, args []string) error
}

// Env bundles the ambient values every subcommand needs, resolved once in
// main rather than re-derived per command.
type Env struct {
	Stdout, Stderr io.Writer
	PackStore      string
}

func main() {
	c := &Config{
		Args:   os.Args,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	os.Exit(c.Run())
}

// Config specifies one CLI invocation.
type Config struct {
	Args           []string
	Stdout, Stderr io.Writer
}

func (c *Config) Run() (exitCode int) {
	commands := []command{
		&updateCommand{},
		&installCommand{},
		&dumpDevicesCommand{},
		&checkCommand{},
		&versionCommand{},
	}

	errLogger := log.New(c.Stderr, "", 0)

	usage := func() {
		errLogger.Printf("%s manages a local mirror of CMSIS-Pack indices and archives\n", programName)
		errLogger.Println()
		errLogger.Printf("Usage: %s <command>\n", programName)
		errLogger.Println()
		errLogger.Println("Commands:")
		errLogger.Println()
		w := tabwriter.NewWriter(c.Stderr, 0, 4, 2, ' ', 0)
		for _, cmd := range commands {
			fmt.Fprintf(w, "\t%s\t%s\n", cmd.Name(), cmd.ShortHelp())
		}
		w.Flush()
		errLogger.Println()
		errLogger.Printf("Use \"%s help <command>\" for more information about a command.\n", programName)
	}

	cmdName, printCmdHelp, exit := parseArgs(c.Args)
	if exit {
		usage()
		return 1
	}

	for _, cmd := range commands {
		if cmd.Name() != cmdName {
			continue
		}

		fs := flag.NewFlagSet(cmdName, flag.ContinueOnError)
		fs.SetOutput(c.Stderr)
		packStore := fs.String("pack-store", defaultPackStore(), "root of the local pack mirror")
		verbose := fs.Bool("v", false, "enable verbose logging of dropped/best-effort entries")
		cmd.Register(fs)
		resetUsage(errLogger, fs, cmdName, cmd.Args(), cmd.LongHelp())

		if printCmdHelp {
			fs.Usage()
			return 1
		}
		if err := fs.Parse(c.Args[2:]); err != nil {
			return 1
		}
		logutil.Verbose = *verbose

		env := &Env{Stdout: c.Stdout, Stderr: c.Stderr, PackStore: *packStore}
		if err := cmd.Run(env, fs.Args()); err != nil {
			errLogger.Printf("%v\n", err)
			return 1
		}
		return 0
	}

	errLogger.Printf("%s: %s: no such command\n", programName, cmdName)
	usage()
	return 1
}

func resetUsage(logger *log.Logger, fs *flag.FlagSet, name, args, longHelp string) {
	var (
		hasFlags   bool
		flagBlock  bytes.Buffer
		flagWriter = tabwriter.NewWriter(&flagBlock, 0, 4, 2, ' ', 0)
	)
	fs.VisitAll(func(f *flag.Flag) {
		hasFlags = true
		defValue := f.DefValue
		if defValue == "" {
			defValue = "<none>"
		}
		fmt.Fprintf(flagWriter, "\t-%s\t%s (default: %s)\n", f.Name, f.Usage, defValue)
	})
	flagWriter.Flush()
	fs.Usage = func() {
		logger.Printf("Usage: %s %s %s\n", programName, name, args)
		logger.Println()
		logger.Println(strings.TrimSpace(longHelp))
		logger.Println()
		if hasFlags {
			logger.Println("Flags:")
			logger.Println()
			logger.Println(flagBlock.String())
		}
	}
}

func parseArgs(args []string) (cmdName string, printCmdUsage bool, exit bool) {
	isHelpArg := func() bool {
		return strings.Contains(strings.ToLower(args[1]), "help") || strings.ToLower(args[1]) == "-h"
	}

	switch len(args) {
	case 0, 1:
		exit = true
	case 2:
		if isHelpArg() {
			exit = true
		}
		cmdName = args[1]
	default:
		if isHelpArg() {
			cmdName = args[2]
			printCmdUsage = true
		} else {
			cmdName = args[1]
		}
	}
	return cmdName, printCmdUsage, exit
}

func defaultPackStore() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir + "/cmsis-pack-manager"
	}
	return ".cmsis-pack-manager"
}
