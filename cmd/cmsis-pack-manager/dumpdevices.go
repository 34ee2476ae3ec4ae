package main

import (
	"flag"
	"fmt"

	"github.com/pyocd/cmsis-pack-manager/update"
)

type dumpDevicesCommand struct {
	devicesPath    string
	boardsPath     string
	componentsPath string
}

func (cmd *dumpDevicesCommand) Name() string { return "dump-devices" }
func (cmd *dumpDevicesCommand) Args() string { return "[input]" }
func (cmd *dumpDevicesCommand) ShortHelp() string {
	return "aggregate devices, boards and components from descriptors into JSON"
}
func (cmd *dumpDevicesCommand) LongHelp() string {
	return "dump-devices reads every .pdsc descriptor under input (a directory,\n" +
		"defaulting to the pack store, or a single file) and writes merged\n" +
		"device and board catalogs as JSON."
}

func (cmd *dumpDevicesCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.devicesPath, "d", "devices.json", "write the device catalog here (\"-\" prints to stdout)")
	fs.StringVar(&cmd.boardsPath, "b", "boards.json", "write the board catalog here (\"-\" prints to stdout)")
	fs.StringVar(&cmd.componentsPath, "c", "", "also write the flattened component catalog here")
}

func (cmd *dumpDevicesCommand) Run(env *Env, args []string) error {
	input := env.PackStore
	if len(args) > 0 {
		input = args[0]
	}

	devicesPath := resolveDashToEmpty(cmd.devicesPath)
	boardsPath := resolveDashToEmpty(cmd.boardsPath)
	componentsPath := resolveDashToEmpty(cmd.componentsPath)

	if err := update.DumpCatalog(input, devicesPath, boardsPath, componentsPath); err != nil {
		return err
	}
	fmt.Fprintln(env.Stdout, "catalog written")
	return nil
}

// resolveDashToEmpty maps the "-" flag value onto the empty path
// catalog.DumpDevices/DumpBoards/DumpComponents treat as "print instead
// of writing a file".
func resolveDashToEmpty(path string) string {
	if path == "-" {
		return ""
	}
	return path
}
