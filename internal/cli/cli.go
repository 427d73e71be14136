package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Serve  *ServeCommand
	List   *ListCommand
	Show   *ShowCommand
	Add    *AddCommand
	Delete *DeleteCommand
	Export *ExportCommand
	Search *SearchCommand
	Status *StatusCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "travelpins"
	parser.LongDescription = "Pin the places you have been on a map, backed by a local SQLite database."

	cmds := &commands{
		Serve:  &ServeCommand{globals: &globals, version: version},
		List:   &ListCommand{globals: &globals, version: version},
		Show:   &ShowCommand{globals: &globals, version: version},
		Add:    &AddCommand{globals: &globals, version: version},
		Delete: &DeleteCommand{globals: &globals, version: version},
		Export: &ExportCommand{globals: &globals, version: version},
		Search: &SearchCommand{globals: &globals, version: version},
		Status: &StatusCommand{globals: &globals, version: version},
	}

	parser.AddCommand("serve", "Run the HTTP API", "Run the trip and search HTTP API until interrupted.", cmds.Serve)
	parser.AddCommand("list", "List trips", "List all trips, newest start date first.", cmds.List)
	parser.AddCommand("show", "Show one trip", "Print a single trip by id.", cmds.Show)
	parser.AddCommand("add", "Add a trip", "Save a trip from the command line.", cmds.Add)
	parser.AddCommand("delete", "Delete a trip", "Delete a trip by id. Deleting an unknown id succeeds.", cmds.Delete)
	parser.AddCommand("export", "Export all trips", "Write every trip as a JSON export document.", cmds.Export)
	parser.AddCommand("search", "Search places", "Search places through the geocoder and print tagged results.", cmds.Search)
	parser.AddCommand("status", "Show database statistics", "Show the database location, size and trip statistics.", cmds.Status)

	return parser, &globals, cmds
}

// Run is the main entry point for the travelpins CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// --version is valid without a subcommand, which go-flags would reject.
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("travelpins %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
