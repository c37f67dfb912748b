package types

// CLIArgs represents the command-line arguments shared by the subcommands.
type CLIArgs struct {
	ConfigFile string
	Project    string
	Date       string
	ReportName string
	ReportType []string
	Dir        string
	Addr       string
	Watch      bool
}
