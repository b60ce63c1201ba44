package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docpreview <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  export     Export documents as paginated PDF snapshots")
	fmt.Fprintln(w, "  print      Export documents through the browser's print path")
	fmt.Fprintln(w, "  plan       Show how documents split into pages")
	fmt.Fprintln(w, "  doctor     Check browser and environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'docpreview help <command>' for details on a specific command.")
}

// printExportUsage prints usage for export or print.
func printExportUsage(w io.Writer, name string) {
	fmt.Fprintf(w, "Usage: docpreview %s <input>... [flags]\n", name)
	fmt.Fprintln(w)
	if name == cmdPrint {
		fmt.Fprintln(w, "Render documents and save them with the browser's native print-to-PDF.")
	} else {
		fmt.Fprintln(w, "Render documents, capture them and assemble one PDF page per physical page.")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Document YAML file or directory of them")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: current)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-document timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "      --oversampling <n>    Capture scale factor (1-4, default: 2)")
	fmt.Fprintln(w, "      --legacy-trailing-band")
	fmt.Fprintln(w, "                            Keep the blank page after an exact page multiple")
	fmt.Fprintln(w, "      --encoding <s>        Embedded image encoding: png, jpeg")
	fmt.Fprintln(w, "      --jpeg-quality <n>    JPEG quality (1-100)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Assets:")
	fmt.Fprintln(w, "      --style <s>           CSS style name or file path")
	fmt.Fprintln(w, "      --template <s>        Template set name")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom asset directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "      --lang <s>            Document language (default: en)")
	fmt.Fprintln(w, "      --note <s>            Footer note for documents without one")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  DOCPREVIEW_CONFIG, DOCPREVIEW_OUTPUT_DIR, DOCPREVIEW_TIMEOUT,")
	fmt.Fprintln(w, "  DOCPREVIEW_WORKERS, DOCPREVIEW_STYLE, DOCPREVIEW_TEMPLATE,")
	fmt.Fprintln(w, "  DOCPREVIEW_ASSET_PATH, DOCPREVIEW_OVERSAMPLING, DOCPREVIEW_LOG_LEVEL")
}

func printPlanUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docpreview plan <input>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Show the records per page for each document. No browser is started.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --json                Output as JSON")
}

// runHelpCmd prints help for a specific command.
func runHelpCmd(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case cmdExport, cmdPrint:
		printExportUsage(env.Stdout, args[0])
	case cmdPlan:
		printPlanUsage(env.Stdout)
	case cmdDoctor:
		printDoctorUsage(env.Stdout)
	case cmdVersion:
		fmt.Fprintln(env.Stdout, "Usage: docpreview version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case cmdHelp:
		fmt.Fprintln(env.Stdout, "Usage: docpreview help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}

func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docpreview doctor [-c config] [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, sandbox settings, the temp and output directories,")
	fmt.Fprintln(w, "the effective configuration and the built-in assets.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <path>   Config file to check (default: $DOCPREVIEW_CONFIG)")
	fmt.Fprintln(w, "      --json            Output as JSON")
}
