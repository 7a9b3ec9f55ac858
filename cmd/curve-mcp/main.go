package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/curve-tools-mcp/internal/curve"
	"github.com/ironsheep/curve-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("curve-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("curve-tools-mcp - MCP server for curve-driven strength schedules")
			fmt.Println()
			fmt.Println("Usage: curve-tools-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  CURVE_MCP_LOG_LEVEL=debug    Enable debug logging")
			fmt.Println("  CURVE_MCP_PRESETS=<file>     Load extra curve presets from a YAML file")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client or node-graph host.")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	debug := os.Getenv("CURVE_MCP_LOG_LEVEL") == "debug"
	if debug {
		log.Printf("Curve MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	presets := curve.NewPresetRegistry()
	if path := os.Getenv("CURVE_MCP_PRESETS"); path != "" {
		if err := presets.LoadFile(path); err != nil {
			log.Fatalf("Preset error: %v", err)
		}
		if debug {
			log.Printf("Loaded presets from %s: %v", path, presets.Names())
		}
	}

	if Version != "dev" {
		server.Version = Version
	}
	srv := server.New(presets)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
