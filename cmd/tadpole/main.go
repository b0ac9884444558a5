// Command tadpole runs the tadpole key/value server.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tadpole/tadpole/internal/config"
	"github.com/tadpole/tadpole/internal/server"
)

const version = "tadpole version 1.0.0"

const usage = `Usage:
  tadpole -c <config_path>
  tadpole -v | --version
  tadpole -h | --help
`

const daemonizedEnv = "TADPOLE_DAEMONIZED"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	if len(argv) == 1 && (argv[0] == "-v" || argv[0] == "--version") {
		fmt.Println(version)
		return 0
	}
	if len(argv) == 1 && (argv[0] == "-h" || argv[0] == "--help") {
		fmt.Fprint(os.Stderr, usage)
		return 1
	}
	if len(argv) != 2 || argv[0] != "-c" {
		fmt.Fprint(os.Stderr, usage)
		return 1
	}

	path, err := filepath.Abs(argv[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "tadpole: resolving config path: %v\n", err)
		return 1
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tadpole: %v\n", err)
		return 1
	}

	if cfg.Daemonize && os.Getenv(daemonizedEnv) == "" {
		if err := daemonize(); err != nil {
			fmt.Fprintf(os.Stderr, "tadpole: daemonize: %v\n", err)
			return 1
		}
		return 0
	}

	if cfg.PidFile != "" {
		if err := writePidFile(cfg.PidFile); err != nil {
			fmt.Fprintf(os.Stderr, "tadpole: pidfile: %v\n", err)
			return 1
		}
	}

	srv, err := server.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tadpole: %v\n", err)
		return 1
	}

	installSignalHandlers(srv)

	runErr := srv.Run()
	srv.Shutdown()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "tadpole: %v\n", runErr)
		return 1
	}
	return 0
}

func writePidFile(path string) error {
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644)
}
