package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/healeycodes/nova/pkg/nova"
	"github.com/healeycodes/nova/pkg/repl"
)

func main() {
	configPath := flag.String("config", "", "YAML file with globals to seed and natives to disable")
	interactive := flag.Bool("repl", false, "start an interactive session")
	version := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *version {
		fmt.Println("nova", nova.VERSION)
		return
	}

	host := nova.Host{Out: os.Stdout}
	if *configPath != "" {
		config, err := nova.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		host, err = config.Host(os.Stdout)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if *interactive {
		fmt.Printf("nova %v, .exit to quit\n", nova.VERSION)
		repl.Start(os.Stdin, os.Stdout, host)
		return
	}

	filename := flag.Arg(0)
	if filename == "" {
		fmt.Fprintln(os.Stderr, "missing file argument")
		os.Exit(1)
	}
	source, err := nova.ReadProgram(filename)
	if err != nil {
		fmt.Fprintln(os.Stderr, "while trying to read:", filename, err)
		os.Exit(1)
	}
	if _, err := nova.RunProgram(filename, source, host); err != nil {
		fmt.Fprintln(os.Stderr, "uncaught error:", err)
		os.Exit(1)
	}
}
