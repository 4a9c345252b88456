package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lucasdeeiroz/runlens/internal/capture"
	"github.com/lucasdeeiroz/runlens/internal/config"
	"github.com/lucasdeeiroz/runlens/internal/logging"
	"github.com/lucasdeeiroz/runlens/internal/ui"
)

func main() {
	execFlag := flag.String("x", "", "Execute a runner command and view its output live")
	followFlag := flag.Bool("f", false, "Follow the file as it grows")
	exportFlag := flag.String("o", "", "Directory for exported logs (default: beside the file)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: runlens [-x command] [-f] [-o dir] <file>\n")
		fmt.Fprintf(os.Stderr, "  -x\tExecute a runner command, capturing its output into <file>\n")
		fmt.Fprintf(os.Stderr, "  -f\tFollow the file as it grows\n")
		fmt.Fprintf(os.Stderr, "  -o\tDirectory for exported logs\n")
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	path := flag.Arg(0)
	log := logging.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if _, err := os.Stat(config.GetConfigPath()); os.IsNotExist(err) {
		// First run: write the defaults so they are discoverable
		if err := config.Save(cfg); err != nil {
			log.WithError(err).Warn("failed to write default config")
		}
	}

	var writer *capture.Writer
	if *execFlag != "" {
		writer, err = capture.Start(*execFlag, path, logging.NewLoggerWithService("capture"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	model, err := ui.NewModel(ui.ModelOptions{
		Path:      path,
		Config:    cfg,
		Log:       log,
		Capture:   writer,
		ExportDir: *exportFlag,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer model.Close()

	if *followFlag {
		model.SetFollowing(true)
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
