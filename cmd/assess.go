package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/app"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/config"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/integrity"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/screen"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/screens/assessment"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/screens/topic"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/screens/welcome"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/session"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/tui"
)

var assessCmd = &cobra.Command{
	Use:   "assess [topic]",
	Short: "Take a proctored assessment in the terminal",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAssess,
}

func init() {
	addAssessFlags(assessCmd)
}

func addAssessFlags(cmd *cobra.Command) {
	cmd.Flags().String("log-file", "", "Write logs to this file while the terminal UI runs")
}

// runAssess opens the store, builds the engine, and launches the TUI.
func runAssess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// The UI owns the terminal; logs go to a file or nowhere.
	logPath, _ := cmd.Flags().GetString("log-file")
	var logOut io.Writer = io.Discard
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	log := config.NewLogger(cfg.Log, logOut)
	slog.SetDefault(log)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	eng, err := buildEngine(ctx, cfg, st, nil, log)
	if err != nil {
		return err
	}
	defer eng.Close()

	sink, closeSink, err := buildSink(ctx, cfg.Results, st, nil, log)
	if err != nil {
		return err
	}
	defer closeSink()

	newAssessment := func(t string) (screen.Screen, error) {
		env := tui.NewEnvironment()
		ctrl, err := session.New(eng.composer, cfg.Session,
			session.WithEnvironment(env),
			session.WithSink(sink),
			session.WithLogger(log))
		if err != nil {
			return nil, err
		}
		mon := integrity.NewMonitor(ctrl, cfg.Integrity, integrity.WithLogger(log))
		var opts []assessment.Option
		if p := cfg.Integrity; p.ProbeInterval > 0 {
			probe := integrity.NewProbe(tui.TracerDetector{}, p.ProbeInterval, p.ProbeCooldown)
			opts = append(opts, assessment.WithProbe(probe))
		}
		return assessment.New(ctx, ctrl, mon, env, t, opts...), nil
	}

	initial := ""
	if len(args) > 0 {
		initial = args[0]
	}
	return app.Run(welcome.New(func() screen.Screen {
		return topic.New(newAssessment, initial)
	}))
}
