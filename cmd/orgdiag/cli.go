package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"orgdiag/internal/gateway/app"
	"orgdiag/internal/gateway/config"
	"orgdiag/internal/llm"
	"orgdiag/internal/project"
	"orgdiag/internal/report"
	"orgdiag/internal/synthesis"
	"orgdiag/internal/wizard"
	"orgdiag/internal/workspace"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(in io.Reader, out io.Writer) *cli.App {
	a := &cli.App{
		Name:      "orgdiag",
		Usage:     "Organizational diagnostic interviews and synthesis",
		Version:   Version,
		Reader:    in,
		Writer:    out,
		ErrWriter: out,
		Commands: []*cli.Command{
			serveCmd(),
			runCmd(),
			seedCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	a.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return a
}

// loadConfig reads .env and the environment, then applies command flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	_ = godotenv.Load()
	args := []string{"-seed", c.String("seed")}
	if c.IsSet("port") {
		args = append(args, "-port", c.String("port"))
	}
	if c.Bool("fake-llm") {
		args = append(args, "-fake-llm")
	}
	return config.Parse(flag.NewFlagSet(c.Command.Name, flag.ContinueOnError), args)
}

func seedFlag() cli.Flag {
	return &cli.StringFlag{Name: "seed", Aliases: []string{"s"}, Usage: "YAML project seed"}
}

func fakeFlag() cli.Flag {
	return &cli.BoolFlag{Name: "fake-llm", Usage: "Use the offline model instead of Gemini"}
}

// serveCmd runs the gateway until interrupted.
func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP gateway",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Aliases: []string{"p"}, Value: ":8081", Usage: "Listen address"},
			seedFlag(),
			fakeFlag(),
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			a, err := app.NewWithConfig(c.Context, cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			errCh := make(chan error, 1)
			go func() { errCh <- a.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			log.Println("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return a.Shutdown(shutdownCtx)
		},
	}
}

// seedCmd prints the default project as a YAML seed.
func seedCmd() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Print the default project seed (YAML)",
		Action: func(c *cli.Context) error {
			raw, err := project.MarshalSeed(project.Default())
			if err != nil {
				return err
			}
			_, err = c.App.Writer.Write(raw)
			return err
		},
	}
}

// runCmd drives the whole wizard in the terminal.
func runCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run interviews and synthesis interactively",
		Flags: []cli.Flag{
			seedFlag(),
			fakeFlag(),
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "md", Usage: "Report format: md|html"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write the report to a file instead of stdout"},
		},
		Action: func(c *cli.Context) error {
			format := strings.ToLower(c.String("format"))
			if format != "md" && format != "html" {
				return fmt.Errorf("unsupported format %q", format)
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			model, err := app.BuildModel(c.Context, cfg.LLM, nil)
			if err != nil {
				return err
			}
			defer model.Close()

			var seed *project.State
			if path := cfg.Workspace.SeedPath; path != "" {
				st, err := project.LoadSeedFile(path)
				if err != nil {
					return err
				}
				seed = &st
			}
			svc, err := workspace.NewService(workspace.Options{Model: model, Seed: seed})
			if err != nil {
				return err
			}
			ctx := c.Context
			if cfg.LLM.Trace {
				ctx = llm.WithPromptHook(ctx, llm.NewTraceHook(nil, 0))
			}
			r := &terminal{svc: svc, in: bufio.NewScanner(c.App.Reader), out: c.App.Writer}
			problem, rep, err := r.run(ctx)
			if err != nil {
				return err
			}
			if rep == nil {
				return nil
			}
			return writeReport(c, format, problem, *rep)
		},
	}
}

func writeReport(c *cli.Context, format, problem string, rep project.Report) error {
	doc := []byte(report.Markdown(problem, rep))
	if format == "html" {
		var err error
		if doc, err = report.HTML("Diagnostic Findings", string(doc)); err != nil {
			return err
		}
	}
	if path := c.String("out"); path != "" {
		if err := os.WriteFile(path, doc, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Report written to %s\n", path)
		return nil
	}
	_, err := c.App.Writer.Write(doc)
	return err
}

// terminal runs one workspace through the wizard on a line-based console.
type terminal struct {
	svc *workspace.Service
	in  *bufio.Scanner
	out io.Writer
}

func (t *terminal) prompt(label string) (string, bool) {
	fmt.Fprint(t.out, label)
	if !t.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(t.in.Text()), true
}

func (t *terminal) run(ctx context.Context) (string, *project.Report, error) {
	v := t.svc.Create()
	id := v.WorkspaceID

	if !v.State.HasProblemStatement() {
		text, _ := t.prompt("Problem statement: ")
		var err error
		if v, err = t.svc.SetProblemStatement(id, text); err != nil {
			return "", nil, err
		}
	}
	if !v.State.HasStakeholders() {
		line, _ := t.prompt("Stakeholders (comma separated): ")
		for _, name := range strings.Split(line, ",") {
			if name = strings.TrimSpace(name); name == "" {
				continue
			}
			var err error
			if v, err = t.svc.AddStakeholder(id, name); err != nil {
				return "", nil, err
			}
		}
	}
	v, err := t.svc.NavigateTo(id, wizard.InterviewHub)
	if err != nil {
		return "", nil, err
	}
	if !v.Moved {
		fmt.Fprintln(t.out, "No stakeholders to interview.")
		return "", nil, nil
	}

	for _, sh := range v.State.Stakeholders {
		if sh.Completed() {
			continue
		}
		if err := t.interview(ctx, id, sh); err != nil {
			return "", nil, err
		}
	}

	v, err = t.svc.OpenSynthesis(ctx, id)
	if !v.Moved {
		fmt.Fprintf(t.out, "Synthesis needs at least %d completed interviews (have %d).\n",
			project.MinCompletedForSynthesis, v.Gates.CompletedCount)
		return "", nil, nil
	}
	if err != nil {
		return "", nil, err
	}
	if v.Synthesis.Status != synthesis.StatusReady || v.Synthesis.Report == nil {
		return "", nil, fmt.Errorf("synthesis ended in state %s", v.Synthesis.Status)
	}
	return v.State.ProblemStatement, v.Synthesis.Report, nil
}

func (t *terminal) interview(ctx context.Context, id string, sh project.Stakeholder) error {
	fmt.Fprintf(t.out, "\n== Interview with %s (/done to finish, /skip to cancel) ==\n", sh.Name)
	v, err := t.svc.StartInterview(ctx, id, sh.ID)
	if err != nil && !isModelFailure(err) {
		return err
	}
	t.showReply(v, err)

	for {
		line, ok := t.prompt("> ")
		switch {
		case !ok || line == "/done":
			_, err := t.svc.FinishInterview(id)
			return err
		case line == "/skip":
			_, err := t.svc.CancelInterview(id)
			return err
		case line == "":
			continue
		}
		v, err := t.svc.SendMessage(ctx, id, line)
		if err != nil && !isModelFailure(err) {
			return err
		}
		t.showReply(v, err)
	}
}

func (t *terminal) showReply(v workspace.View, err error) {
	if err != nil {
		fmt.Fprintf(t.out, "(no reply: %v)\n", err)
		return
	}
	if v.Session == nil || len(v.Session.History) == 0 {
		return
	}
	last := v.Session.History[len(v.Session.History)-1]
	if last.Role == llm.RoleModel {
		fmt.Fprintf(t.out, "Consultant: %s\n", last.Text)
	}
}

func isModelFailure(err error) bool {
	var se *llm.ServiceError
	var pe *synthesis.ParseError
	return errors.As(err, &se) || errors.As(err, &pe)
}
