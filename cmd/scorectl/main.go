// Command scorectl prints a student's record and score table from the scores API.
//
//	scorectl [-api http://host:8000] [-timeout 10s] <student-id>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	coreconfig "github.com/examscores/scorebot/core/config"
	"github.com/examscores/scorebot/internal/apiclient"
	"github.com/examscores/scorebot/internal/domain"
)

// Fetcher is the part of the API client scorectl uses.
type Fetcher interface {
	GetStudent(ctx context.Context, id int64) (domain.Student, error)
	ListScores(ctx context.Context, studentID int64) ([]domain.Score, error)
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := coreconfig.Load(path, coreconfig.Options{})
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("scorectl", flag.ContinueOnError)
	fs.SetOutput(out)
	apiURL := fs.String("api", cfg.API.URL, "scores API base URL")
	timeout := fs.Duration("timeout", time.Duration(cfg.API.TimeoutSeconds)*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: scorectl [-api URL] [-timeout D] <student-id>")
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid student id %q", fs.Arg(0))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	return report(ctx, apiclient.New(*apiURL, *timeout), id, out)
}

func report(ctx context.Context, api Fetcher, id int64, out io.Writer) error {
	student, err := api.GetStudent(ctx, id)
	if err != nil {
		return err
	}
	scores, err := api.ListScores(ctx, id)
	if err != nil {
		return err
	}

	color.New(color.FgCyan).Fprintf(out, "\n=== Student #%d: %s %s ===\n", student.ID, student.FirstName, student.LastName)
	if len(scores) == 0 {
		color.New(color.FgYellow).Fprintln(out, "No scores yet.")
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Subject", "Score"})
	total := 0
	for _, s := range scores {
		table.Append([]string{s.Subject, strconv.Itoa(s.Score)})
		total += s.Score
	}
	table.SetFooter([]string{"Total", strconv.Itoa(total)})
	table.Render()
	return nil
}
