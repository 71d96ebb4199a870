// cmd/tools/policy-tool/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"content-policy-workers/internal/common/logger"
	"content-policy-workers/internal/models"
	"content-policy-workers/internal/policy/engine"
	"content-policy-workers/internal/policy/lexicon"
	"content-policy-workers/internal/policy/scoring"
	"content-policy-workers/internal/policy/store"
	"content-policy-workers/internal/policy/tiers"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// policyFlags are shared by every subcommand that loads a policy.
type policyFlags struct {
	lexiconPath    string
	tiersPath      string
	approvedCutoff int
	revisionCutoff int
	positiveFloor  int
}

func (p *policyFlags) register(fs *flag.FlagSet) {
	defaults := scoring.DefaultThresholds()
	fs.StringVar(&p.lexiconPath, "lexicon", "", "Path to lexicon YAML (embedded default when empty)")
	fs.StringVar(&p.tiersPath, "tiers", "", "Path to tier table YAML (embedded default when empty)")
	fs.IntVar(&p.approvedCutoff, "approved", defaults.ApprovedCutoff, "Minimum score for approval")
	fs.IntVar(&p.revisionCutoff, "revision", defaults.RevisionCutoff, "Minimum score for needs_revision")
	fs.IntVar(&p.positiveFloor, "positive-floor", engine.DefaultPositiveFloor, "Positive messaging floor (0-10)")
}

func (p *policyFlags) load() (*store.Store, error) {
	return store.New(store.Options{
		LexiconPath: p.lexiconPath,
		TiersPath:   p.tiersPath,
		Thresholds: scoring.Thresholds{
			ApprovedCutoff: p.approvedCutoff,
			RevisionCutoff: p.revisionCutoff,
		},
		PositiveFloor: p.positiveFloor,
	}, logger.NewNoOpLogger())
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		help(stderr)
		return 1
	}

	switch args[0] {
	case "lint":
		return lint(args[1:], stdout, stderr)
	case "eval":
		return eval(args[1:], stdin, stdout, stderr)
	case "dump":
		return dump(args[1:], stdout, stderr)
	case "help":
		help(stdout)
		return 0
	default:
		help(stderr)
		return 1
	}
}

func lint(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("lint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var pf policyFlags
	pf.register(fs)
	if err := fs.Parse(args); err != nil {
		return 1
	}

	s, err := pf.load()
	if err != nil {
		fmt.Fprintf(stderr, "Policy validation failed: %v\n", err)
		return 1
	}

	p := s.Current()
	fmt.Fprintf(stdout, "Lexicon version:    %s\n", p.Lexicon.Version())
	fmt.Fprintf(stdout, "Tier table version: %s\n", p.Tiers.Version())
	fmt.Fprintf(stdout, "Thresholds:         approved >= %d, needs_revision >= %d\n",
		p.Thresholds.ApprovedCutoff, p.Thresholds.RevisionCutoff)
	fmt.Fprintln(stdout, "Policy validation passed.")
	return 0
}

func eval(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var pf policyFlags
	pf.register(fs)
	file := fs.String("file", "-", "Submission JSON file, - for stdin")
	tier := fs.String("tier", "", "Override the submission's targetAgeTier")
	strict := fs.Bool("strict", false, "Exit 2 unless the decision is approved")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	var in io.Reader = stdin
	if *file != "-" {
		f, err := os.Open(*file)
		if err != nil {
			fmt.Fprintf(stderr, "Error opening submission: %v\n", err)
			return 1
		}
		defer f.Close()
		in = f
	}

	var sub models.ContentSubmission
	if err := json.NewDecoder(in).Decode(&sub); err != nil {
		fmt.Fprintf(stderr, "Error decoding submission: %v\n", err)
		return 1
	}
	if *tier != "" {
		sub.TargetAgeTier = models.AgeTier(*tier)
	}

	s, err := pf.load()
	if err != nil {
		fmt.Fprintf(stderr, "Policy validation failed: %v\n", err)
		return 1
	}

	decision, err := engine.New(s, logger.NewNoOpLogger()).Evaluate(context.Background(), &sub)
	if err != nil {
		fmt.Fprintf(stderr, "Evaluation failed: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(decision); err != nil {
		fmt.Fprintf(stderr, "Error writing decision: %v\n", err)
		return 1
	}

	if *strict && decision.Status != models.StatusApproved {
		return 2
	}
	return 0
}

// dump prints an embedded default so it can be copied and edited.
func dump(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	what := fs.String("what", "lexicon", "Which default to print: lexicon or tiers")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	switch *what {
	case "lexicon":
		stdout.Write(lexicon.DefaultBytes())
	case "tiers":
		stdout.Write(tiers.DefaultBytes())
	default:
		fmt.Fprintf(stderr, "Unknown default %q, expected lexicon or tiers\n", *what)
		return 1
	}
	return 0
}

func help(w io.Writer) {
	fmt.Fprintln(w, "Usage: policy-tool <command> [arguments]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  lint   Load and validate lexicon and tier table files")
	fmt.Fprintln(w, "  eval   Evaluate a submission JSON document and print the decision")
	fmt.Fprintln(w, "  dump   Print the embedded default lexicon or tier table")
	fmt.Fprintln(w, "  help   Show this help message")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  policy-tool lint -lexicon configs/policy/lexicon.yaml -tiers configs/policy/tiers.yaml")
	fmt.Fprintln(w, "  policy-tool eval -file submission.json -tier elementary")
	fmt.Fprintln(w, "  policy-tool dump -what tiers > tiers.yaml")
}
