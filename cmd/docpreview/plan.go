package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/Abdul-Razack/docpreview"
)

// planResult is the page plan of one document file.
type planResult struct {
	Input   string `json:"input"`
	Kind    string `json:"kind"`
	Records int    `json:"records"`
	Policy  string `json:"policy"`
	Pages   []int  `json:"pages"` // records per page
}

// runPlanCmd prints how each document splits into pages. No browser is
// started: the plan depends on the record count and policy only.
func runPlanCmd(args []string, env *Environment) int {
	flags, inputs, err := parsePlanFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	results, err := planDocuments(inputs, flags, env)
	if err != nil {
		printError(env.Stderr, err)
		return exitCodeFor(err)
	}

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(results)
		return ExitSuccess
	}
	printPlans(env.Stdout, results)
	return ExitSuccess
}

func planDocuments(inputs []string, flags *planFlags, env *Environment) ([]planResult, error) {
	envCfg := loadEnvConfig()
	cfg, err := resolveConfig(flags.common.config, envCfg)
	if err != nil {
		return nil, err
	}

	files, err := discoverDocuments(inputs)
	if err != nil {
		return nil, err
	}

	now := env.Now()
	results := make([]planResult, 0, len(files))
	for _, path := range files {
		doc, err := loadDocument(path, cfg, now)
		if err != nil {
			return nil, err
		}
		results = append(results, planResult{
			Input:   path,
			Kind:    doc.Kind,
			Records: len(doc.Records),
			Policy:  doc.Policy.String(),
			Pages:   docpreview.PageSizes(len(doc.Records), doc.Policy),
		})
	}
	return results, nil
}

func printPlans(w io.Writer, results []planResult) {
	for _, r := range results {
		fmt.Fprintf(w, "%s: %s, %d records, %d page(s) %v (%s)\n",
			r.Input, r.Kind, r.Records, len(r.Pages), r.Pages, r.Policy)
	}
}
