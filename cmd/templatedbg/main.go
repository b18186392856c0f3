// templatedbg evaluates extracted document text against a set of templates
// and prints a per-field diagnostic report: which patterns were tried, which
// matched, and what each field's final value and match method were. It is the
// tool to reach for when a template that should match a document does not.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/invoicevault/template-engine/internal/common"
	"github.com/invoicevault/template-engine/internal/entity"
	"github.com/invoicevault/template-engine/internal/loader"
	"github.com/invoicevault/template-engine/internal/match"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		textPath  = flag.String("text", "", "path to extracted document text (required)")
		tmplDir   = flag.String("templates", "", "directory of template JSON files (optional; builtins always included)")
		filename  = flag.String("filename", "", "original document filename hint (defaults to the text file's name)")
		jsonOut   = flag.String("json", "", "write the full evaluation results as JSON to this path")
		threshold = flag.Float64("threshold", common.DefaultSuccessThreshold, "success threshold for required-field coverage")
		minScore  = flag.Float64("min-score", common.DefaultSuccessThreshold, "minimum score for the best-match verdict")
		verbose   = flag.Bool("v", false, "print every pattern attempt, not just matches")
	)
	flag.Parse()

	if *textPath == "" {
		printError("Error: --text is required\n")
		os.Exit(1)
	}
	if *filename == "" {
		*filename = filepath.Base(*textPath)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	raw, err := os.ReadFile(*textPath)
	if err != nil {
		printError("Error: read text file: %v\n", err)
		os.Exit(1)
	}
	text := string(raw)

	templates := loader.BuiltinTemplates()
	if *tmplDir != "" {
		loaded, err := loadDir(*tmplDir, logger)
		if err != nil {
			printError("Error: load templates: %v\n", err)
			os.Exit(1)
		}
		templates = append(templates, loaded...)
	}

	eval := match.NewEvaluator(match.Config{SuccessThreshold: *threshold}, logger)
	opts := match.Options{Filename: *filename, Logger: logger}

	fmt.Printf("Document: %s (%d bytes of text)\n", *filename, len(text))
	fmt.Printf("Templates under test: %d\n\n", len(templates))

	results := make([]*entity.MatchResult, len(templates))
	for i := range templates {
		results[i] = eval.Evaluate(templates[i], text, opts)
		printReport(&templates[i], results[i], *verbose)
	}

	best, bestResult := eval.SelectBest(templates, text, *minScore, opts)
	if best == nil {
		fmt.Printf("Verdict: no template scored above %.2f\n", *minScore)
	} else {
		fmt.Printf("Verdict: best match is %q (score %.2f, %d/%d fields)\n",
			best.Name, bestResult.MatchScore, bestResult.FieldsMatched, bestResult.FieldsTotal)
	}

	if *jsonOut != "" {
		if err := writeJSON(*jsonOut, templates, results); err != nil {
			printError("Error: write json results: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Full results written to %s\n", *jsonOut)
	}
}

func loadDir(dir string, logger *slog.Logger) ([]entity.Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	ld := loader.New(logger)

	var templates []entity.Template
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		tmpl, err := ld.Load(data)
		if err != nil {
			logger.Warn("skipping invalid template", "file", e.Name(), "error", err)
			continue
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}

func printReport(tmpl *entity.Template, result *entity.MatchResult, verbose bool) {
	status := "NO MATCH"
	if result.Success {
		status = "MATCH"
	}
	fmt.Printf("=== %s [%s] score=%.2f fields=%d/%d\n",
		tmpl.Name, status, result.MatchScore, result.FieldsMatched, result.FieldsTotal)

	fmt.Printf("    markers: score=%.2f\n", result.DebugInfo.MarkerScore)
	for _, m := range result.DebugInfo.MarkerResults {
		mark := "miss"
		if m.Matched {
			mark = "hit"
		}
		req := ""
		if m.Required {
			req = " (required)"
		}
		fmt.Printf("      %-4s %q%s\n", mark, m.Text, req)
	}

	for _, fr := range result.FieldResults {
		if fr.Matched {
			fmt.Printf("    [ok]   %-24s %q via %s\n", fr.FieldName, deref(fr.Value), fr.MatchMethod)
		} else {
			fmt.Printf("    [miss] %-24s\n", fr.FieldName)
		}
		dbg, ok := result.DebugInfo.Fields[fr.FieldName]
		if !ok {
			continue
		}
		if verbose {
			for _, att := range dbg.PatternsTried {
				fmt.Printf("           tried %-22s %s\n", att.Name, att.Pattern)
			}
		}
		for _, found := range dbg.MatchesFound {
			fmt.Printf("           found via %-18s %q\n", found.PatternName, found.Value)
		}
	}

	if len(result.ExtractedData) > 0 {
		keys := make([]string, 0, len(result.ExtractedData))
		for k := range result.ExtractedData {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Println("    extracted:")
		for _, k := range keys {
			fmt.Printf("      %s = %v\n", k, result.ExtractedData[k])
		}
	}
	fmt.Println()
}

func writeJSON(path string, templates []entity.Template, results []*entity.MatchResult) error {
	type reportEntry struct {
		Template string              `json:"template"`
		Result   *entity.MatchResult `json:"result"`
	}
	report := make([]reportEntry, len(results))
	for i := range results {
		report[i] = reportEntry{Template: templates[i].Name, Result: results[i]}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
