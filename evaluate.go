package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fmuoria/talent-screening-agent/internal/agent"
	"github.com/fmuoria/talent-screening-agent/internal/config"
	"github.com/fmuoria/talent-screening-agent/internal/export"
	"github.com/fmuoria/talent-screening-agent/internal/ingestion"
	"github.com/fmuoria/talent-screening-agent/internal/models"
	"github.com/fmuoria/talent-screening-agent/internal/report"
	"github.com/fmuoria/talent-screening-agent/internal/session"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [resume files...]",
	Short: "Evaluate resumes and print the candidate ranking",
	Long: "Evaluate resumes given as files, under an S3 prefix or attached to Gmail messages, " +
		"optionally matching them against a job description, and print each evaluation followed by the ranking.",
	RunE: runEvaluate,
}

type evaluateOptions struct {
	jdFile       string
	s3Prefix     string
	gmailSubject string
	reportsDir   string
	xlsxPath     string
}

var evalOpts evaluateOptions

func init() {
	evaluateCmd.Flags().StringVar(&evalOpts.jdFile, "jd", "", "Job description file (PDF, DOCX or TXT)")
	evaluateCmd.Flags().StringVar(&evalOpts.s3Prefix, "s3-prefix", "", "Also evaluate resumes under this prefix of the configured S3 bucket")
	evaluateCmd.Flags().StringVar(&evalOpts.gmailSubject, "gmail-subject", "", "Also evaluate resumes attached to Gmail messages with this subject")
	evaluateCmd.Flags().StringVar(&evalOpts.reportsDir, "reports-dir", "", "Write a PDF report per candidate into this directory")
	evaluateCmd.Flags().StringVar(&evalOpts.xlsxPath, "xlsx", "", "Write the ranking dashboard to this Excel file")

	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	screeningAgent, cleanup, err := newAgent(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	docs, err := collectDocuments(ctx, cfg, evalOpts, args)
	if err != nil {
		return err
	}

	return evaluate(ctx, cmd.OutOrStdout(), screeningAgent, evalOpts, docs)
}

// collectDocuments gathers resumes from the command line and the optional remote sources
func collectDocuments(ctx context.Context, cfg *config.Config, opts evaluateOptions, paths []string) ([]ingestion.Document, error) {
	docs := make([]ingestion.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := ingestion.LoadDocument(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if opts.s3Prefix != "" {
		src, err := ingestion.NewS3Source(ctx, cfg.S3Options(opts.s3Prefix))
		if err != nil {
			return nil, err
		}
		remote, err := src.Documents(ctx)
		if err != nil {
			return nil, err
		}
		docs = append(docs, remote...)
	}

	if opts.gmailSubject != "" {
		handler, err := ingestion.NewGmailHandler(ctx, cfg.GmailCredentialsPath, cfg.GmailTokenPath, cfg.UploadsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gmail handler: %w", err)
		}
		files := ingestion.NewFileHandler(cfg.UploadsDir)
		if err := files.ClearUploads(); err != nil {
			return nil, fmt.Errorf("failed to clear uploads: %w", err)
		}
		if _, err := handler.FetchAttachments(ctx, opts.gmailSubject); err != nil {
			return nil, fmt.Errorf("failed to fetch Gmail attachments: %w", err)
		}
		fetched, err := files.Documents(ctx)
		if err != nil {
			return nil, err
		}
		docs = append(docs, fetched...)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no resumes given: pass files, --s3-prefix or --gmail-subject")
	}
	return docs, nil
}

// evaluate runs one screening session over docs and writes the results to w
func evaluate(ctx context.Context, w io.Writer, screeningAgent *agent.ScreeningAgent, opts evaluateOptions, docs []ingestion.Document) error {
	sess := session.New()

	if opts.jdFile != "" {
		doc, err := ingestion.LoadDocument(opts.jdFile)
		if err != nil {
			return err
		}
		jd, err := screeningAgent.LoadJobDescription(sess, doc)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "JD Skills Identified: %s\n\n", joinOrNone(jd.Skills))
	}

	batch, err := screeningAgent.ProcessDocuments(ctx, sess, docs)
	if err != nil {
		return err
	}

	renderer := report.NewPDFRenderer()
	if opts.reportsDir != "" {
		if err := os.MkdirAll(opts.reportsDir, 0755); err != nil {
			return fmt.Errorf("failed to create reports directory: %w", err)
		}
	}

	for _, result := range batch.Evaluations {
		printEvaluation(w, result)

		if opts.reportsDir != "" {
			pdf, err := renderer.Render(result.ReportFields())
			if err != nil {
				return err
			}
			path := filepath.Join(opts.reportsDir, report.FileName(result.Name))
			if err := os.WriteFile(path, pdf, 0644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			fmt.Fprintf(w, "Report: %s\n", path)
		}
		fmt.Fprintln(w)
	}

	for _, skipped := range batch.Skipped {
		fmt.Fprintf(w, "Skipped %s: %s\n", skipped.Name, skipped.Reason)
	}
	if len(batch.Skipped) > 0 {
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Candidate Ranking")
	for _, c := range sess.Ranked() {
		fmt.Fprintln(w, formatRanked(c))
	}

	if opts.xlsxPath != "" {
		path, err := export.ExportToExcel(export.NewDashboard(sess, time.Now()), opts.xlsxPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\nDashboard: %s\n", path)
	}

	return nil
}

func printEvaluation(w io.Writer, r models.EvaluationResult) {
	fmt.Fprintln(w, r.Name)
	fmt.Fprintf(w, "Score: %d/100\n", r.Score)
	fmt.Fprintf(w, "Skill Coverage: %d%%\n", r.Coverage)
	if r.JDMatch != nil {
		fmt.Fprintf(w, "JD Match: %d%%\n", *r.JDMatch)
		fmt.Fprintf(w, "Missing JD Skills: %s\n", joinOrNone(r.MissingFromJD))
	}
	fmt.Fprintf(w, "Risk Flags: %s\n", joinOrNone(r.Risks))
	fmt.Fprintf(w, "Decision: %s\n", r.Decision)
}

func formatRanked(c models.RankedCandidate) string {
	return fmt.Sprintf("Rank %d - %s (Score: %d, Decision: %s)", c.Rank, c.Name, c.Score, c.Decision)
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}
