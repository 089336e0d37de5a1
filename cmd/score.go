package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sohv/scorj/internal/logger"
	"github.com/sohv/scorj/internal/profile"
	"github.com/sohv/scorj/internal/scoring"
)

const (
	PromptShowReport = "Show full report"
	PromptSaveReport = "Save report to file"
	PromptExit       = "Exit"
)

var errExit = errors.New("exit requested")

var reportPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowReport, PromptSaveReport, PromptExit},
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a resume against a job posting",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("resume", "r", "", "path to the resume profile JSON file")
	scoreCmd.Flags().StringP("job", "J", "", "path to the job profile JSON file")
	scoreCmd.Flags().StringP("output", "o", "", "write the full report to this file")
	scoreCmd.Flags().BoolP("auto-approve", "y", false, "print the summary and exit without the interactive menu")

	_ = scoreCmd.MarkFlagRequired("resume")
	_ = scoreCmd.MarkFlagRequired("job")
}

func score(cmd *cobra.Command) {
	ctx := context.Background()

	zl, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zl.Fatal("getting a config", zap.Error(err))
	}

	zl.Info("starting "+app, zap.String("version", version))

	resume, err := loadResume(cmd.Flag("resume").Value.String())
	if err != nil {
		zl.Fatal("loading resume profile", zap.Error(err))
	}

	job, err := loadJob(cmd.Flag("job").Value.String())
	if err != nil {
		zl.Fatal("loading job profile", zap.Error(err))
	}

	scorer := buildScorer(ctx, config, zl)
	store := buildHistory(config, zl)
	defer store.Close()

	report, err := scorer.Score(ctx, resume, job)
	if err != nil {
		zl.Fatal("scoring failed", zap.Error(err))
	}

	if err := store.Record(ctx, job.Title, report); err != nil {
		zl.Warn("recording scoring run failed", zap.Error(err))
	}

	printSummary(report)

	if output := cmd.Flag("output").Value.String(); output != "" {
		if err := saveReport(report, output); err != nil {
			zl.Fatal("saving report", zap.Error(err))
		}
		zl.Info("report saved", zap.String("filename", output))
	}

	if cmd.Flag("auto-approve").Value.String() == "true" {
		return
	}

	for {
		_, action, err := reportPrompt.Run()
		if err != nil {
			zl.Fatal("exiting", zap.Error(err))
		}

		if err := handleReportAction(action, report, zl); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			zl.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleReportAction(action string, report *scoring.Report, zl *zap.Logger) error {
	switch action {
	case PromptShowReport:
		pretty, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		fmt.Println(string(pretty))
		return nil
	case PromptSaveReport:
		filename := fmt.Sprintf("%s-report-%s.json", app, report.RequestID)
		if err := saveReport(report, filename); err != nil {
			return err
		}
		zl.Info("report saved", zap.String("filename", filename))
		return nil
	case PromptExit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func printSummary(report *scoring.Report) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Final score:\t%d/100\n", report.FinalScore)
	fmt.Fprintf(tw, "Consensus:\t%s\n", report.Consensus.Level)
	if len(report.Consensus.Scores) > 0 {
		for provider, s := range report.Consensus.Scores {
			fmt.Fprintf(tw, "  %s:\t%d\n", provider, s)
		}
	}
	fmt.Fprintln(tw, "\t")
	fmt.Fprintln(tw, "DIMENSION\tSCORE")
	fmt.Fprintln(tw, "---------\t-----")
	fmt.Fprintf(tw, "Skills match\t%.1f%%\n", report.Breakdown.Skills)
	fmt.Fprintf(tw, "Experience relevance\t%.1f\n", report.Breakdown.Experience)
	fmt.Fprintf(tw, "Education\t%.1f\n", report.Breakdown.Education)
	if report.Intent != nil && report.Intent.TotalBonus > 0 {
		fmt.Fprintf(tw, "Intent bonus\t+%.1f\n", report.Intent.TotalBonus)
	}
	_ = tw.Flush()

	if report.Consensus.Qualitative.Summary != "" {
		fmt.Println()
		fmt.Println(report.Consensus.Qualitative.Summary)
	}
	for _, note := range report.Intent.AlignedNotes() {
		fmt.Println("  - " + note)
	}
}

func saveReport(report *scoring.Report, filename string) error {
	pretty, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(filename, pretty, 0o644); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	return nil
}

func loadResume(path string) (*profile.ResumeProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resume file: %w", err)
	}

	var resume profile.ResumeProfile
	if err := json.Unmarshal(data, &resume); err != nil {
		return nil, fmt.Errorf("parse resume file %q: %w", path, err)
	}
	return &resume, nil
}

func loadJob(path string) (*profile.JobProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}

	var job profile.JobProfile
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("parse job file %q: %w", path, err)
	}

	if strings.TrimSpace(job.Title) == "" && strings.TrimSpace(job.Description) == "" {
		return nil, profile.ErrEmptyJob
	}
	return &job, nil
}
