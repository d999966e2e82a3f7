package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/candidate-lens/internal/filtering"
	"github.com/spigell/candidate-lens/internal/logger"
	"github.com/spigell/candidate-lens/internal/view"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Evaluate the candidate pool and write a standalone HTML report",
	Run: func(cmd *cobra.Command, _ []string) {
		report(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	addSubmitFlags(reportCmd)
	reportCmd.Flags().StringP("output", "o", app+"-report.html", "report file, - for stdout")
	reportCmd.Flags().Bool("raw", false, "show raw explanations instead of highlighted ones")
}

func report(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig(viper.GetViper())
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	s, err := submit(ctx, cmd, config, logger)
	if err != nil {
		logger.Fatal("screening failed", zap.Error(err))
	}

	raw, _ := cmd.Flags().GetBool("raw")
	rows := filtering.Run(s.filters, s.coord.Rows(), logger)

	r := view.BuildReport(s.coord, rows, !raw)
	r.Model = s.query.Model
	r.JobDescription = s.query.JobDescription

	output, _ := cmd.Flags().GetString("output")
	if output == "-" {
		if err := view.WriteReport(os.Stdout, r); err != nil {
			logger.Fatal("writing report", zap.Error(err))
		}
		return
	}

	if err := writeReportFile(output, r); err != nil {
		logger.Fatal("writing report", zap.Error(err))
	}

	logger.Info("report written", zap.String("filename", output), zap.Int("candidates", len(r.Entries)))
}

// writeReportFile renders r into path. The file is closed before returning so
// a failed flush is reported.
func writeReportFile(path string, r view.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}

	werr := view.WriteReport(f, r)
	if cerr := f.Close(); cerr != nil {
		cerr = fmt.Errorf("closing report file: %w", cerr)
		return errors.Join(werr, cerr)
	}
	return werr
}
