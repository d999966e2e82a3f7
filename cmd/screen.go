package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/candidate-lens/internal/explain"
	"github.com/spigell/candidate-lens/internal/filtering"
	"github.com/spigell/candidate-lens/internal/logger"
	"github.com/spigell/candidate-lens/internal/parity"
	"github.com/spigell/candidate-lens/internal/view"
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Evaluate the candidate pool against a job description and browse the results",
	Run: func(cmd *cobra.Command, _ []string) {
		screen(cmd)
	},
}

func init() {
	rootCmd.AddCommand(screenCmd)

	addSubmitFlags(screenCmd)
	screenCmd.Flags().Bool("no-interactive", false, "print the list and every candidate detail instead of the interactive browser")
}

func screen(cmd *cobra.Command) {
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

	logger.Info("starting the candidate-lens", zap.String("version", version))

	s, err := submit(ctx, cmd, config, logger)
	if err != nil {
		logger.Fatal("screening failed", zap.Error(err))
	}

	if len(s.coord.Results()) == 0 {
		logger.Info("exiting", zap.String("reason", "no candidates to show"))
		return
	}

	if noInteractive, _ := cmd.Flags().GetBool("no-interactive"); noInteractive {
		if err := printAll(s, os.Stdout, logger); err != nil {
			logger.Fatal("printing results", zap.Error(err))
		}
		return
	}

	if err := view.WriteParity(os.Stdout, parity.Compute(s.coord.Results(), s.coord.Mode())); err != nil {
		logger.Fatal("printing parity", zap.Error(err))
	}

	browser := view.NewBrowser(s.coord, s.filters, os.Stdout, nil, logger)
	browser.EnableResubmit(ctx, s.query)
	if err := browser.Run(); err != nil {
		logger.Fatal("browsing results", zap.Error(err))
	}
}

// printAll writes the list, the parity summary and the detail of every shown
// candidate.
func printAll(s *submission, w *os.File, logger *zap.Logger) error {
	rows := filtering.Run(s.filters, s.coord.Rows(), logger)
	if err := view.WriteList(w, rows, len(s.coord.Results())); err != nil {
		return err
	}
	fmt.Fprintln(w)

	if err := view.WriteParity(w, parity.Compute(s.coord.Results(), s.coord.Mode())); err != nil {
		return err
	}

	var toggle explain.Toggle
	for _, row := range rows {
		s.coord.SelectIndex(row.Index)
		d, ok := s.coord.Detail(toggle.On())
		if !ok {
			continue
		}
		if err := view.WriteDetail(w, d, &toggle); err != nil {
			return err
		}
	}
	return nil
}
