package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/ai"
	"github.com/spigell/resume-ranker/internal/ai/gemini"
	"github.com/spigell/resume-ranker/internal/documents"
	"github.com/spigell/resume-ranker/internal/export"
	"github.com/spigell/resume-ranker/internal/filtering"
	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/roles"
	"github.com/spigell/resume-ranker/internal/scoring"
	"github.com/spigell/resume-ranker/internal/screening"
	"github.com/spigell/resume-ranker/internal/secrets"
	"github.com/spigell/resume-ranker/internal/similarity"
	"github.com/spigell/resume-ranker/internal/textnorm"
)

const (
	PromptPrintRanking        = "Print ranking"
	PromptShowDetails         = "Show candidate details"
	PromptExportCSV           = "Export ranking to CSV"
	PromptDumpJSON            = "Dump full result to JSON file"
	PromptAppendToExcludeFile = "Append ranked resumes to exclude file"
	PromptFilters             = "Show filters"
	PromptExit                = "Exit"
	PromptBack                = "back"
)

var errExit = errors.New("exit requested")

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank resumes from a directory or zip archive against a role",
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("role", "r", "", "role name to screen against. Asked interactively when unset")
	rankCmd.Flags().StringP("input", "i", "", "directory or .zip archive with resumes")
	rankCmd.Flags().StringP("output", "o", export.DefaultCSVFile, "csv file for the ranking")
	rankCmd.Flags().StringP("exclude-file", "e", "", "special file with resumes to exclude. Default is unset.")
	rankCmd.Flags().IntP("workers", "w", 1, "number of resumes scored concurrently")
	rankCmd.Flags().BoolP("auto-approve", "y", false, "do not ask anything, export the ranking and exit")
	rankCmd.Flags().Bool("include-unsupported", false, "report files of unsupported formats as excluded instead of skipping them")

	for _, name := range []string{"input", "output", "exclude-file", "workers", "include-unsupported"} {
		viper.BindPFlag(name, rankCmd.Flags().Lookup(name))
	}
}

// rank is the main command for the cli.
func rank(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-ranker", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	autoApprove := cmd.Flag("auto-approve").Value.String() == "true"

	configured, err := roles.Decode(config.Roles)
	if err != nil {
		logger.Fatal("reading roles from config", zap.Error(err))
	}
	catalog := roles.New(configured, logger)

	role, err := selectRole(catalog, cmd.Flag("role").Value.String(), autoApprove)
	if err != nil {
		logger.Fatal("selecting a role", zap.Error(err), zap.Strings("available roles", catalog.Names()))
	}

	if strings.TrimSpace(config.Input) == "" {
		logger.Fatal("input is required", zap.String("hint", "pass --input or set 'input' in the configuration file"))
	}

	batch, err := documents.Load(ctx, config.Input, documents.LoadOptions{
		IncludeUnsupported: config.IncludeUnsupported,
		Logger:             logger,
	})
	if err != nil {
		logger.Fatal("loading resumes", zap.Error(err))
	}

	logger.Debug("loaded resumes by format", zap.Any("formats", batch.ReportByFormat()))

	filterCfg := &filtering.Config{ExcludeFile: config.ExcludeFile, ExcludeFormats: config.ExcludeFormats}
	steps := filtering.Default()
	batch, filtered, err := filtering.Run(ctx, filterCfg, filtering.Deps{Logger: logger}, steps, batch)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	screener, err := newScreener(ctx, config, logger)
	if err != nil {
		logger.Fatal("preparing the screener", zap.Error(err))
	}

	result, err := screener.Screen(ctx, role, batch.Candidates())
	if err != nil {
		logger.Fatal("screening failed", zap.Error(err), zap.String("role", role.Name))
	}
	result.Excluded = append(filtered, result.Excluded...)

	if err := export.WriteConsole(os.Stdout, result); err != nil {
		logger.Fatal("printing ranking", zap.Error(err))
	}

	if autoApprove {
		if err := exportCSV(logger, config.Output, result); err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		return
	}

	prompt := promptui.Select{
		Label: "What next?",
		Items: []string{PromptExportCSV, PromptPrintRanking, PromptShowDetails, PromptDumpJSON, PromptAppendToExcludeFile, PromptFilters, PromptExit},
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, config, steps, result); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, config *Config, steps []filtering.Filter, result *screening.Result) error {
	switch action {
	case PromptExportCSV:
		return exportCSV(logger, config.Output, result)
	case PromptPrintRanking:
		return export.WriteConsole(os.Stdout, result)
	case PromptShowDetails:
		return showDetails(result)
	case PromptDumpJSON:
		filename, err := export.DumpToTmpFile(result)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(logger, config.ExcludeFile, result)
	case PromptFilters:
		pretty, _ := json.MarshalIndent(filtering.Describe(steps), "", "  ")
		logger.Info(string(pretty))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func selectRole(catalog *roles.Catalog, name string, autoApprove bool) (screening.Role, error) {
	if name = strings.TrimSpace(name); name != "" {
		role, ok := catalog.Find(name)
		if !ok {
			return screening.Role{}, fmt.Errorf("unknown role %q", name)
		}
		return role, nil
	}

	if autoApprove {
		return screening.Role{}, errors.New("--role is required with --auto-approve")
	}

	rolePrompt := promptui.Select{
		Label: "Select the job role",
		Items: catalog.Names(),
	}
	_, selected, err := rolePrompt.Run()
	if err != nil {
		return screening.Role{}, err
	}

	role, _ := catalog.Find(selected)
	return role, nil
}

func showDetails(result *screening.Result) error {
	for {
		items := make([]string, 0, len(result.Ranking)+1)
		for _, e := range result.Ranking {
			items = append(items, fmt.Sprintf("%d %s / %s", e.Rank, e.CandidateID, scoring.Format(e.Score)))
		}

		candidatePrompt := promptui.Select{
			Label: "Choose a resume and press ENTER",
			Items: append(items, PromptBack),
		}

		idx, selected, err := candidatePrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		if err := export.WriteDetail(os.Stdout, result, result.Ranking[idx].CandidateID); err != nil {
			return err
		}
	}
}

func exportCSV(logger *zap.Logger, path string, result *screening.Result) error {
	if path == "" {
		path = export.DefaultCSVFile
	}
	if err := export.CSVFile(path, result.Ranking); err != nil {
		return err
	}
	logger.Info("ranking exported", zap.String("filename", path), zap.Int("count", len(result.Ranking)))
	return nil
}

func appendToExcludeFile(logger *zap.Logger, excludeFile string, result *screening.Result) error {
	if excludeFile == "" {
		logger.Warn("exclude file is not configured", zap.String("hint", "pass --exclude-file"))
		return nil
	}

	excluded, err := documents.GetExcludedDocumentsFromFile(excludeFile)
	if errors.Is(err, os.ErrNotExist) {
		excluded, err = &documents.ExcludedDocuments{}, nil
	}
	if err != nil {
		return err
	}

	scores := make(map[string]string, len(result.Ranking))
	for _, e := range result.Ranking {
		scores[e.CandidateID] = scoring.Format(e.Score)
	}
	excluded.Append(documents.NewExcluded(result.Role.Name, result.Ranking.IDs(), scores))

	if err := excluded.ToFile(excludeFile); err != nil {
		return err
	}

	logger.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("count", len(result.Ranking)))
	return nil
}

func newScreener(ctx context.Context, config *Config, logger *zap.Logger) (*screening.Screener, error) {
	lemmatizer, err := textnorm.LemmatizerByName(config.Normalizer.Lemmatizer)
	if err != nil {
		return nil, err
	}

	reviewer, err := newReviewer(ctx, config.AI, logger)
	if err != nil {
		return nil, fmt.Errorf("building ai reviewer: %w", err)
	}

	return screening.New(screening.Config{
		Workers:   config.Workers,
		ReviewTop: config.AI.Top,
	}, screening.Deps{
		Normalizer: textnorm.New(
			textnorm.WithLemmatizer(lemmatizer),
			textnorm.WithMinTokenLength(config.Normalizer.MinTokenLength),
		),
		Scorer: similarity.NewScorer(
			similarity.WithMaxFeatures(config.Similarity.MaxFeatures),
			similarity.WithLogger(logger),
		),
		Reviewer: reviewer,
		Logger:   logger,
	})
}

func newReviewer(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Reviewer, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != gemini.ProviderName {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
		File:  cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	return gemini.NewReviewer(generator, cfg.Gemini.MaxLogLength, logger), nil
}
