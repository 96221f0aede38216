package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-study/internal/ai"
	"github.com/p-n-ai/pai-study/internal/catalog"
	"github.com/p-n-ai/pai-study/internal/generation"
	"github.com/p-n-ai/pai-study/internal/platform/config"
	"github.com/p-n-ai/pai-study/internal/platform/logging"
	"github.com/p-n-ai/pai-study/internal/quiz"
)

type generator interface {
	StreamStudyPlan(ctx context.Context, in generation.StudyPlanInput, onChunk func(string) error) (string, error)
	RequestQuiz(ctx context.Context, in generation.QuizInput) (*quiz.Quiz, error)
}

// app carries what subcommands need. Tests swap the constructors.
type app struct {
	loadCatalog  func(dir string) (*catalog.Catalog, error)
	newRouter    func() (*ai.Router, error)
	newGenerator func() (generator, error)
}

func defaultApp() *app {
	return &app{
		loadCatalog:  catalog.Load,
		newRouter:    newRouterFromEnv,
		newGenerator: newServiceFromEnv,
	}
}

func newRouterFromEnv() (*ai.Router, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logging.Setup(os.Stderr, cfg.Log.Level, "text")

	router, err := ai.NewRouterFromConfig(cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("%w: set STUDY_AI_OPENAI_API_KEY or another provider key", err)
	}
	return router, nil
}

// newServiceFromEnv builds a generation service from STUDY_ environment
// variables. Logs go to stderr so stdout carries only results.
func newServiceFromEnv() (generator, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logging.Setup(os.Stderr, cfg.Log.Level, "text")

	router, err := ai.NewRouterFromConfig(cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("%w: set STUDY_AI_OPENAI_API_KEY or another provider key", err)
	}
	return generation.NewService(generation.ServiceConfig{
		LLM:              router,
		Model:            cfg.AI.Model,
		MaxTokens:        cfg.Generation.MaxTokens,
		Timeout:          cfg.Generation.Timeout,
		DefaultQuestions: cfg.Generation.DefaultQuestions,
		MaxQuestions:     cfg.Generation.MaxQuestions,
	}), nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "studyctl",
		Short:         "Study catalog, plans and practice quizzes",
		Long:          "studyctl lists grades, exams and resources from the study catalog and asks the configured AI provider for study plans and practice quizzes.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("catalog", os.Getenv("STUDY_CATALOG_PATH"), "Directory of catalog YAML files (defaults to the built-in catalog)")

	root.AddCommand(
		a.gradesCmd(),
		a.examsCmd(),
		a.resourcesCmd(),
		a.weightageCmd(),
		a.planCmd(),
		a.quizCmd(),
		a.providersCmd(),
	)
	return root
}

func (a *app) catalogFor(cmd *cobra.Command) (*catalog.Catalog, error) {
	dir, _ := cmd.Flags().GetString("catalog")
	c, err := a.loadCatalog(dir)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return c, nil
}
