package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"promptcanvas/internal/agent"
	"promptcanvas/internal/auth"
	"promptcanvas/internal/config"
	"promptcanvas/internal/history"
	"promptcanvas/internal/logging"
	"promptcanvas/internal/studio"
)

var (
	styleFlag   string
	sizeFlag    string
	qualityFlag string
)

var rootCmd = &cobra.Command{
	Use:   "canvas-cli",
	Short: "Generate images and enhance prompts from the terminal",
	Long: `Canvas CLI sends an image description to the configured agent and prints
the result. Use "generate" for an image URL and "enhance" for a rewritten
prompt with style, size, and quality recommendations.`,
	SilenceUsage: true,
}

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate an image from a description",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGenerate,
}

var enhanceCmd = &cobra.Command{
	Use:   "enhance <prompt>",
	Short: "Rewrite a prompt with style and quality recommendations",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEnhance,
}

func init() {
	for _, cmd := range []*cobra.Command{generateCmd, enhanceCmd} {
		cmd.Flags().StringVar(&styleFlag, "style", "", "Image style ("+strings.Join(agent.Styles, ", ")+")")
		cmd.Flags().StringVar(&sizeFlag, "size", "", "Image size ("+strings.Join(agent.Sizes, ", ")+")")
		cmd.Flags().StringVar(&qualityFlag, "quality", "", "Image quality ("+strings.Join(agent.Qualities, ", ")+")")
	}
	rootCmd.AddCommand(generateCmd, enhanceCmd)
}

func main() {
	logging.Init()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newService() (*studio.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	var backend agent.Backend
	switch cfg.AgentBackend {
	case config.BackendGemini:
		apiKey := cfg.GeminiAPIKey
		if apiKey == "" {
			apiKey, err = auth.GetAPIKey()
			if err != nil {
				return nil, err
			}
		}
		backend, err = agent.NewGeminiBackend(context.Background(), apiKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
	default:
		backend = agent.NewHTTPBackend(cfg.AgentEndpoint, cfg.AgentAPIKey, cfg.AgentTimeout)
	}

	store := history.NewStore(cfg.HistoryFile)
	store.Load()
	return studio.New(backend, store), nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	prompt := strings.Join(args, " ")
	res, err := svc.Generate(context.Background(), prompt, agent.Params{
		Style: styleFlag, Size: sizeFlag, Quality: qualityFlag,
	})
	if err != nil {
		var agentErr *studio.AgentError
		if errors.As(err, &agentErr) {
			log.Error().Str("message", agentErr.Message).Msg("Agent rejected the request")
		}
		return err
	}

	fmt.Println("Image URL:       ", orNA(res.ImageURL))
	fmt.Println("Enhanced prompt: ", orNA(res.EnhancedPrompt))
	fmt.Println("Style:           ", orNA(res.Style))
	if res.GenerationMetadata != "" {
		fmt.Println("Metadata:        ", res.GenerationMetadata)
	}
	return nil
}

func runEnhance(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	prompt := strings.Join(args, " ")
	res, summary, err := svc.Enhance(context.Background(), prompt, agent.Params{
		Style: styleFlag, Size: sizeFlag, Quality: qualityFlag,
	})
	if err != nil {
		return err
	}

	fmt.Println("Enhanced prompt: ", orNA(res.EnhancedPrompt))
	fmt.Println("Style:           ", orNA(res.StyleSuggestion))
	fmt.Println("Size:            ", orNA(res.SizeRecommendation))
	fmt.Println("Quality:         ", orNA(res.QualityNotes))
	if summary != "" {
		fmt.Println("Summary:         ", summary)
	}
	return nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
