package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tecnoloc-diag/config"
	"tecnoloc-diag/formatter"
	"tecnoloc-diag/providers/registry"
	"tecnoloc-diag/services"
)

func newDiagnoseCmd() *cobra.Command {
	var (
		info         services.EquipmentInfo
		imagePath    string
		providerName string
		timeout      time.Duration
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "diagnose DEFECT",
		Short: "Ask the configured model for a diagnosis",
		Long: `Send a defect description (and optionally a photo) to the model selected by
LLM_PROVIDER and print the normalized diagnosis. No manual or history context
is used; provider settings come from the same environment variables (or .env)
as the server.

Examples:
  diagnorm diagnose "engine does not start" --equipment "Generator 150kVA" --model G150
  diagnorm diagnose "oil leak" --equipment Compressor --image leak.jpg -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info.Defect = args[0]
			if imagePath != "" {
				raw, err := os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("failed to read image: %w", err)
				}
				info.ImageBase64 = base64.StdEncoding.EncodeToString(raw)
			}

			cfg, err := config.LoadLLM()
			if err != nil {
				return fmt.Errorf("config load error: %w", err)
			}
			if providerName != "" {
				cfg.LLMProvider = providerName
			}
			if !cmd.Flags().Changed("timeout") {
				timeout = cfg.LLMTimeout
			}
			provider, err := registry.New(registry.FromConfig(cfg), zap.NewNop())
			if err != nil {
				return err
			}
			svc := services.NewDiagnosticService(provider, nil, nil, zap.NewNop(), timeout, 0)

			s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
			s.Writer = cmd.ErrOrStderr()
			s.Suffix = fmt.Sprintf(" Asking %s for a diagnosis...", provider.Name())
			s.Start()
			result, err := svc.Analyze(context.Background(), info)
			s.Stop()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), color.GreenString("✓ Diagnosis ready"))
			return formatter.DisplayResult(cmd.OutOrStdout(), result, outputFormat)
		},
	}

	cmd.Flags().StringVar(&info.Name, "equipment", "", "Equipment name")
	cmd.Flags().StringVar(&info.Brand, "brand", "", "Equipment brand")
	cmd.Flags().StringVar(&info.Model, "model", "", "Equipment model")
	cmd.Flags().StringVarP(&info.Category, "category", "c", "ambos", "Defect category (eletrico, mecanico, ambos)")
	cmd.Flags().StringVar(&imagePath, "image", "", "Path to a photo of the defect")
	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "Model provider (openai, gemini); defaults to LLM_PROVIDER")
	cmd.Flags().DurationVar(&timeout, "timeout", 120*time.Second, "Timeout for the model call (default LLM_TIMEOUT)")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", formatter.FormatHuman, "Output format (human, json, yaml)")
	_ = cmd.MarkFlagRequired("equipment")

	return cmd
}
