package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cutquote-backend/internal/analyses"
	"cutquote-backend/internal/design"
	"cutquote-backend/internal/pricing"
)

const defaultModelPath = "./data/pricing_model.yaml"

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cutquote",
		Short: "Analyse SVG/DXF drawings and price cutting jobs",
		Long: `cutquote reads laser and CNC drawings, splits DXF files into independent
jobs and estimates prices with the linear price model.`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newAnalyzeCommand())
	rootCmd.AddCommand(newPriceCommand())
	return rootCmd
}

func newAnalyzeCommand() *cobra.Command {
	var (
		threshold  float64
		withReport bool
		modelPath  string
		params     pricing.Params
	)

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyse a drawing and print the detected jobs as JSON",
		Example: `  cutquote analyze sign.svg
  cutquote analyze panel.dxf --threshold 80 --report
  cutquote analyze panel.dxf --material acrylic --thickness 3 --cutting-type laser`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var pricer *pricing.Service
			if params.Complete() {
				model, err := pricing.LoadLinearModel(modelPath)
				if err != nil {
					return err
				}
				pricer = pricing.NewService(model)
			}

			svc := analyses.NewService(analyses.NewMemoryRepo(), nil, design.Analyzer{Threshold: threshold}, pricer)
			upload := analyses.Upload{FileName: filepath.Base(args[0]), Data: data}
			analysis, err := svc.Analyze(cmd.Context(), upload, "", params)
			if err != nil {
				return err
			}
			if !withReport {
				analysis.Report = nil
			}
			return writeJSON(cmd.OutOrStdout(), analysisOutput{
				File:   analysis.FileName,
				Format: analysis.Format,
				Jobs:   len(analysis.Items),
				Items:  analysis.Items,
				Report: analysis.Report,
			})
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", design.DefaultClusterThreshold, "DXF clustering distance in mm")
	cmd.Flags().BoolVar(&withReport, "report", false, "include the DXF entity report")
	cmd.Flags().StringVar(&modelPath, "model", defaultModelPath, "price model YAML")
	cmd.Flags().StringVar(&params.Material, "material", "", "material, enables pricing")
	cmd.Flags().Float64Var(&params.ThicknessMM, "thickness", 0, "material thickness in mm")
	cmd.Flags().StringVar(&params.CuttingType, "cutting-type", "", "cutting type (laser, cnc, ...)")
	cmd.Flags().IntVar(&params.Quantity, "quantity", 1, "number of pieces")
	cmd.Flags().BoolVar(&params.RushJob, "rush", false, "rush job")
	return cmd
}

type analysisOutput struct {
	File   string          `json:"file"`
	Format design.Format   `json:"format"`
	Jobs   int             `json:"jobs"`
	Items  []analyses.Item `json:"items"`
	Report *design.Report  `json:"report,omitempty"`
}

func newPriceCommand() *cobra.Command {
	var (
		modelPath string
		job       pricing.Job
	)

	cmd := &cobra.Command{
		Use:     "price",
		Short:   "Price a single job with the linear price model",
		Example: `  cutquote price --material acrylic --thickness 3 --cutting-type laser --width 300 --height 120 --letters 5`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := pricing.LoadLinearModel(modelPath)
			if err != nil {
				return err
			}
			quote, err := pricing.NewService(model).Price(cmd.Context(), job)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), quote)
		},
	}

	f := cmd.Flags()
	f.StringVar(&modelPath, "model", defaultModelPath, "price model YAML")
	f.StringVar(&job.Material, "material", "", "material")
	f.Float64Var(&job.ThicknessMM, "thickness", 0, "material thickness in mm")
	f.StringVar(&job.CuttingType, "cutting-type", "", "cutting type (laser, cnc, ...)")
	f.IntVar(&job.NumLetters, "letters", 0, "number of letters")
	f.IntVar(&job.NumShapes, "shapes", 1, "number of shapes")
	f.IntVar(&job.ComplexityScore, "complexity", 2, "complexity score 1-5")
	f.BoolVar(&job.HasIntricateDetails, "intricate", false, "has intricate details")
	f.Float64Var(&job.WidthMM, "width", 100, "width in mm")
	f.Float64Var(&job.HeightMM, "height", 100, "height in mm")
	f.Float64Var(&job.CuttingTimeMinutes, "minutes", 10, "cutting time in minutes")
	f.IntVar(&job.Quantity, "quantity", 1, "number of pieces")
	f.BoolVar(&job.RushJob, "rush", false, "rush job")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
