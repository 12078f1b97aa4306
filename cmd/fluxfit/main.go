package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/mgarnier/fluxfit/internal/config"
	"github.com/mgarnier/fluxfit/internal/dataset"
	"github.com/mgarnier/fluxfit/internal/fitter"
	"github.com/mgarnier/fluxfit/internal/kinetics"
	"github.com/mgarnier/fluxfit/internal/model"
	"github.com/mgarnier/fluxfit/internal/storage"
	"github.com/mgarnier/fluxfit/internal/viz"
)

var (
	dataDir      string
	dataFile     string
	seed         int64
	scalarSD     float64
	mc           bool
	mcIterations int
	configFile   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fluxfit",
		Short: "metabolic flux fitting from time-series data",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", ".fluxfit", "run data directory")

	fitCmd := &cobra.Command{
		Use:   "fit [model]",
		Short: "fit a kinetic model against a dataset",
		Args:  cobra.ExactArgs(1),
		RunE:  runFit,
	}
	fitCmd.Flags().StringVar(&dataFile, "data", "", "dataset file (csv or tsv)")
	fitCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	fitCmd.Flags().Float64Var(&scalarSD, "sd", 0, "single sd broadcast over all measurements")
	fitCmd.Flags().BoolVar(&mc, "mc", true, "run monte carlo sensitivity analysis")
	fitCmd.Flags().IntVar(&mcIterations, "iterations", config.DefaultIterations, "monte carlo iterations")
	fitCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list kinetic model variants",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range kinetics.List() {
				fmt.Println(name)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list fit runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot experimental vs fitted curves",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	viewCmd := &cobra.Command{
		Use:   "view [run_id]",
		Short: "browse fit results interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  viewRun,
	}

	rootCmd.AddCommand(fitCmd, modelsCmd, listCmd, plotCmd, exportCmd, viewCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runFit(cmd *cobra.Command, args []string) error {
	variantName := args[0]

	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	// CLI flags override the config file.
	if !cmd.Flags().Changed("data") && cfg.Data != "" {
		dataFile = cfg.Data
	}
	if !cmd.Flags().Changed("seed") && cfg.Seed != 0 {
		seed = cfg.Seed
	}
	if !cmd.Flags().Changed("sd") && cfg.ScalarSD != 0 {
		scalarSD = cfg.ScalarSD
	}
	if !cmd.Flags().Changed("mc") {
		mc = cfg.MonteCarlo.Enabled
	}
	if !cmd.Flags().Changed("iterations") && cfg.MonteCarlo.Iterations != 0 {
		mcIterations = cfg.MonteCarlo.Iterations
	}
	if dataFile == "" {
		return fmt.Errorf("no dataset given (use --data or the config file)")
	}

	ds, err := dataset.Open(dataFile)
	if err != nil {
		return err
	}

	variant, err := kinetics.Get(variantName)
	if err != nil {
		return err
	}

	m, err := model.New(variantName, ds)
	if err != nil {
		return err
	}

	sds, err := cfg.StandardDevs()
	if err != nil {
		return err
	}

	f, err := fitter.New(m, variant, fitter.Options{
		SDs:      sds,
		ScalarSD: scalarSD,
		Seed:     seed,
	})
	if err != nil {
		return err
	}
	if err := cfg.ApplyOverrides(m); err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("fitting %s against %s...\n", variantName, dataFile)
	start := time.Now()

	result, err := f.Optimize(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("cost: %.6g\n", result.Cost)
	for i, name := range result.Names {
		fmt.Printf("  %s = %.6g\n", name, result.Values[i])
	}

	meta := storage.RunMetadata{
		Model:    variantName,
		Seed:     seed,
		DataFile: dataFile,
		Cost:     result.Cost,
	}
	for i, name := range result.Names {
		meta.Parameters = append(meta.Parameters, storage.ParamEstimate{
			Name:  name,
			Value: result.Values[i],
		})
	}

	if khi2, err := f.ChiSquareTest(result); err != nil {
		fmt.Printf("chi-square test skipped: %v\n", err)
	} else {
		fmt.Println(khi2.Verdict())
		meta.Khi2 = &storage.Khi2Summary{
			Value:        khi2.Khi2,
			Measurements: khi2.Measurements,
			Parameters:   khi2.Parameters,
			DOF:          khi2.DOF,
			PValue:       khi2.PValue,
			Accepted:     khi2.AcceptedAt95,
		}
	}

	if mc {
		fmt.Printf("running monte carlo analysis (%d iterations)...\n", mcIterations)
		stats, err := f.MonteCarlo(context.Background(), result, mcIterations)
		if err != nil {
			return err
		}
		meta.Iterations = stats.Iterations
		for i, ps := range stats.Params {
			meta.Parameters[i].Mean = ps.Mean
			meta.Parameters[i].SD = ps.SD
			meta.Parameters[i].Median = ps.Median
			meta.Parameters[i].LowCI = ps.LowCI
			meta.Parameters[i].HighCI = ps.HighCI
			fmt.Printf("  %s = %.6g (sd %.3g, 95%% CI [%.6g, %.6g])\n",
				ps.Name, ps.Optimal, ps.SD, ps.LowCI, ps.HighCI)
		}
	}

	runID, err := st.Save(meta, &storage.Series{
		Time:         m.TimeVector,
		Names:        m.NameVector,
		Experimental: m.ExperimentalMatrix,
		Simulated:    result.Simulated,
	})
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tCOST\tP-VALUE\tDATA")
	for _, run := range runs {
		pval := "-"
		if run.Khi2 != nil {
			pval = fmt.Sprintf("%.4f", run.Khi2.PValue)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.4g\t%s\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Cost,
			pval,
			run.DataFile,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(series.Time))

	for j, name := range series.Names {
		exp := make([]float64, len(series.Time))
		sim := make([]float64, len(series.Time))
		for i := range series.Time {
			exp[i] = series.Experimental.At(i, j)
			sim[i] = series.Simulated.At(i, j)
		}
		if allNaN(exp) {
			continue
		}

		graph := asciigraph.PlotMany(
			[][]float64{exp, sim},
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s: experimental vs fitted", name)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func viewRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	return viz.Run(meta, series)
}

func allNaN(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}
