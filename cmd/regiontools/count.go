package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/regiontools/internal/duckdb"
	"github.com/inodb/regiontools/internal/region"
	"github.com/inodb/regiontools/internal/signal"
)

func newCountCmd() *cobra.Command {
	var (
		schema         string
		bedGraph       string
		plus           string
		minus          string
		quantification string
		overrideStrand string
		flipMinus      bool
		negateMinus    bool
		minLen         int64
		output         string
	)

	cmd := &cobra.Command{
		Use:   "count <regions>",
		Short: "Quantify bedGraph or bigWig signal over every region",
		Long: `Quantify signal over every region as a raw count, RPK, or the per-base
track. Use --bedgraph for one strand-agnostic source, or --plus and --minus
for paired strand-specific sources. Tracks are saved zero-padded to the
longest region; .npz output also records every row's length. Each signal
file may be bedGraph (optionally gzipped) or bigWig; bigWig input is
recognized by its magic number.`,
		Example: `  regiontools count -s bed6 --bedgraph sig.bedGraph -o counts.npy peaks.bed
  regiontools count --plus pl.bw --minus mn.bw --quant full_track --flip-minus -o tracks.npz tss.bed`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := signal.ParseQuantification(quantification)
			if err != nil {
				return &usageError{err: err}
			}
			override, err := region.ParseStrand(overrideStrand)
			if err != nil {
				return &usageError{err: err}
			}
			if err := checkAnnotationExt(output); err != nil {
				return err
			}

			t, err := loadRegions(args[0], schema)
			if err != nil {
				return err
			}

			var quantifier signal.Quantifier
			switch {
			case bedGraph != "" && plus == "" && minus == "":
				src, err := loadSignal(bedGraph)
				if err != nil {
					return err
				}
				quantifier = signal.NewSingle(src)
			case bedGraph == "" && plus != "" && minus != "":
				plusSrc, err := loadSignal(plus)
				if err != nil {
					return err
				}
				minusSrc, err := loadSignal(minus)
				if err != nil {
					return err
				}
				quantifier = signal.NewPaired(plusSrc, minusSrc)
			default:
				return usagef("give either --bedgraph or both --plus and --minus")
			}

			counter := signal.NewCounter(quantifier, workers())
			counter.SetLogger(logger)

			store := newStore(t)
			opts := signal.Options{
				Quantification: q,
				MinLen:         minLen,
				OverrideStrand: override,
				FlipMinus:      flipMinus,
				NegateMinus:    negateMinus,
			}
			if err := counter.Annotate(store, q.String(), opts); err != nil {
				return err
			}
			return saveAnnotation(store, q.String(), output)
		},
	}

	addSchemaFlag(cmd, &schema)
	cmd.Flags().StringVar(&bedGraph, "bedgraph", "", "Strand-agnostic bedGraph or bigWig signal")
	cmd.Flags().StringVar(&plus, "plus", "", "Plus-strand bedGraph or bigWig signal")
	cmd.Flags().StringVar(&minus, "minus", "", "Minus-strand bedGraph or bigWig signal")
	cmd.Flags().StringVarP(&quantification, "quant", "q", "raw_count", "Quantification: raw_count, RPK, full_track")
	cmd.Flags().StringVar(&overrideStrand, "override-strand", ".", "Read this strand for every region in paired mode: +, - or . (use the region strand)")
	cmd.Flags().BoolVar(&flipMinus, "flip-minus", false, "Reverse full tracks read from the minus source")
	cmd.Flags().BoolVar(&negateMinus, "negate-minus", false, "Multiply values read from the minus source by -1")
	cmd.Flags().Int64Var(&minLen, "min-len", 1, "Reject regions shorter than this")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output .npy or .npz file")
	cmd.MarkFlagRequired("output")

	return cmd
}

// loadSignal loads a bedGraph or bigWig file through the signal cache when
// signal.cache_dir is configured.
func loadSignal(path string) (*signal.BedGraphSource, error) {
	src, err := duckdb.LoadSignalCached(viper.GetString("signal.cache_dir"), path, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded signal",
		zap.String("path", path),
		zap.Strings("chromosomes", src.Chromosomes()))
	return src, nil
}
