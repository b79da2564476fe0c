package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/regiontools/internal/motif"
	"github.com/inodb/regiontools/internal/sequence"
)

func newMotifSearchCmd() *cobra.Command {
	var (
		schema          string
		genome          string
		memeFile        string
		strand          string
		modelBackground bool
		header          string
	)

	cmd := &cobra.Command{
		Use:   "motif-search <regions>",
		Short: "Score every MEME motif across every region sequence",
		Long: `Fetch the genome sequence of every region and score each motif of a MEME
file at every base. Each motif produces one track annotation saved as
<header>.<motif>.npy, with window scores placed at the window center.

The background is estimated from the region sequences unless
--model-background is set. motif.background_rc selects whether the minus
strand background counts the reverse-complemented sequences, and
motif.edge_fill (min or nan) fills positions where no window fits.`,
		Example: `  regiontools motif-search -s bed6 --genome hg38.fa --meme jaspar.meme --header scores peaks.bed
  REGIONTOOLS_MOTIF_EDGE_FILL=nan regiontools motif-search --genome hg38.fa --meme m.meme --strand + --header fwd peaks.bed`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if genome == "" || memeFile == "" || header == "" {
				return usagef("--genome, --meme and --header are required")
			}
			st, err := motif.ParseStrand(strand)
			if err != nil {
				return &usageError{err: err}
			}
			fill, err := motif.ParseEdgeFill(viper.GetString("motif.edge_fill"))
			if err != nil {
				return err
			}
			mode := motif.BackgroundForward
			if viper.GetBool("motif.background_rc") {
				mode = motif.BackgroundReverseComplement
			}

			models, err := motif.LoadMEME(memeFile)
			if err != nil {
				return err
			}
			t, err := loadRegions(args[0], schema)
			if err != nil {
				return err
			}
			src, err := sequence.LoadFASTA(genome)
			if err != nil {
				return err
			}
			seqs, err := sequence.RegionSequences(src, t)
			if err != nil {
				return err
			}

			scanner := motif.NewScanner(workers())
			scanner.SetLogger(logger)
			store := newStore(t)
			opts := motif.Options{
				Strand:             st,
				EstimateBackground: !modelBackground,
				BackgroundMode:     mode,
				EdgeFill:           fill,
			}
			for _, m := range models {
				if err := scanner.Annotate(store, m.Name, seqs, m, opts); err != nil {
					return err
				}
				if err := saveAnnotation(store, m.Name, header+"."+m.Name+".npy"); err != nil {
					return err
				}
			}
			logger.Info("motif search done",
				zap.Int("motifs", len(models)),
				zap.Int("rows", t.Len()))
			return nil
		},
	}

	addSchemaFlag(cmd, &schema)
	cmd.Flags().StringVar(&genome, "genome", "", "Genome FASTA (optionally gzipped)")
	cmd.Flags().StringVar(&memeFile, "meme", "", "MEME motif file")
	cmd.Flags().StringVar(&strand, "strand", "both", "Strand to scan: +, -, both")
	cmd.Flags().BoolVar(&modelBackground, "model-background", false, "Use the MEME file background instead of estimating it")
	cmd.Flags().StringVar(&header, "header", "", "Output file prefix")

	return cmd
}

func newOneHotCmd() *cobra.Command {
	var (
		schema string
		genome string
		flat   bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "one-hot <regions>",
		Short: "One-hot encode the genome sequence of fixed-width regions",
		Long: `Fetch the genome sequence of every region and write it one-hot encoded
as an (n, L, 4) float64 npy array, channels in ACGT order. N and other
ambiguity codes encode as all zeros. All regions must have the same width.
With --flat the array is written as an (n, 4L) matrix.`,
		Example: `  regiontools one-hot -s bed6 --genome hg38.fa -o onehot.npy tss_500bp.bed`,
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if genome == "" {
				return usagef("--genome is required")
			}
			t, err := loadRegions(args[0], schema)
			if err != nil {
				return err
			}
			src, err := sequence.LoadFASTA(genome)
			if err != nil {
				return err
			}
			seqs, err := sequence.RegionSequences(src, t)
			if err != nil {
				return err
			}
			enc, err := sequence.OneHot(seqs)
			if err != nil {
				return fmt.Errorf("one-hot encode %s: %w", args[0], err)
			}

			w, closeFn, err := outputFile(cmd, output)
			if err != nil {
				return err
			}
			if err := sequence.WriteOneHot(w, enc, flat); err != nil {
				closeFn()
				return err
			}
			logger.Info("one-hot encoded regions",
				zap.Int("rows", t.Len()),
				zap.Int("width", len(seqs[0])))
			return closeFn()
		},
	}

	addSchemaFlag(cmd, &schema)
	cmd.Flags().StringVar(&genome, "genome", "", "Genome FASTA (optionally gzipped)")
	cmd.Flags().BoolVar(&flat, "flat", false, "Write an (n, 4L) matrix instead of (n, L, 4)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output .npy file")
	cmd.MarkFlagRequired("output")

	return cmd
}
