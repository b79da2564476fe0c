package main

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/regiontools/internal/anno"
	"github.com/inodb/regiontools/internal/region"
)

func newPadCmd() *cobra.Command {
	var (
		schema       string
		upstream     int64
		downstream   int64
		ignoreStrand bool
		onInvalid    string
		output       string
	)

	cmd := &cobra.Command{
		Use:   "pad <regions>",
		Short: "Extend or shrink regions on their 5' and 3' sides",
		Long: `Pad every region by --upstream bases on its 5' side and --downstream bases
on its 3' side. Minus-strand regions are padded mirror-wise unless
--ignore-strand is set. Negative amounts shrink. A row that becomes empty
is handled by --on-invalid: raise aborts, fallback keeps the original row,
drop removes it.`,
		Example: `  regiontools pad -s bed6 --upstream 100 --downstream 100 peaks.bed
  regiontools pad --upstream -500 --downstream -500 --on-invalid drop -o core.bed peaks.bed`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := region.ParsePolicy(onInvalid)
			if err != nil {
				return &usageError{err: err}
			}
			t, err := loadRegions(args[0], schema)
			if err != nil {
				return err
			}
			padded, err := t.Pad(upstream, downstream, ignoreStrand, policy)
			if err != nil {
				return err
			}
			if dropped := t.Len() - padded.Len(); dropped > 0 {
				logger.Info("dropped invalid regions", zap.Int("rows", dropped))
			}
			return writeRegions(cmd, padded, output)
		},
	}

	addSchemaFlag(cmd, &schema)
	cmd.Flags().Int64Var(&upstream, "upstream", 0, "Bases added on the 5' side")
	cmd.Flags().Int64Var(&downstream, "downstream", 0, "Bases added on the 3' side")
	cmd.Flags().BoolVar(&ignoreStrand, "ignore-strand", false, "Treat every region as plus strand")
	cmd.Flags().StringVar(&onInvalid, "on-invalid", "raise", "Invalid region policy: raise, fallback, drop")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output region file (default: stdout)")

	return cmd
}

func newSitesCmd() *cobra.Command {
	var (
		schema string
		site   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "sites <regions>",
		Short: "Reduce every region to its TSS or center base",
		Example: `  regiontools sites -s bed6 --site TSS genes.bed
  regiontools sites -s bed3 --site center -o centers.bed peaks.bed`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := region.ParseSiteType(site)
			if err != nil {
				return &usageError{err: err}
			}
			if st == region.SiteMaxAbsSig {
				return usagef("site %s needs a track; use track-sites", st)
			}
			t, err := loadRegions(args[0], schema)
			if err != nil {
				return err
			}
			sites, err := t.Sites(st)
			if err != nil {
				return err
			}
			return writeRegions(cmd, sites, output)
		},
	}

	addSchemaFlag(cmd, &schema)
	cmd.Flags().StringVar(&site, "site", "TSS", "Site type: TSS, center")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output region file (default: stdout)")

	return cmd
}

func newTrackSitesCmd() *cobra.Command {
	var (
		schema string
		track  string
		minus  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "track-sites <regions>",
		Short: "Reduce every region to the base of its strongest track signal",
		Long: `Reduce every region to start + argmax(|track|). With --minus, the plus
(--track) and minus tracks are combined position-wise as
max(|plus|, |minus|) first; both tracks must have the same length per row.`,
		Example: `  regiontools track-sites -s bed6 --track full_track.npz peaks.bed
  regiontools track-sites --track pl.npz --minus mn.npz -o summits.bed peaks.bed`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if track == "" {
				return usagef("--track is required")
			}
			t, err := loadRegions(args[0], schema)
			if err != nil {
				return err
			}
			store := newStore(t)
			if err := store.LoadFromFile("plus", track, anno.KindTrack); err != nil {
				return err
			}

			var sites *region.Table
			if minus == "" {
				sites, err = store.SitesFromTrack("plus", region.SiteMaxAbsSig)
			} else {
				if err := store.LoadFromFile("minus", minus, anno.KindTrack); err != nil {
					return err
				}
				sites, err = store.SitesFromPairedTracks("plus", "minus", region.SiteMaxAbsSig)
			}
			if err != nil {
				return err
			}
			return writeRegions(cmd, sites, output)
		},
	}

	addSchemaFlag(cmd, &schema)
	cmd.Flags().StringVar(&track, "track", "", "Track annotation file (.npy or .npz)")
	cmd.Flags().StringVar(&minus, "minus", "", "Minus-strand track annotation file for paired tracks")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output region file (default: stdout)")

	return cmd
}

func newFilterMotifCmd() *cobra.Command {
	var (
		schema   string
		track    string
		base     int
		minScore float64
		maxScore float64
		output   string
		trackOut string
	)

	cmd := &cobra.Command{
		Use:   "filter-motif <regions>",
		Short: "Keep regions whose motif score at one base lies in a range",
		Long: `Keep the rows whose track value at --base is strictly between --min and
--max. Writes the filtered region file and, with --track-out, the filtered
track annotation.`,
		Example: `  regiontools filter-motif --track scores.GATA1.npy --base 250 --min 5 --max 100 -o bound.bed peaks.bed`,
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if track == "" {
				return usagef("--track is required")
			}
			if trackOut != "" {
				if err := checkAnnotationExt(trackOut); err != nil {
					return err
				}
			}
			t, err := loadRegions(args[0], schema)
			if err != nil {
				return err
			}
			store := newStore(t)
			if err := store.LoadFromFile("score", track, anno.KindTrack); err != nil {
				return err
			}
			mask, err := store.TrackRangeMask("score", base, minScore, maxScore)
			if err != nil {
				return err
			}
			filtered, err := store.Filter(mask)
			if err != nil {
				return err
			}
			logger.Info("filtered regions by motif score",
				zap.Int("kept", filtered.Table().Len()),
				zap.Int("rows", t.Len()))

			if err := writeRegions(cmd, filtered.Table(), output); err != nil {
				return err
			}
			if trackOut != "" {
				return saveAnnotation(filtered, "score", trackOut)
			}
			return nil
		},
	}

	addSchemaFlag(cmd, &schema)
	cmd.Flags().StringVar(&track, "track", "", "Motif score track annotation (.npy or .npz)")
	cmd.Flags().IntVar(&base, "base", 0, "Track position tested in every row; negative counts from the end")
	cmd.Flags().Float64Var(&minScore, "min", math.Inf(-1), "Exclusive lower score bound")
	cmd.Flags().Float64Var(&maxScore, "max", math.Inf(1), "Exclusive upper score bound")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output region file (default: stdout)")
	cmd.Flags().StringVar(&trackOut, "track-out", "", "Output file for the filtered track")

	return cmd
}

func newMergeCmd() *cobra.Command {
	var (
		schema    string
		names     []string
		left      []string
		right     []string
		kind      string
		output    string
		outPrefix string
		ext       string
	)

	cmd := &cobra.Command{
		Use:   "merge <regions-a> <regions-b>",
		Short: "Merge two region files and realign their annotations",
		Long: `Merge two region files of the same schema into one table sorted by
(chrom, start). Every --name is loaded from the matching --left file for
the first table and --right file for the second, realigned into merged
order, and written to <out-prefix>.<name>.<ext>.`,
		Example: `  regiontools merge -s bed6 --name counts --left a.npy --right b.npy -o merged.bed --out-prefix merged a.bed b.bed`,
		Args:    usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(names) != len(left) || len(names) != len(right) {
				return fmt.Errorf("%w: %d names, %d left files, %d right files",
					anno.ErrCardinality, len(names), len(left), len(right))
			}
			k, err := anno.ParseKind(kind)
			if err != nil {
				return &usageError{err: err}
			}
			if ext != "npy" && ext != "npz" {
				return usagef("--ext must be npy or npz, got %q", ext)
			}
			if len(names) > 0 && outPrefix == "" {
				return usagef("--out-prefix is required with --name")
			}

			a, err := loadRegions(args[0], schema)
			if err != nil {
				return err
			}
			b, err := loadRegions(args[1], schema)
			if err != nil {
				return err
			}
			sa, sb := newStore(a), newStore(b)
			for i, name := range names {
				if err := sa.LoadFromFile(name, left[i], k); err != nil {
					return err
				}
				if err := sb.LoadFromFile(name, right[i], k); err != nil {
					return err
				}
			}

			merged, _, err := anno.Merge(sa, sb, names)
			if err != nil {
				return err
			}
			if err := writeRegions(cmd, merged.Table(), output); err != nil {
				return err
			}
			for _, name := range names {
				if err := saveAnnotation(merged, name, outPrefix+"."+name+"."+ext); err != nil {
					return err
				}
			}
			return nil
		},
	}

	addSchemaFlag(cmd, &schema)
	cmd.Flags().StringArrayVar(&names, "name", nil, "Annotation name to carry (repeatable)")
	cmd.Flags().StringArrayVar(&left, "left", nil, "Annotation file of the first table, one per --name")
	cmd.Flags().StringArrayVar(&right, "right", nil, "Annotation file of the second table, one per --name")
	cmd.Flags().StringVar(&kind, "kind", "stat", "Annotation kind: stat, track, mask")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output region file (default: stdout)")
	cmd.Flags().StringVar(&outPrefix, "out-prefix", "", "Prefix of the merged annotation files")
	cmd.Flags().StringVar(&ext, "ext", "npz", "Annotation file type: npy, npz")

	return cmd
}

func newImportListCmd() *cobra.Command {
	var (
		schema string
		output string
	)

	cmd := &cobra.Command{
		Use:   "import-list <regions> <list>",
		Short: "Convert a one-value-per-line list into a stat annotation",
		Long: `Read one numeric value per line and save it as a stat annotation of the
region file. The list must hold exactly one value per region.`,
		Example: `  regiontools import-list -s bed6 -o scores.npy peaks.bed scores.txt`,
		Args:    usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkAnnotationExt(output); err != nil {
				return err
			}
			t, err := loadRegions(args[0], schema)
			if err != nil {
				return err
			}
			values, err := readValueList(args[1])
			if err != nil {
				return err
			}
			store := newStore(t)
			if err := store.LoadFromArray("values", values); err != nil {
				return err
			}
			return saveAnnotation(store, "values", output)
		},
	}

	addSchemaFlag(cmd, &schema)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output .npy or .npz file")
	cmd.MarkFlagRequired("output")

	return cmd
}

// readValueList parses one float per line. Blank lines are skipped.
func readValueList(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open list: %w", err)
	}
	defer f.Close()

	var values []float64
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: invalid value %q", path, line, text)
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read list: %w", err)
	}
	return values, nil
}
