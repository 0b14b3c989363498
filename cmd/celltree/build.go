package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/TrevorS/celltree"
)

var buildCmd = &cobra.Command{
	Use:   "build <catalog>",
	Short: "Build a cell tree from a point catalog and report its shape",
	Long: `Build reads a catalog of points, one per line, and constructs the cell
tree for the requested separation range.

Columns are x y, then the payload columns, then an optional weight:
  count:  x y [w]
  scalar: x y k [w]
  vector: x y g1 g2 [w]
With --coords sphere, x and y are RA and Dec in degrees.

Example:
  celltree build points.csv --min-sep 1 --max-sep 100 --bin-slop 0.1
  celltree build shear.txt --coords sphere --payload vector --config params.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.Float64("min-sep", 0, "Smallest separation of interest")
	f.Float64("max-sep", 0, "Largest separation of interest (0 = one leaf per point)")
	f.Float64("bin-slop", 1, "Bin slop factor b")
	f.String("split", string(celltree.SplitMean), "Split method: middle, median or mean")
	f.Int("max-top", 0, "Maximum top-level partition depth (0 = unlimited)")
	f.StringVar(&coordSystem, "coords", "flat", "Coordinate system: flat or sphere")
	f.StringVar(&payloadKind, "payload", "count", "Payload: count, scalar or vector")
	rootCmd.AddCommand(buildCmd)
}

// report is what build prints on success.
type report struct {
	Points     int                 `yaml:"points"`
	Coords     string              `yaml:"coords"`
	Payload    string              `yaml:"payload"`
	Thresholds celltree.Thresholds `yaml:"thresholds"`
	Stats      celltree.Stats      `yaml:"stats"`
	Elapsed    string              `yaml:"elapsed"`
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadParams(configPath)
	if err != nil {
		return err
	}
	if err := overrideParams(&cfg, cmd.Flags()); err != nil {
		return err
	}
	cfg.Logger = newLogger()
	if telemetry {
		shutdown, err := setupTelemetry(&cfg, os.Stderr)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				fmt.Fprintln(os.Stderr, "telemetry:", err)
			}
		}()
	}

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer file.Close()

	cat, err := readCatalog(file, payloadKind)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	start := time.Now()
	rep, err := buildReport(cmd.Context(), cat, coordSystem, payloadKind, cfg)
	if err != nil {
		return err
	}
	rep.Elapsed = time.Since(start).Round(time.Millisecond).String()

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	defer enc.Close()
	return enc.Encode(rep)
}

func buildReport(ctx context.Context, cat *catalog, coords, payload string, cfg celltree.Config) (report, error) {
	rep := report{Points: cat.len(), Coords: coords, Payload: payload}
	var err error
	switch coords {
	case "flat":
		var pos []celltree.Flat
		if pos, err = celltree.FlatPositions(cat.x, cat.y); err == nil {
			rep.Thresholds, rep.Stats, err = buildWith(ctx, pos, cat, payload, cfg)
		}
	case "sphere":
		var pos []celltree.Sphere
		if pos, err = celltree.SpherePositions(degrees(cat.x), degrees(cat.y)); err == nil {
			rep.Thresholds, rep.Stats, err = buildWith(ctx, pos, cat, payload, cfg)
		}
	default:
		err = fmt.Errorf("unknown coords %q (want flat or sphere)", coords)
	}
	return rep, err
}

func buildWith[P celltree.Position[P]](ctx context.Context, pos []P, cat *catalog, payload string, cfg celltree.Config) (celltree.Thresholds, celltree.Stats, error) {
	switch payload {
	case "count":
		return summarize(celltree.BuildCounts(ctx, pos, cat.w, cfg))
	case "scalar":
		return summarize(celltree.BuildScalars(ctx, pos, cat.k, cat.w, cfg))
	case "vector":
		return summarize(celltree.BuildVectors(ctx, pos, cat.g1, cat.g2, cat.w, cfg))
	default:
		return celltree.Thresholds{}, celltree.Stats{}, fmt.Errorf("unknown payload %q", payload)
	}
}

func summarize[P celltree.Position[P], V celltree.Payload[V]](tree *celltree.Tree[P, V], err error) (celltree.Thresholds, celltree.Stats, error) {
	if err != nil {
		return celltree.Thresholds{}, celltree.Stats{}, err
	}
	th, stats := tree.Thresholds(), tree.Stats()
	return th, stats, tree.Close()
}

func degrees(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, d := range v {
		out[i] = d * math.Pi / 180
	}
	return out
}
