package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/san-kum/nssim/internal/field"
	"github.com/san-kum/nssim/internal/spectral"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const dpi = 150

// vorticityGrid exposes one sample of a field as a plotter.GridXYZ. Columns
// run along x (the first axis), rows along y.
type vorticityGrid struct {
	f      field.Field
	b      int
	coords []float64
}

func (g vorticityGrid) Dims() (c, r int)   { return g.f.N, g.f.N }
func (g vorticityGrid) Z(c, r int) float64 { return g.f.At(g.b, c, r) }
func (g vorticityGrid) X(c int) float64    { return g.coords[c] }
func (g vorticityGrid) Y(r int) float64    { return g.coords[r] }

// Heatmap plots sample b of f with a diverging palette centred on zero.
func Heatmap(f field.Field, b int, title string) (*plot.Plot, error) {
	if b < 0 || b >= f.Batch {
		return nil, fmt.Errorf("export: sample %d out of range [0,%d)", b, f.Batch)
	}

	g := vorticityGrid{f: f, b: b, coords: spectral.Coordinates(f.N)}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	hm := plotter.NewHeatMap(g, moreland.SmoothBlueRed().Palette(255))
	m := f.Select(b).MaxAbs()
	if m == 0 {
		m = 1
	}
	hm.Min, hm.Max = -m, m
	p.Add(hm)

	return p, nil
}

// Series plots y against x as a single line.
func Series(title, xLabel, yLabel string, xs, ys []float64) (*plot.Plot, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("export: %d x values for %d y values", len(xs), len(ys))
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)

	return p, nil
}

// SavePNG renders p at widthIn × heightIn inches.
func SavePNG(p *plot.Plot, widthIn, heightIn float64, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(dpi),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("export: write png: %w", err)
	}
	return bw.Flush()
}

// Snapshots writes one heatmap per record for sample b into dir and
// returns the file paths.
func Snapshots(dir string, snaps []field.Field, times []float64, b int) ([]string, error) {
	paths := make([]string, 0, len(snaps))
	for r, snap := range snaps {
		p, err := Heatmap(snap, b, fmt.Sprintf("vorticity t=%.3f", times[r]))
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, fmt.Sprintf("w_s%03d_r%04d.png", b, r))
		if err := SavePNG(p, 6, 5, path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
