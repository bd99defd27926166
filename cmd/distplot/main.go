package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"padic-distributions/dist"
	"padic-distributions/padic"
	"padic-distributions/sigma0"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

type profileReport struct {
	P          int64 `json:"p"`
	K          int   `json:"k"`
	PrecCap    int   `json:"prec_cap"`
	Moments    int   `json:"moments"`
	Ordp       int   `json:"ordp"`
	Valuation  int   `json:"valuation"`
	Diagonal   int   `json:"diagonal_valuation"`
	SolveSteps []int `json:"solve_relative_precisions"`
	OrbitVals  []int `json:"orbit_valuations"`
}

// ------------------------- plotting: go-echarts HTML -------------------------

func toLineItems(vals []int) []opts.LineData {
	out := make([]opts.LineData, len(vals))
	for i, v := range vals {
		out[i] = opts.LineData{Value: v}
	}
	return out
}

func newProfileChart(title, series string, vals []int) *charts.Line {
	labels := make([]string, len(vals))
	for i := range vals {
		labels[i] = fmt.Sprintf("%d", i)
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "500px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	line.SetXAxis(labels).
		AddSeries(series, toLineItems(vals)).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}))
	return line
}

func saveJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// momentValuations reads the per-moment p-adic valuations, clipping the
// infinite one to clip so the chart stays readable.
func momentValuations(v dist.Distribution, clip int) []int {
	n := v.PrecisionRelative()
	out := make([]int, n)
	for i := 0; i < n; i++ {
		m, err := v.Moment(i)
		if err != nil {
			log.Fatalf("moment %d: %v", i, err)
		}
		val := padic.RatValuation(m, v.Params().P)
		if val > clip {
			val = clip
		}
		out[i] = val
	}
	return out
}

func main() {
	pFlag := flag.Int64("p", 7, "prime p")
	kFlag := flag.Int("k", 0, "weight k")
	capFlag := flag.Int("cap", 10, "precision cap")
	mFlag := flag.Int("moments", 8, "number of stored moments")
	iters := flag.Int("iters", 6, "iterations of the solve/act cycle")
	label := flag.String("label", "distplot", "seed label for the sampled distribution")
	outDir := flag.String("out", "Measure_Reports", "output directory for reports")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("mkdir: %v", err)
	}

	par, err := dist.NewParams(*pFlag, *kFlag, *capFlag)
	if err != nil {
		log.Fatalf("params: %v", err)
	}
	v, err := dist.RandomDistribution(par, *label, *mFlag)
	if err != nil {
		log.Fatalf("sample: %v", err)
	}

	rep := profileReport{
		P:         par.P,
		K:         par.K,
		PrecCap:   par.PrecCap,
		Moments:   v.PrecisionRelative(),
		Ordp:      v.Ordp(),
		Valuation: v.Valuation(),
		Diagonal:  v.DiagonalValuation(),
	}

	// precision decay under iterated solving of mu|Delta = nu
	cur := v.Clone()
	rep.SolveSteps = append(rep.SolveSteps, cur.PrecisionRelative())
	for i := 0; i < *iters; i++ {
		zeroed, err := zeroFirstMoment(cur)
		if err != nil {
			log.Fatalf("zero first moment: %v", err)
		}
		next, err := zeroed.SolveDiffEqn()
		if err != nil {
			log.Fatalf("solve step %d: %v", i+1, err)
		}
		rep.SolveSteps = append(rep.SolveSteps, next.PrecisionRelative())
		if next.PrecisionRelative() == 0 {
			break
		}
		cur = next
	}

	// valuation along an orbit under the standard parabolic element
	mon, err := sigma0.New(1)
	if err != nil {
		log.Fatalf("monoid: %v", err)
	}
	g, err := mon.Element(1, 1, *pFlag, 1+*pFlag)
	if err != nil {
		log.Fatalf("element: %v", err)
	}
	orbit := v.Clone()
	rep.OrbitVals = append(rep.OrbitVals, orbit.Valuation())
	for i := 0; i < *iters; i++ {
		next, err := orbit.ActRight(g)
		if err != nil {
			log.Fatalf("act step %d: %v", i+1, err)
		}
		rep.OrbitVals = append(rep.OrbitVals, next.Valuation())
		orbit = next
	}

	ts := time.Now().Format("20060102_150405")
	jsonPath := filepath.Join(*outDir, fmt.Sprintf("dist_profile_%s.json", ts))
	if err := saveJSON(jsonPath, rep); err != nil {
		log.Printf("warn: save report: %v", err)
	}

	page := components.NewPage()
	page.AddCharts(
		newProfileChart(fmt.Sprintf("moment valuations (p=%d, M=%d)", par.P, rep.Moments),
			"v_p(moment)", momentValuations(v, par.PrecCap)),
		newProfileChart("relative precision under iterated difference-equation solving",
			"precision", rep.SolveSteps),
		newProfileChart("valuation along the parabolic orbit",
			"valuation", rep.OrbitVals),
	)

	htmlPath := filepath.Join(*outDir, fmt.Sprintf("dist_profile_%s.html", ts))
	f, err := os.Create(htmlPath)
	if err != nil {
		log.Fatalf("create html: %v", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		log.Fatalf("render html: %v", err)
	}
	fmt.Println("Profile page:", htmlPath)
	fmt.Println("Report JSON:", jsonPath)
}

// zeroFirstMoment subtracts off the total measure so the difference
// equation becomes solvable.
func zeroFirstMoment(v dist.Distribution) (dist.Distribution, error) {
	m0, err := v.Moment(0)
	if err != nil {
		return nil, err
	}
	c, err := dist.FromScalar(v.Params(), m0, v.PrecisionRelative())
	if err != nil {
		return nil, err
	}
	return v.Sub(c)
}
