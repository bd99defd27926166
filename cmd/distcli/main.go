package main

import (
	"flag"
	"fmt"
	"log"
	"math/big"
	"os"
	"strings"

	"padic-distributions/dist"
	"padic-distributions/sigma0"
)

func usage() {
	fmt.Println(`usage: distcli <sample|normalize|act|solve|scalar> [options]

Subcommands:
  sample     Sample a deterministic distribution and write it as JSON
             Flags:
               -p      <int>     prime (default: 7)
               -k      <int>     weight (default: 0)
               -cap    <int>     precision cap (default: 10)
               -m      <int>     number of moments (default: cap)
               -label  <string>  seed label (default: "distcli")
               -out    <path>    output file (default: dist.json)

  normalize  Read a distribution, normalize it, write it back
             Flags:
               -in <path>, -out <path>

  act        Apply the weight-k action of [a, b; c, d]
             Flags:
               -in <path>, -out <path>
               -g  <a,b,c,d>     matrix entries (required)
               -level <int>      tame level N (default: 1)

  solve      Solve mu | Delta = nu for the stored distribution
             Flags:
               -in <path>, -out <path>

  scalar     Report alpha with other = alpha * self, reading two files
             Flags:
               -a <path> -b <path>`)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	switch os.Args[1] {
	case "sample":
		runSample(os.Args[2:])
	case "normalize":
		runNormalize(os.Args[2:])
	case "act":
		runAct(os.Args[2:])
	case "solve":
		runSolve(os.Args[2:])
	case "scalar":
		runScalar(os.Args[2:])
	default:
		usage()
	}
}

func runSample(args []string) {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	p := fs.Int64("p", 7, "prime")
	k := fs.Int("k", 0, "weight")
	cap := fs.Int("cap", 10, "precision cap")
	m := fs.Int("m", 0, "number of moments (0 means cap)")
	label := fs.String("label", "distcli", "seed label")
	out := fs.String("out", "dist.json", "output file")
	fs.Parse(args)

	par, err := dist.NewParams(*p, *k, *cap)
	if err != nil {
		log.Fatalf("params: %v", err)
	}
	n := *m
	if n == 0 {
		n = *cap
	}
	v, err := dist.RandomDistribution(par, *label, n)
	if err != nil {
		log.Fatalf("sample: %v", err)
	}
	if err := dist.Save(*out, v); err != nil {
		log.Fatalf("save: %v", err)
	}
	fmt.Println("wrote", *out)
}

func runNormalize(args []string) {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	in := fs.String("in", "dist.json", "input file")
	out := fs.String("out", "dist.json", "output file")
	fs.Parse(args)

	v, err := dist.Load(*in)
	if err != nil {
		log.Fatalf("load: %v", err)
	}
	v.Normalize()
	if err := dist.Save(*out, v); err != nil {
		log.Fatalf("save: %v", err)
	}
	fmt.Printf("ordp=%d relative_precision=%d\n", v.Ordp(), v.PrecisionRelative())
}

func runAct(args []string) {
	fs := flag.NewFlagSet("act", flag.ExitOnError)
	in := fs.String("in", "dist.json", "input file")
	out := fs.String("out", "dist.json", "output file")
	gStr := fs.String("g", "", "matrix entries a,b,c,d")
	level := fs.Int64("level", 1, "tame level")
	fs.Parse(args)

	entries, err := parseMatrix(*gStr)
	if err != nil {
		log.Fatalf("matrix: %v", err)
	}
	v, err := dist.Load(*in)
	if err != nil {
		log.Fatalf("load: %v", err)
	}
	mon, err := sigma0.New(*level)
	if err != nil {
		log.Fatalf("monoid: %v", err)
	}
	g, err := mon.Element(entries[0], entries[1], entries[2], entries[3])
	if err != nil {
		log.Fatalf("element: %v", err)
	}
	r, err := v.ActRight(g)
	if err != nil {
		log.Fatalf("act: %v", err)
	}
	if err := dist.Save(*out, r); err != nil {
		log.Fatalf("save: %v", err)
	}
	fmt.Println("wrote", *out)
}

func runSolve(args []string) {
	fs := flag.NewFlagSet("solve", flag.ExitOnError)
	in := fs.String("in", "dist.json", "input file")
	out := fs.String("out", "solution.json", "output file")
	fs.Parse(args)

	v, err := dist.Load(*in)
	if err != nil {
		log.Fatalf("load: %v", err)
	}
	mu, err := v.SolveDiffEqn()
	if err != nil {
		log.Fatalf("solve: %v", err)
	}
	if err := dist.Save(*out, mu); err != nil {
		log.Fatalf("save: %v", err)
	}
	fmt.Printf("wrote %s (relative precision %d)\n", *out, mu.PrecisionRelative())
}

func runScalar(args []string) {
	fs := flag.NewFlagSet("scalar", flag.ExitOnError)
	aPath := fs.String("a", "", "first distribution")
	bPath := fs.String("b", "", "second distribution")
	fs.Parse(args)

	a, err := dist.Load(*aPath)
	if err != nil {
		log.Fatalf("load a: %v", err)
	}
	b, err := dist.Load(*bPath)
	if err != nil {
		log.Fatalf("load b: %v", err)
	}
	alpha, err := a.FindScalar(b, 0, true)
	if err != nil {
		log.Fatalf("find scalar: %v", err)
	}
	fmt.Println("alpha =", alpha.RatString())
}

func parseMatrix(s string) ([4]int64, error) {
	var out [4]int64
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return out, fmt.Errorf("want 4 entries a,b,c,d, got %q", s)
	}
	for i, part := range parts {
		n, ok := new(big.Int).SetString(strings.TrimSpace(part), 10)
		if !ok || !n.IsInt64() {
			return out, fmt.Errorf("bad entry %q", part)
		}
		out[i] = n.Int64()
	}
	return out, nil
}
