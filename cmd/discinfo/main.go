// Command discinfo prints the architecture of the multi-scale GAN
// discriminator stacks.
//
// Usage:
//
//	discinfo [flags] [stack-name ...]
//
// Without arguments it prints all stacks: the three PQMF-band
// discriminators (dilation 1-3) and the full-band discriminator.
//
// Examples:
//
//	discinfo band
//	discinfo -q 8 band fullband
//	discinfo -probe 2048
//	discinfo -list
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-gan/discriminator"
	"github.com/cwbudde/algo-gan/measure/receptive"
)

type stack struct {
	name     string
	dilation int // 0 for the full-band stack
}

var registry = []stack{
	{"band1", 1},
	{"band2", 2},
	{"band3", 3},
	{"fullband", 0},
}

func main() {
	q := flag.Int("q", 4, "PQMF sub-band count")
	seed := flag.Int64("seed", 1, "weight initialization seed")
	probe := flag.Int("probe", 0, "if > 0, measure the empirical receptive span with an impulse probe of this length")
	list := flag.Bool("list", false, "list available stack names")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: discinfo [flags] [stack-name ...]\n\n")
		fmt.Fprintf(os.Stderr, "Prints block tables and receptive-field figures of the discriminator stacks.\n")
		fmt.Fprintf(os.Stderr, "Without arguments, prints all stacks.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  discinfo band1 fullband\n")
		fmt.Fprintf(os.Stderr, "  discinfo -q 8\n")
		fmt.Fprintf(os.Stderr, "  discinfo -probe 2048 band3\n")
	}
	flag.Parse()

	if *list {
		for _, s := range registry {
			fmt.Println(s.name)
		}
		return
	}

	names := flag.Args()
	if len(names) == 0 {
		for _, s := range registry {
			names = append(names, s.name)
		}
	}

	for _, name := range names {
		s, ok := lookup(name)
		if !ok {
			fmt.Fprintf(os.Stderr, "discinfo: unknown stack %q (try -list)\n", name)
			os.Exit(1)
		}
		if err := printStack(s, *q, *seed, *probe); err != nil {
			fmt.Fprintf(os.Stderr, "discinfo: %s: %v\n", name, err)
			os.Exit(1)
		}
	}
}

func lookup(name string) (stack, bool) {
	name = strings.ToLower(name)
	for _, s := range registry {
		if s.name == name {
			return s, true
		}
	}
	return stack{}, false
}

func printStack(s stack, q int, seed int64, probe int) error {
	var (
		infos    []discriminator.BlockInfo
		eval     receptive.Evaluator
		channels int
	)

	opts := []discriminator.Option{discriminator.WithBands(q), discriminator.WithSeed(seed)}

	if s.dilation > 0 {
		d, err := discriminator.NewBand(s.dilation, opts...)
		if err != nil {
			return err
		}
		infos, eval, channels = d.Blocks(), d, q
	} else {
		d, err := discriminator.NewFullBand(opts...)
		if err != nil {
			return err
		}
		infos, eval, channels = d.Blocks(), d, 1
	}

	fmt.Printf("%s (q=%d)\n", s.name, q)

	w := tabwriter.NewWriter(os.Stdout, 2, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tchannels\tkernel\tstride\tpad\treflect\tdil\tgroups\tact\tparams")

	totalParams := 0
	cumStride := 1
	field := 1

	for i, b := range infos {
		act := "-"
		if b.Activated {
			act = "lrelu"
		}
		fmt.Fprintf(w, "%d\t%d->%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\t%d\n",
			i+1, b.In, b.Out, b.Kernel, b.Stride, b.Pad, b.Reflect, b.Dilation, b.Groups, act, b.Params)

		field += b.Dilation * (b.Kernel - 1) * cumStride
		cumStride *= b.Stride
		totalParams += b.Params
	}

	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("total: %d params, %dx downsampling, %d-sample receptive field\n",
		totalParams, cumStride, field)

	if probe > 0 {
		m, err := receptive.NewAnalyzer(channels, probe).Analyze(eval)
		if err != nil {
			return err
		}
		fmt.Printf("probe: length %d -> %d logits, influenced span %d (%d input samples)\n",
			m.InputLength, m.OutputLength, m.Span, m.InputSpan)
	}

	fmt.Println()
	return nil
}
