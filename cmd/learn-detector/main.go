// Command learn-detector trains a FAST-ER corner detector by simulated
// annealing over a repeatability dataset and writes the learned decision
// tree to stdout (or -out) in the §6 textual grammar.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/esimov/faster"
	"github.com/esimov/faster/utils"
	"golang.org/x/term"
)

const helpBanner = `
┌─┐┌─┐┌─┐┌┬┐┌─┐┬─┐
├┤ ├─┤└─┐ │ ├┤ ├┬┘
└  ┴ ┴└─┘ ┴ └─┘┴└─

FAST-ER corner detector trainer.
`

const pipeName = "-"

var (
	configPath = flag.String("config", "", "Configuration file (learn_detector.cfg form)")
	dir        = flag.String("dir", "./", "Dataset base directory")
	num        = flag.Int("num", 2, "Number of images in the dataset")
	format     = flag.String("type", "cambridge", "Dataset format: cambridge, cam-png, vgg")
	out        = flag.String("out", pipeName, "Destination for the learned tree")
	quiet      = flag.Bool("quiet", false, "Suppress the progress spinner")
)

func main() {
	log.SetFlags(0)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, helpBanner)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := faster.NewStore()
	if *configPath != "" {
		loaded, err := faster.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf(utils.DecorateText(fmt.Sprintf("could not load config: %v", err), utils.ErrorMessage))
		}
		cfg = loaded
	}

	ds, err := faster.LoadDataset(*dir, *num, *format)
	if err != nil {
		log.Fatalf(utils.DecorateText(fmt.Sprintf("could not load dataset: %v", err), utils.ErrorMessage))
	}
	ds.Prune()

	minR := cfg.FloatOr("min_radius", 2.5)
	maxR := cfg.FloatOr("max_radius", 3.5)
	offsets := faster.NewOffsetTable(minR, maxR)

	learner := faster.NewLearner(cfg)

	var spinner *utils.Spinner
	if !*quiet && term.IsTerminal(int(os.Stderr.Fd())) {
		spinner = utils.NewSpinner("training detector ", 80*time.Millisecond, true)
		spinner.Start()
	}

	start := time.Now()
	tree := learner.Run(ds, offsets, func(r faster.IterationReport) {
		if r.Iteration%100 == 0 {
			log.Println(r.String())
		}
	})
	elapsed := time.Since(start)

	if spinner != nil {
		spinner.StopMsg = utils.DecorateText(fmt.Sprintf("trained in %s\n", utils.FormatTime(elapsed)), utils.SuccessMessage)
		spinner.Stop()
	}

	w := os.Stdout
	if *out != pipeName {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf(utils.DecorateText(fmt.Sprintf("could not create %s: %v", *out, err), utils.ErrorMessage))
		}
		defer f.Close()
		w = f
	}
	if err := tree.Serialize(w); err != nil {
		log.Fatalf(utils.DecorateText(fmt.Sprintf("could not write tree: %v", err), utils.ErrorMessage))
	}
}
