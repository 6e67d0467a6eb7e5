// Command warp-to-png converts a Cambridge-format text warp dataset to the
// faster-loading 16-bit PNG warp form, mirroring the original toolchain's
// warp_to_png utility.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/esimov/faster"
)

const helpBanner = `
┌─┐┌─┐┌─┐┌┬┐   ┌┬┐┌─┐   ┌─┐┌┐┌┌─┐
├┤ ├─┤└─┐ │ ───│ │ │ ───├─┘││││ ┬
└  ┴ ┴└─┘ ┴    ┴ └─┘   ┴  ┘└┘└─┘

Cambridge text warp -> 16-bit PNG warp converter.
`

var (
	dir    = flag.String("dir", "./", "Dataset base directory")
	num    = flag.Int("num", 2, "Number of images in the dataset")
	width  = flag.Int("width", 0, "Image width")
	height = flag.Int("height", 0, "Image height")
)

func main() {
	log.SetFlags(0)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, helpBanner)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *width == 0 || *height == 0 {
		log.Fatal("both -width and -height are required")
	}

	outDir := filepath.Join(*dir, "pngwarps")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Fatalf("could not create %s: %v", outDir, err)
	}

	for from := 0; from < *num; from++ {
		for to := 0; to < *num; to++ {
			if from == to {
				continue
			}
			inPath := filepath.Join(*dir, "warps", fmt.Sprintf("warp_%d_%d.warp", from, to))
			warp, err := faster.LoadWarpText(inPath, *width, *height)
			if err != nil {
				log.Fatalf("could not load %s: %v", inPath, err)
			}

			outPath := filepath.Join(outDir, fmt.Sprintf("warp_%d_%d.png", from, to))
			f, err := os.Create(outPath)
			if err != nil {
				log.Fatalf("could not create %s: %v", outPath, err)
			}
			if err := faster.SaveWarpPNG(f, warp); err != nil {
				f.Close()
				log.Fatalf("could not write %s: %v", outPath, err)
			}
			f.Close()
			log.Printf("wrote %s", outPath)
		}
	}
}
