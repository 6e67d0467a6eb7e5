// Command fast-tree learns a ternary ID3 decision tree from labeled FAST
// feature descriptors (C9-C11) and prints it in the collapsing pretty-print
// grammar. Input follows original_source/learn_fast_tree.cc's format: a
// line with the feature count, a line listing that many "[x,y]" offsets,
// then one "<descriptor> <count> <class>" line per distinct datapoint.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/esimov/faster"
	"github.com/esimov/faster/fast"
)

const helpBanner = `
┌─┐┌─┐┌─┐┌┬┐   ┌┬┐┬─┐┌─┐┌─┐
├┤ ├─┤└─┐ │ ───│ │├┬┘├┤ ├┤
└  ┴ ┴└─┘ ┴    ┴ ┴┴└─└─┘└─┘

ID3 tree builder for FAST feature descriptors.
`

const pipeName = "-"

var (
	in  = flag.String("in", pipeName, "Input descriptor file")
	out = flag.String("out", pipeName, "Output tree file")
)

func main() {
	log.SetFlags(0)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, helpBanner)
		flag.PrintDefaults()
	}
	flag.Parse()

	r := os.Stdin
	if *in != pipeName {
		f, err := os.Open(*in)
		if err != nil {
			log.Fatalf("could not open %s: %v", *in, err)
		}
		defer f.Close()
		r = f
	}

	numFeatures, offsets, data, err := readDescriptors(r)
	if err != nil {
		log.Fatalf("could not read descriptors: %v", err)
	}
	_ = offsets // retained for parity with the input format; unused by Build

	tree, err := fast.Build(data, nil, numFeatures)
	if err != nil {
		var se *fast.SplitError
		if errors.As(err, &se) {
			log.Printf("could not build tree: %v", err)
			os.Exit(2)
		}
		log.Fatalf("could not build tree: %v", err)
	}

	w := os.Stdout
	if *out != pipeName {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("could not create %s: %v", *out, err)
		}
		defer f.Close()
		w = f
	}
	if err := fast.Print(w, tree); err != nil {
		log.Fatalf("could not write tree: %v", err)
	}
}

func readDescriptors(r *os.File) (int, []faster.Point, []fast.LabeledDescriptor, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	if !sc.Scan() {
		return 0, nil, nil, fmt.Errorf("missing feature count")
	}
	numFeatures, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil {
		return 0, nil, nil, fmt.Errorf("malformed feature count")
	}

	if !sc.Scan() {
		return 0, nil, nil, fmt.Errorf("missing offset list")
	}
	offsets, err := parseOffsets(sc.Text(), numFeatures)
	if err != nil {
		return 0, nil, nil, err
	}

	var data []fast.LabeledDescriptor
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return 0, nil, nil, fmt.Errorf("malformed datapoint line %q", line)
		}
		if len(fields[0]) != numFeatures {
			return 0, nil, nil, fmt.Errorf("feature string length is %d, not %d", len(fields[0]), numFeatures)
		}
		descriptor := make(fast.Descriptor, numFeatures)
		for i := 0; i < numFeatures; i++ {
			t, ok := faster.TritFromByte(fields[0][i])
			if !ok {
				return 0, nil, nil, fmt.Errorf("bad character in descriptor %q", fields[0])
			}
			descriptor[i] = t
		}
		count, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil || count == 0 {
			return 0, nil, nil, fmt.Errorf("zero or invalid count in line %q", line)
		}
		cls, err := strconv.Atoi(fields[2])
		if err != nil {
			return 0, nil, nil, fmt.Errorf("malformed class in line %q", line)
		}
		data = append(data, fast.LabeledDescriptor{Features: descriptor, Count: count, Corner: cls != 0})
	}
	if err := sc.Err(); err != nil {
		return 0, nil, nil, err
	}
	return numFeatures, offsets, data, nil
}

func parseOffsets(line string, n int) ([]faster.Point, error) {
	fields := strings.Fields(line)
	if len(fields) != n {
		return nil, fmt.Errorf("offset list has %d entries, not %d", len(fields), n)
	}
	out := make([]faster.Point, n)
	for i, f := range fields {
		f = strings.Trim(f, "[]")
		parts := strings.Split(f, ",")
		if len(parts) != 2 {
			parts = strings.Fields(f)
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed offset %q", f)
		}
		x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("malformed offset %q", f)
		}
		y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("malformed offset %q", f)
		}
		out[i] = faster.Point{X: x, Y: y}
	}
	return out, nil
}
