/*
Package faster implements the FAST-ER learned corner detector: a ternary
decision tree trained by simulated annealing to maximize repeatability
across a warped-image dataset, then compiled to a flat bytecode program
replicated over all 8 rotation/reflection symmetries and both
brighter/darker polarities.

The package provides three command line tools:

	$ learn-detector -dir ./dataset -num 6 -out tree.txt
	$ fast-tree -in descriptors.txt -out tree.txt
	$ warp-to-png -dir ./dataset -num 6 -width 768 -height 576

In case you wish to integrate the API directly:

	package main

	import (
		"fmt"
		"github.com/esimov/faster"
	)

	func main() {
		ds, err := faster.LoadDataset("./dataset", 6, "cambridge")
		if err != nil {
			fmt.Printf("could not load dataset: %s", err)
			return
		}
		ds.Prune()

		offsets := faster.NewOffsetTable(2.5, 3.5)
		learner := faster.NewLearner(faster.NewStore())
		tree := learner.Run(ds, offsets, nil)

		prog := faster.Compile(tree, offsets, ds.Width)
		corners := faster.DetectAndSuppress(prog, ds.Images[0], offsets, learner.FASTThreshold)
		fmt.Println(len(corners), "corners detected")
	}
*/
package faster
