/*
Package gen turns a list of snapshots into a single relocatable byte
image.

# Overview

Generate runs the traversal twice: once to size every sub-block without
writing anything, once to write the final image into a buffer sized
exactly to fit. Both walks visit snapshots, their mappings, and their
registers in the same deterministic order, so identical allocation calls
land at identical offsets in both passes — this is the entire correctness
argument for emitting without translating a single index along the way.

# Basic usage

	buf, err := gen.Generate(arch.AMD64, snapshots, gen.DefaultOptions())
	if err != nil {
	    return err
	}
	// buf is byte-identical across repeated calls on the same inputs.

# Counters

Pass an Options.Counters map to recover the final size of every block:

	counters := gen.Counters{}
	_, err := gen.Generate(arch.AMD64, snapshots, gen.Options{Counters: counters})
	fmt.Println(counters[gen.PageDataBlockName])
*/
package gen
