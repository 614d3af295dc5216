/*
Package workload turns run parameters into per-worker request batches.

# Partitioning

Partition splits the skier population [1, population] into one contiguous
slice per worker. Every slice has population/workerCount IDs; the remainder
population%workerCount is not assigned to any worker.

# Randomization

A Shuffler performs in-place Fisher-Yates permutations. NewShuffler(nil)
uses a generator seeded from the clock, so two runs never issue the same
request order. Tests pass a fixed rand.Source to get a reproducible one.

# Pools

A Pool is a cyclic list of integers: skier IDs for one worker, time ticks
for one phase, or lift IDs. Each batch build shuffles the pools it draws
from and then walks them round-robin, wrapping when exhausted. The ski day
is 420 minutes long and split across phases as 90, 270 and 60 ticks.

# Batches

Builder.WriteBatch produces lift-ride POST requests and Builder.ReadBatch
produces GET requests alternating the day-vertical and resort-totals
endpoints. A Pool is not safe for concurrent use; each phase builds its
batches from one goroutine before handing them to workers.
*/
package workload
