/*
Package phase runs the three-phase load ramp.

# Phases

	Phase  Workers          Write  Read  Ticks
	1      ceil(max/4)      1000   5     1-90
	2      max              1000   5     91-360
	3      ceil(max/4)      1000   10    361-420

Batch sizes come from the workload configuration; the table shows the
defaults. Each phase partitions the skier population across its own
workers.

# Runner

A Runner builds one write batch and one read batch per worker and starts
one goroutine per worker. Each goroutine issues its write batch serially and
goes straight on to its read batch, without waiting for slower workers.
While the phase runs, a poller checks every PollInterval how many requests
each worker has completed. A worker is early once it has completed more
requests than its write batch holds, that is once it has started its reads. When early workers make up 10% of the phase (and at least one), the
phase fires its Gate. The gate is fired again, as a no-op if already open,
when the phase returns.

# Scheduler

The Scheduler starts all phases at once on an errgroup. Phase 2 waits on the
gate of phase 1 and phase 3 on the gate of phase 2, each wait bounded by
the gate timeout. A timed-out wait is logged and the phase starts anyway.
A zero gate timeout waits until the predecessor fires, which it always
does when it returns.
*/
package phase
