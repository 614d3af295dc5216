/*
Package types defines the value types shared by the liftload packages.

# Overview

The types package holds the data passed between the workload builder, the
request executor, the phase runner and the statistics pipeline:
  - LiftRide: the JSON body of a write call
  - RequestType: the tag attached to latency samples
  - Outcome: the result of one logical call after all retry attempts
  - BatchOutcome: the result of one worker's batch within a phase
  - Sample: one timed attempt, exported to CSV

# Immutability

Values are produced once and never mutated afterwards. Outcome and
BatchOutcome are returned by value so they can cross goroutines freely.
*/
package types
