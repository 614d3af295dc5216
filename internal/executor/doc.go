/*
Package executor issues the HTTP calls of a load run.

# Overview

An Executor sends one logical call (a lift-ride POST or a skier GET) and
retries it until the target answers 200 or 204 or the attempt ceiling is
reached. The default ceiling is 7 attempts.

# Backoff

After a failed attempt with 0-based index i the executor sleeps

	max(1ms, base * 2 * i)

before moving on, including after the final attempt. The delay grows
linearly with the attempt index. With a 100ms base the sleeps are 1ms,
200ms, 400ms, 600ms, 800ms, 1000ms and 1200ms.

# Recording

Every attempt that received a response produces a types.Sample. Every
logical call produces exactly one types.Outcome, handed to the Recorder
once, no matter how many attempts it took. A call that never got a
response reports status -1.

Per-call failures never surface as errors to the caller: they become a
failed Outcome carrying ErrExhaustedRetries.

# HTTP Client

NewHTTPClient builds a client whose connection pool holds
workers + workers/2 connections so that pool contention does not distort
the latencies being measured. The client is shared by all workers.

# Throttling

When Options.RequestsPerSecond is set, every attempt first waits on a
token-bucket limiter shared by all workers.
*/
package executor
