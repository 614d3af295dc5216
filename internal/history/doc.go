/*
Package history persists load run records in SQLite.

Each run is stored under a UUID with its configuration, counters, wall time
and throughput, plus one latency summary row per request type and one row
per phase. The schema is created and upgraded by the migrations package.

Runs can be looked up by full ID or by any unique prefix, which is what
the history command prints.
*/
package history
