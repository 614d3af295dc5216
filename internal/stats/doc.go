/*
Package stats aggregates the results of a load run.

# Counters

Counters holds the total, successful and failed logical call counts as
independent atomic integers. Workers increment them without a shared lock,
so a Snapshot taken mid-run may be momentarily inconsistent across fields.
Once every worker has returned, Total == Successful + Failed.

# Samples

Every attempt that received a response is recorded as a Sample tagged with
its request type. Samples are only appended during a run; Summaries and
WriteCSV read them after the run completes.

# Export

WriteCSV writes one row per sample with the header
startTime,latency,requestType,responseCode (start time in unix
milliseconds, latency in milliseconds). Metrics mirrors the counters and a
latency histogram into a private Prometheus registry served by Handler.
*/
package stats
