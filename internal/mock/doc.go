/*
Package mock serves a local stand-in for the skier lift-ride API so load
runs can be smoke-tested without the real service.

Routes (with the default paths):

	POST /skiers/liftrides                                   record a lift ride
	GET  /skiers/{resortID}/days/{dayID}/skiers/{skierID}    vertical on one day
	GET  /skiers/{skierID}/vertical?resort={resortID}        vertical across all days

Each ride adds liftID*10 to the skier's vertical for that day. Reads for
unknown skiers answer 200 with a zero vertical. A configurable delay and
failure rate (answered with 503) exercise the client's retry path.
*/
package mock
