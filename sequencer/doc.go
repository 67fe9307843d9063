// Package sequencer brings a network dependency to a usable state before
// anything consumes it.
//
// EnsureReady probes the dependency's endpoint, starts it locally when the
// host is this machine and nothing is listening yet, waits until the port
// accepts connections, then applies idempotent initialization steps in
// order with bounded exponential-backoff retry:
//
//	steps := []sequencer.Step{
//	    {Name: "create-keyspace", Run: createKeyspace},
//	}
//	err := sequencer.EnsureReady(ctx, sequencer.Endpoint{Host: "127.0.0.1", Port: 9042},
//	    startCassandra, steps, sequencer.DefaultRetryPolicy())
//
// No step runs before the endpoint is reachable, and step N+1 only runs
// after step N succeeds. The reachability wait has no ceiling; pass a
// cancelable context to bound it.
package sequencer
