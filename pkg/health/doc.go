// Package health provides liveness and readiness probes.
//
// [LivenessHandler] always answers 200 while the process runs.
// [ReadinessHandler] runs a set of named [Checks] concurrently on each
// request and answers 503 when any of them fails. [Evaluate] runs the same
// checks once outside HTTP, which the server binary uses to refuse to start
// against an unreachable database.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "postgres": db.Healthcheck(pool),
//	}, health.WithTimeout(3*time.Second), health.WithLogger(log)))
//
// Probes answer plain text by default. Send Accept: application/json or
// ?format=json to get the per-check breakdown:
//
//	{
//	  "status": "unhealthy",
//	  "checks": {
//	    "postgres": {"status": "unhealthy", "error": "connection refused"}
//	  }
//	}
package health
