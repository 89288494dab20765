// Package ironlog is the HTTP layer of the ironlog workout-tracking backend.
//
// An [App] mounts one or more [Function] values. A function owns a mount path
// and an ordered table of [Route] modules; every request below the mount is
// matched against the table and the first route whose pattern matches and
// which has a handler for the request method answers it.
//
// # Quick Start
//
//	routes := []*ironlog.Route{
//	    ironlog.NewRoute("/plans").GET(h.listPlans).POST(h.createPlan),
//	    ironlog.NewRoute("/plans/{planId}",
//	        ironlog.WithOwnership("workout_plans", "planId"),
//	    ).GET(h.getPlan).PATCH(h.updatePlan).DELETE(h.deletePlan),
//	}
//
//	fn := ironlog.NewFunction("/workout-plans",
//	    ironlog.WithAuthenticator(verifier),
//	    ironlog.WithStore(store),
//	    ironlog.WithRoutes(routes...),
//	)
//
//	app := ironlog.New(ironlog.WithFunctions(fn))
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Handlers
//
// Handlers receive a [RequestContext] and return a [Response] built through
// it. Path parameters, the authenticated principal and the ownership-checked
// resource ids are already in place when the handler runs:
//
//	func (h *handlers) getPlan(rc *ironlog.RequestContext) (*ironlog.Response, error) {
//	    plan, err := h.repo.GetPlan(rc.Context(), rc.PrincipalID(), rc.Param("planId"))
//	    if err != nil {
//	        return nil, err
//	    }
//	    return rc.JSON(http.StatusOK, plan)
//	}
//
// Returning an [HTTPError] answers with its status and code. Any other error,
// and any panic, becomes a 500 METHOD_HANDLER_ERROR envelope.
//
// # Envelopes
//
// Success responses are {"data": ..., "totalCount": ..., "message": ...};
// errors are {"error": ..., "code": ..., "details": ...}. Every response,
// including preflight answers, carries the configured CORS headers.
//
// # Shutdown
//
// The application handles SIGINT/SIGTERM for graceful shutdown. Register
// cleanup functions with [ShutdownHook]:
//
//	err := app.Run(":8080",
//	    ironlog.StartupHook(db.Migrator(pool, migrations.FS, cfg.DB.MigrationsTable, log)),
//	    ironlog.ShutdownHook(db.Shutdown(pool)),
//	)
package ironlog
