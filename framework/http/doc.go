// Package http provides Laravel-style request and response helpers and the
// per-request container scope.
//
// # Request scope
//
// RequestScope creates an inner container for every request and disposes it
// when the handler returns:
//
//	r.Use(gohttp.RequestScope(app.Container))
//
//	func show(w http.ResponseWriter, r *http.Request) {
//	    req := gohttp.NewRequest(r)
//	    res := gohttp.NewResponse(w)
//
//	    svc, err := container.Resolve[*Service](req.Container())
//	    if err != nil {
//	        res.ContainerError(err)
//	        return
//	    }
//	    res.Success(svc.Handle(req.RouteParam("id")))
//	}
//
// # Request
//
//	var payload struct {
//	    Name string `json:"name"`
//	}
//	if err := req.Bind(&payload); err != nil { ... }
//
//	id := req.RouteParam("id")
//
// # Response
//
//	res.JSON(http.StatusOK, map[string]any{"ok": true})
//	res.Success(data)                  // 200 {"data": ...}
//	res.Error(http.StatusTeapot, "no") // {"message": "no"}
//	res.ValidationError(v.Errors())    // 422 {"errors": {...}}
package http
