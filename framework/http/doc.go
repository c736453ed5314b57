// Package http provides request and response helpers that handler methods
// may declare as parameters instead of the raw net/http types.
//
// # Request
//
//	req := gohttp.NewRequest(r)
//
//	name   := req.Input("name", "default")
//	all    := req.Params()      // url.Values, query + form body
//	joined := req.Param("tag")  // "a,b" for ?tag=a&tag=b
//	last   := req.LastParam()   // values of the parameter sorting last by name
//
//	var payload struct{ Name string `json:"name"` }
//	if err := req.Bind(&payload); err != nil { ... }
//	if errs := req.Validate(&payload); errs != nil { ... } // bind + validate tags
//
// # Response
//
//	res := gohttp.NewResponse(w)
//
//	res.Text(200, "hello")
//	res.JSON(200, data)
//	res.Success(data)           // 200 {"data": ...}
//	res.Created(data)           // 201 {"data": ...}
//	res.NoContent()             // 204
//	res.Error(400, "bad input") // {"message": "bad input"}
//	res.ValidationError(errs)   // 422 {"errors": {...}}
package http
