// Package controller holds the demo controllers.
package controller

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/km-arc/go-mvc/demo/service"
	"github.com/km-arc/go-mvc/framework/classpath"
	gohttp "github.com/km-arc/go-mvc/framework/http"
	"github.com/km-arc/go-mvc/framework/stereotype"
)

func init() {
	classpath.Register(DemoController{})
}

// DemoController serves /demo/*.
type DemoController struct {
	stereotype.Controller
	stereotype.RequestMapping `mapping:"/demo"`

	_ stereotype.RequestMapping `mapping:"/query" handler:"Query" params:"name"`
	_ stereotype.RequestMapping `mapping:"/hello" handler:"Hello" params:"name"`
	_ stereotype.RequestMapping `mapping:"/status" handler:"Status"`
	_ stereotype.RequestMapping `mapping:"/fail" handler:"Fail"`
	_ stereotype.RequestMapping `mapping:"/greet" handler:"Greet"`

	demoService *service.DemoServiceImpl `autowired:""`
	greeter     service.IDemoService     `autowired:""`
}

// Query writes the greeting for name as plain text.
func (c *DemoController) Query(w http.ResponseWriter, r *http.Request, name string) {
	gohttp.NewResponse(w).Text(http.StatusOK, c.demoService.Hello(name))
}

// Hello returns the greeting; the dispatcher writes it.
func (c *DemoController) Hello(name string) string {
	return c.greeter.Hello(name)
}

// Status reports whether both services were injected.
func (c *DemoController) Status(req *gohttp.Request) map[string]any {
	return map[string]any{
		"path":     req.Path(),
		"injected": c.demoService != nil && c.greeter != nil,
	}
}

// Fail always fails, to show the fault response.
func (c *DemoController) Fail() error {
	return errors.New("demo failure")
}

type greetRequest struct {
	Name string `json:"name" validate:"required,min=2"`
}

// Greet reads {"name": ...} from a JSON body.
func (c *DemoController) Greet(req *gohttp.Request, res *gohttp.Response) {
	var body greetRequest
	if errs := req.Validate(&body); errs != nil {
		res.ValidationError(errs)
		return
	}
	res.Success(c.greeter.Hello(body.Name))
}
