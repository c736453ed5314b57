package container_test

import (
	"github.com/km-arc/go-mvc/framework/classpath"
	"github.com/km-arc/go-mvc/framework/stereotype"
)

const fixturePkg = "github.com/km-arc/go-mvc/framework/container_test"

type Greeter interface{ Greet() string }
type Counter interface{ Count() int }

// englishGreeter declares two interfaces and no name.
type englishGreeter struct {
	stereotype.Service
}

func (*englishGreeter) Greet() string { return "hello" }
func (*englishGreeter) Count() int    { return 1 }

type namedMailer struct {
	stereotype.Service `service:"mailer"`
}

// orphanService has neither a name nor an interface.
type orphanService struct {
	stereotype.Service
}

type plainType struct{}

type hybrid struct {
	stereotype.Controller
	stereotype.Service `service:"hybridService"`
}

type greeterBase struct {
	inherited Greeter `autowired:""`
}

type HomeController struct {
	stereotype.Controller
	greeterBase

	greeter Greeter         `autowired:""`
	impl    *englishGreeter `autowired:""`
	mailer  *namedMailer    `autowired:"mailer"`
	Counter Counter         `autowired:""`
}

type ghostController struct {
	stereotype.Controller
	ghost Greeter `autowired:"nobody"`
}

type orphanController struct {
	stereotype.Controller
	orphan *orphanService `autowired:""`
}

type mistypedController struct {
	stereotype.Controller
	mailer *englishGreeter `autowired:"mailer"`
}

func newClassPath() *classpath.ClassPath {
	cp := classpath.New()
	cp.Register(englishGreeter{}, classpath.Implements[Greeter](), classpath.Implements[Counter]())
	cp.Register(namedMailer{})
	cp.Register(orphanService{})
	cp.Register(plainType{})
	cp.Register(hybrid{})
	cp.Register(HomeController{})
	cp.Register(ghostController{})
	cp.Register(orphanController{})
	cp.Register(mistypedController{})
	return cp
}
