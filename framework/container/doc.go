// Package container provides the bean registry and the instantiation and
// injection phases of the bootstrap.
//
// # Container Lifecycle
//
//  1. Create: c := container.New(logger)
//  2. Instantiate: c.Instantiate(cp, descriptors): one bean per controller or service
//  3. Autowire:    c.Autowire(cp, container.MissWarn)
//  4. Serve requests; the container is only read from here on
//
// Steps 2 and 3 usually run inside a ServiceProvider so that they follow
// the Register / Boot order of the other providers.
//
// # Bean names
//
//	stereotype.Controller                     → "demoController"
//	stereotype.Service `service:"mailer"`     → "mailer"
//	stereotype.Service (no name), declaring
//	  classpath.Implements[IDemoService]()    → "github.com/acme/app/demo/service.IDemoService"
//
// A name registered twice keeps the later bean.
//
// # Injection
//
//	type DemoController struct {
//	    stereotype.Controller
//	    demoService *service.DemoServiceImpl `autowired:""`       // via first declared interface
//	    log         *zap.Logger              `autowired:"logger"` // explicit name
//	}
//
// # Resolving
//
//	raw := c.Make("demoController")
//	log := container.Resolve[*zap.Logger](c, "logger")
package container
