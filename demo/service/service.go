// Package service holds the demo services.
package service

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/classpath"
	"github.com/km-arc/go-mvc/framework/config"
	"github.com/km-arc/go-mvc/framework/stereotype"
)

func init() {
	classpath.Register(DemoServiceImpl{}, classpath.Implements[IDemoService]())
}

// IDemoService greets people.
type IDemoService interface {
	Hello(name string) string
}

// DemoServiceImpl is registered under the qualified name of IDemoService.
type DemoServiceImpl struct {
	stereotype.Service

	cfg *config.Config `autowired:"config"`
	log *zap.Logger    `autowired:"logger"`
}

// Hello returns DEMO_GREETING (default "Hello") followed by name.
func (s *DemoServiceImpl) Hello(name string) string {
	greeting := "Hello"
	if s.cfg != nil {
		greeting = s.cfg.Get("DEMO_GREETING", greeting)
	}
	if name == "" {
		name = "world"
	}
	if s.log != nil {
		s.log.Debug("hello", zap.String("name", name))
	}
	return greeting + ", " + name
}
