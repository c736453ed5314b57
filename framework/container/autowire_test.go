package container_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/km-arc/go-mvc/framework/classpath"
	"github.com/km-arc/go-mvc/framework/container"
	"github.com/km-arc/go-mvc/framework/fault"
)

func TestAutowire_WiresAllFields(t *testing.T) {
	cp := newClassPath()
	descriptors, err := classpath.Scan(cp, fixturePkg)
	require.NoError(t, err)
	broken := map[string]bool{
		fixturePkg + ".ghostController":    true,
		fixturePkg + ".orphanController":   true,
		fixturePkg + ".mistypedController": true,
	}
	var wired []classpath.Descriptor
	for _, d := range descriptors {
		if !broken[d.Name] {
			wired = append(wired, d)
		}
	}
	c := container.New(nil)
	created, failed := c.Instantiate(cp, wired)
	require.Equal(t, 5, created)
	require.Empty(t, failed)

	require.NoError(t, c.Autowire(newClassPath(), container.MissFail))

	home := container.Resolve[*HomeController](c, "homeController")
	impl := c.Make(greeterName).(*englishGreeter)

	assert.Same(t, impl, home.impl)
	assert.Equal(t, Greeter(impl), home.greeter)
	assert.Equal(t, Counter(impl), home.Counter)
	assert.Equal(t, Greeter(impl), home.inherited)
	assert.Same(t, c.Make("mailer").(*namedMailer), home.mailer)
}

func TestAutowire_MissPolicies(t *testing.T) {
	tests := []struct {
		policy   container.MissPolicy
		wantErr  bool
		wantWarn int
	}{
		{container.MissIgnore, false, 0},
		{container.MissWarn, false, 1},
		{container.MissFail, true, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			c := container.New(zap.New(core))
			ghost := &ghostController{ghost: &englishGreeter{}}
			c.Instance("ghostController", ghost)

			err := c.Autowire(newClassPath(), tt.policy)
			if tt.wantErr {
				var miss *fault.InjectionResolutionFailure
				require.True(t, errors.As(err, &miss))
				assert.Equal(t, "nobody", miss.Name)
				assert.Equal(t, "ghost", miss.Field)
			} else {
				require.NoError(t, err)
			}
			assert.Nil(t, ghost.ghost, "a miss leaves the field zero")
			assert.Equal(t, tt.wantWarn, logs.Len())
		})
	}
}

func TestAutowire_ConcreteTypeWithoutInterface(t *testing.T) {
	c := container.New(nil)
	c.Instance("orphanController", &orphanController{})

	err := c.Autowire(newClassPath(), container.MissIgnore)
	var cfg *fault.ConfigurationError
	require.True(t, errors.As(err, &cfg), "got %v", err)
	assert.Contains(t, cfg.Subject, "orphan")
}

func TestAutowire_NotAssignable(t *testing.T) {
	c := container.New(nil)
	c.Instance("mistypedController", &mistypedController{})
	c.Instance("mailer", &namedMailer{})

	err := c.Autowire(newClassPath(), container.MissIgnore)
	var cfg *fault.ConfigurationError
	require.True(t, errors.As(err, &cfg), "got %v", err)
}

func TestAutowire_SkipsNonStructBeans(t *testing.T) {
	c := container.New(nil)
	c.Instance("number", 42)
	c.Instance("text", "x")
	c.Instance("nil", nil)
	c.Instance("logger", zap.NewNop())

	assert.NoError(t, c.Autowire(newClassPath(), container.MissFail))
}

func TestAutowire_UnregisteredTypeUsesTags(t *testing.T) {
	type local struct {
		Mailer *namedMailer `autowired:"mailer"`
	}
	c := container.New(nil)
	bean := &local{}
	c.Instance("local", bean)
	c.Instance("mailer", &namedMailer{})

	require.NoError(t, c.Autowire(newClassPath(), container.MissFail))
	assert.NotNil(t, bean.Mailer)
}

func TestParseMissPolicy(t *testing.T) {
	p, err := container.ParseMissPolicy("FAIL")
	require.NoError(t, err)
	assert.Equal(t, container.MissFail, p)

	_, err = container.ParseMissPolicy("explode")
	assert.Error(t, err)
}
