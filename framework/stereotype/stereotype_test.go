package stereotype_test

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-mvc/framework/fault"
	"github.com/km-arc/go-mvc/framework/stereotype"
)

type shared struct {
	Clock any `autowired:"clock"`
}

type Orders struct {
	stereotype.Controller
	stereotype.RequestMapping `mapping:"/orders"`
	shared

	_ stereotype.RequestMapping `mapping:"/list" handler:"List"`
	_ stereotype.RequestMapping `mapping:"/find" handler:"Find" params:"id, status"`

	repo  any `autowired:""`
	plain int
}

type Billing struct {
	stereotype.Service `service:" billing "`
}

type Audited struct {
	*shared
	stereotype.Controller
}

type Timestamps struct {
	*Billing
	stereotype.Service
}

// inner markers do not count.
type Wrapper struct {
	Inner struct {
		stereotype.Controller
	}
}

type NoHandler struct {
	stereotype.Controller
	_ stereotype.RequestMapping `mapping:"/x"`
}

func TestInspect_Controller(t *testing.T) {
	md, err := stereotype.Inspect(reflect.TypeOf(&Orders{}))
	require.NoError(t, err)

	assert.True(t, md.Markers.Controller)
	assert.False(t, md.Markers.Service)
	assert.True(t, md.Markers.BaseRoute)
	assert.Equal(t, "/orders", md.Markers.BasePath)
	assert.True(t, md.Markers.Injectable)

	assert.Equal(t, []stereotype.Mapping{
		{Path: "/list", Handler: "List"},
		{Path: "/find", Handler: "Find", Params: []string{"id", "status"}},
	}, md.Mappings)

	require.Len(t, md.Injections, 2)
	names := map[string]string{}
	for _, ip := range md.Injections {
		names[ip.Field.Name] = ip.Name
	}
	assert.Equal(t, map[string]string{"Clock": "clock", "repo": ""}, names)
}

func TestInspect_InjectionIndexReachesEmbeddedField(t *testing.T) {
	md, err := stereotype.Inspect(reflect.TypeOf(Orders{}))
	require.NoError(t, err)

	for _, ip := range md.Injections {
		if ip.Field.Name != "Clock" {
			continue
		}
		v := reflect.ValueOf(&Orders{}).Elem().FieldByIndex(ip.Field.Index)
		assert.Equal(t, "Clock", reflect.TypeOf(Orders{}).FieldByIndex(ip.Field.Index).Name)
		assert.True(t, v.CanSet())
	}
}

func TestInspect_Service(t *testing.T) {
	md, err := stereotype.Inspect(reflect.TypeOf(Billing{}))
	require.NoError(t, err)
	assert.True(t, md.Markers.Service)
	assert.Equal(t, "billing", md.Markers.ServiceName)
	assert.False(t, md.Markers.Injectable)
}

func TestInspect_OnlyOuterMarkers(t *testing.T) {
	md, err := stereotype.Inspect(reflect.TypeOf(Wrapper{}))
	require.NoError(t, err)
	assert.False(t, md.Markers.Controller)
}

func TestInspect_Errors(t *testing.T) {
	_, err := stereotype.Inspect(reflect.TypeOf(NoHandler{}))
	var cfg *fault.ConfigurationError
	require.True(t, errors.As(err, &cfg))

	_, err = stereotype.Inspect(reflect.TypeOf(3))
	assert.True(t, errors.As(err, &cfg))
}

func TestInspect_EmbeddedPointerWithInjections(t *testing.T) {
	_, err := stereotype.Inspect(reflect.TypeOf(Audited{}))
	var cfg *fault.ConfigurationError
	require.True(t, errors.As(err, &cfg), "got %v", err)
	assert.Contains(t, cfg.Error(), "embed the struct by value")

	// Embedded pointers without autowired fields are left alone.
	md, err := stereotype.Inspect(reflect.TypeOf(Timestamps{}))
	require.NoError(t, err)
	assert.True(t, md.Markers.Service)
	assert.Empty(t, md.Injections)
}
