package manager

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type (
	// ControllerPlugin is a stateless factory registered from an adapter's init.
	ControllerPlugin interface {
		Name() string
		MustCreateController(deps *Dependencies) Controller
	}

	// Controller attaches its handlers to each API surface.
	Controller interface {
		RegisterOpenApi(group *gin.RouterGroup)
		RegisterInnerApi(group *gin.RouterGroup)
		RegisterDebugApi(group *gin.RouterGroup)
		RegisterOpsApi(group *gin.RouterGroup)
	}
)

// Groups holds the router group of every API surface. A nil group skips
// that surface.
type Groups struct {
	Open  *gin.RouterGroup
	Inner *gin.RouterGroup
	Debug *gin.RouterGroup
	Ops   *gin.RouterGroup
}

var (
	pluginsMu         sync.Mutex
	controllerPlugins = map[string]ControllerPlugin{}
)

// RegisterControllerPlugin adds p under its name. Duplicate or empty names panic.
func RegisterControllerPlugin(p ControllerPlugin) {
	pluginsMu.Lock()
	defer pluginsMu.Unlock()
	if p.Name() == "" {
		panic(fmt.Errorf("%T: empty name", p))
	}
	if existedPlugin, existed := controllerPlugins[p.Name()]; existed {
		panic(fmt.Errorf("%T and %T got same name: %s", p, existedPlugin, p.Name()))
	}
	controllerPlugins[p.Name()] = p
}

func sortedPlugins() []ControllerPlugin {
	pluginsMu.Lock()
	defer pluginsMu.Unlock()
	names := make([]string, 0, len(controllerPlugins))
	for n := range controllerPlugins {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]ControllerPlugin, 0, len(names))
	for _, n := range names {
		out = append(out, controllerPlugins[n])
	}
	return out
}

// MustInitControllers builds every registered controller from deps, in name
// order, and attaches its routes to groups.
func MustInitControllers(deps *Dependencies, groups Groups) {
	if deps == nil {
		panic("manager: nil dependencies")
	}
	for _, p := range sortedPlugins() {
		controller := p.MustCreateController(deps)
		if groups.Open != nil {
			controller.RegisterOpenApi(groups.Open)
		}
		if groups.Inner != nil {
			controller.RegisterInnerApi(groups.Inner)
		}
		if groups.Debug != nil {
			controller.RegisterDebugApi(groups.Debug)
		}
		if groups.Ops != nil {
			controller.RegisterOpsApi(groups.Ops)
		}
		log.Infof("Register controller: plugin=%s", p.Name())
	}
}
