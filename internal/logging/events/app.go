package events

import "github.com/atomicstack/cmdpalette/internal/logging"

type AppTracer struct{}

type CatalogTracer struct{}

var (
	App     = AppTracer{}
	Catalog = CatalogTracer{}
)

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (CatalogTracer) Loaded(path string, actions int) {
	logging.Trace("catalog.loaded", map[string]interface{}{"path": path, "actions": actions})
}

func (CatalogTracer) Reload(path string, actions int, err error) {
	payload := map[string]interface{}{"path": path, "actions": actions}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("catalog.reload", payload)
}
