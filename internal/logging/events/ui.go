package events

import "github.com/atomicstack/cmdpalette/internal/logging"

type UITracer struct{}

type FilterTracer struct{}

type ActionTracer struct{}

type LoadTracer struct{}

var (
	UI     = UITracer{}
	Filter = FilterTracer{}
	Action = ActionTracer{}
	Load   = LoadTracer{}
)

func (UITracer) Open(root, search string) {
	logging.Trace("palette.open", map[string]interface{}{"root": root, "search": search})
}

func (UITracer) Close(reason string) {
	logging.Trace("palette.close", map[string]interface{}{"reason": reason})
}

func (UITracer) Cursor(root, selected string, index int) {
	logging.Trace("palette.cursor", map[string]interface{}{"root": root, "selected": selected, "index": index})
}

func (UITracer) Root(root string, crumbs []string) {
	logging.Trace("palette.root", map[string]interface{}{"root": root, "breadcrumbs": crumbs})
}

func (UITracer) Back(from, to string) {
	logging.Trace("palette.back", map[string]interface{}{"from": from, "to": to})
}

func (UITracer) Change(query string, visible int) {
	logging.Trace("palette.change", map[string]interface{}{"query": query, "visible": visible})
}

func (ActionTracer) Selected(id, query string) {
	logging.Trace("action.selected", map[string]interface{}{"id": id, "query": query})
}

func (ActionTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("action.error", map[string]interface{}{"error": err.Error()})
}

func (ActionTracer) Success(info string) {
	logging.Trace("action.success", map[string]interface{}{"info": info})
}

func (FilterTracer) Cleared(root string) {
	logging.Trace("filter.clear", map[string]interface{}{"root": root})
}

func (FilterTracer) WordBackspace(root, filter string) {
	logging.Trace("filter.word-backspace", map[string]interface{}{"root": root, "filter": filter})
}

func (FilterTracer) Cursor(root string, pos int) {
	logging.Trace("filter.cursor", map[string]interface{}{"root": root, "cursor": pos})
}

func (FilterTracer) CursorWord(root string, pos int) {
	logging.Trace("filter.cursor-word", map[string]interface{}{"root": root, "cursor": pos})
}

func (FilterTracer) Append(root, filter string) {
	logging.Trace("filter.append", map[string]interface{}{"root": root, "filter": filter})
}

func (FilterTracer) Backspace(root, filter string) {
	logging.Trace("filter.backspace", map[string]interface{}{"root": root, "filter": filter})
}

func (LoadTracer) Queue(root string, index int) {
	logging.Trace("load.queue", map[string]interface{}{"root": root, "index": index})
}

func (LoadTracer) Result(root string, index, count int, err error) {
	payload := map[string]interface{}{"root": root, "index": index, "count": count}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("load.result", payload)
}

func (LoadTracer) Stale(root string, index int) {
	logging.Trace("load.stale", map[string]interface{}{"root": root, "index": index})
}
