package source

import (
	"context"
	"errors"

	"github.com/atotto/clipboard"

	"github.com/atomicstack/cmdpalette/internal/catalog"
	"github.com/atomicstack/cmdpalette/internal/logging/events"
)

var errClipboardUnsupported = errors.New("no system clipboard available (install xclip, xsel or wl-clipboard)")

func writeClipboard(text string) error {
	if clipboard.Unsupported {
		return errClipboardUnsupported
	}
	return clipboard.WriteAll(text)
}

func (o Options) copyHandler(text string, keepOpen bool) catalog.Handler {
	return func(context.Context, *catalog.Action) (*catalog.HandlerOutcome, error) {
		if err := o.Clipboard(text); err != nil {
			return nil, err
		}
		events.Action.Success("copied to clipboard")
		return &catalog.HandlerOutcome{KeepOpen: keepOpen}, nil
	}
}
