package docpreview

import (
	"go.uber.org/zap"
)

// Failure describes one aborted export.
type Failure struct {
	ExportID string
	Kind     string
	Message  string // actionable text for the user
	Err      error
}

// Notifier tells the user about a hard export failure. It is called once
// per failed export.
type Notifier interface {
	Notify(f Failure)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Failure)

func (fn NotifierFunc) Notify(f Failure) { fn(f) }

// logNotifier is the default: it logs the failure at error level.
type logNotifier struct {
	log *zap.Logger
}

func (n logNotifier) Notify(f Failure) {
	n.log.Error(f.Message,
		zap.String("export_id", f.ExportID),
		zap.String("kind", f.Kind),
		zap.Error(f.Err))
}
