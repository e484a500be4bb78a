package log

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// New builds a *zap.SugaredLogger for the given component name, the same
// leveled, structured logger goshimmer's autopeering server wires into its
// own `log` field.
func New(component string) *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	return logger.Sugar().Named(component)
}

// Wrap annotates err with a call-site message using pkg/errors, the pairing
// goshimmer's autopeering/server package uses alongside its zap logger. It
// is the boundary where the chain package's plain errors pick up
// call-site context as they cross into the demo CLI.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, message)
}
