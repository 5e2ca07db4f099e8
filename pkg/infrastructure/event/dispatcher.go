package event

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"shop/pkg/domain/service"
)

// LogDispatcher writes every domain event to the structured log.
type LogDispatcher struct {
	logger log.FieldLogger
}

func NewLogDispatcher(logger log.FieldLogger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Dispatch(event service.Event) error {
	d.logger.WithFields(log.Fields{
		"event":   event.Type(),
		"payload": event,
	}).Info("domain event")
	return nil
}

// Multi fans an event out to every dispatcher. All of them are called even
// when one fails; the first error is returned.
type Multi []service.EventDispatcher

func (m Multi) Dispatch(event service.Event) error {
	var first error
	for _, d := range m {
		if err := d.Dispatch(event); err != nil {
			log.WithError(err).WithField("event", event.Type()).Warn("event dispatcher failed")
			if first == nil {
				first = errors.Wrapf(err, "dispatch %s", event.Type())
			}
		}
	}
	return first
}
