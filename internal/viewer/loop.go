package viewer

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/alexiusacademia/gowing/internal/snapshot"
	"go.uber.org/zap"
)

// Renderer draws scenes
type Renderer interface {
	Draw(ctx context.Context, scene Scene) error
}

// Loop drives a viewer session: each event is applied to the state and the
// resulting scene is handed to the renderer.
type Loop struct {
	History  *snapshot.History
	Options  Options
	Renderer Renderer
	Logger   *zap.Logger

	// Teardown runs once when the loop exits, however it exits
	Teardown func() error
}

// Run renders the start state, then processes events until Quit, the
// channel closes or ctx is done. It returns the final state.
func (l *Loop) Run(ctx context.Context, start State, events <-chan Event) (final State, err error) {
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if l.Teardown != nil {
		defer func() {
			if terr := l.Teardown(); terr != nil {
				err = errors.Join(err, terr)
			}
		}()
	}

	s := start
	if err := l.draw(ctx, s); err != nil {
		return s, err
	}

	n := l.History.Len()
	for {
		select {
		case <-ctx.Done():
			return s, ctx.Err()
		case e, ok := <-events:
			if !ok {
				return s, nil
			}
			next, quit := Apply(s, e, n)
			if quit {
				logger.Debug("viewer quit", zap.Int("iteration", s.Iteration))
				return s, nil
			}
			if next == s {
				continue
			}
			s = next
			logger.Debug("viewer state",
				zap.Int("iteration", s.Iteration),
				zap.Float64("azimuth", s.Azimuth),
				zap.Float64("elevation", s.Elevation),
			)
			if err := l.draw(ctx, s); err != nil {
				return s, err
			}
		}
	}
}

func (l *Loop) draw(ctx context.Context, s State) error {
	sc, err := Render(s, l.History, l.Options)
	if err != nil {
		return err
	}
	return l.Renderer.Draw(ctx, sc)
}

// ReadEvents parses one command per line from r and sends the events on the
// returned channel, which closes at end of input or when ctx is done. Lines
// that do not parse are passed to onError and skipped.
func ReadEvents(ctx context.Context, r io.Reader, onError func(error)) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			e, err := ParseCommand(sc.Text())
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			select {
			case events <- e:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events
}
