package srv

import "context"

type funcService struct {
	start   func(ctx context.Context) error
	cleanup func() error
}

func (f *funcService) Start(ctx context.Context) error {
	if f.start != nil {
		return f.start(ctx)
	}
	return nil
}

func (f *funcService) Shutdown(ctx context.Context) error {
	if f.cleanup != nil {
		return f.cleanup()
	}
	return nil
}

// NewCleanup wraps a close function so it runs during shutdown.
func NewCleanup(fn func() error) Service {
	return &funcService{cleanup: fn}
}

// NewFunc adapts a blocking start function into a Service.
func NewFunc(start func(ctx context.Context) error) Service {
	return &funcService{start: start}
}
