package spin

import "context"

// Notification is a presentation state change of one session
type Notification struct {
	SessionID string
	Type      string
	Payload   interface{}
}

// Presenter receives engine notifications in emission order. Present must
// not call back into the orchestrator.
type Presenter interface {
	Present(ctx context.Context, n Notification)
}

// PresenterFunc adapts a function to Presenter
type PresenterFunc func(ctx context.Context, n Notification)

func (f PresenterFunc) Present(ctx context.Context, n Notification) {
	f(ctx, n)
}

type nopPresenter struct{}

func (nopPresenter) Present(context.Context, Notification) {}
