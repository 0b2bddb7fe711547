package events

// Publisher is the write side of the event bus used by controllers.
// *eventbus.Bus[any] satisfies it.
type Publisher interface {
	Publish(e any) int
}

// Emit publishes e when p is not nil.
func Emit(p Publisher, e any) {
	if p != nil {
		p.Publish(e)
	}
}
