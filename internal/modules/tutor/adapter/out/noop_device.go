package out

import (
	"context"

	tutorout "robotutor/internal/modules/tutor/port/out"
)

// NoopDevice runs a session with no student in front of it. Prompts come
// back empty, which grades as unanswered.
type NoopDevice struct{}

func NewNoopDevice() tutorout.Device {
	return NoopDevice{}
}

func (NoopDevice) Say(context.Context, string) error        { return nil }
func (NoopDevice) SetEmotion(context.Context, string) error { return nil }
func (NoopDevice) DoMotion(context.Context, string) error   { return nil }

func (NoopDevice) Ask(context.Context, string) (string, error) {
	return "", nil
}
