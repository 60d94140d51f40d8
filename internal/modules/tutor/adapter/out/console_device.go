package out

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	tutorout "robotutor/internal/modules/tutor/port/out"
)

// ConsoleDevice fronts the student with stdin/stdout. Emotion and motion
// render as stage directions.
type ConsoleDevice struct {
	out     io.Writer
	scanner *bufio.Scanner
}

func NewConsoleDevice(in io.Reader, out io.Writer) tutorout.Device {
	return &ConsoleDevice{out: out, scanner: bufio.NewScanner(in)}
}

func (d *ConsoleDevice) Say(_ context.Context, text string) error {
	_, err := fmt.Fprintf(d.out, "🤖 %s\n", text)
	return err
}

func (d *ConsoleDevice) SetEmotion(_ context.Context, emotion string) error {
	_, err := fmt.Fprintf(d.out, "   [%s]\n", emotion)
	return err
}

func (d *ConsoleDevice) DoMotion(_ context.Context, motion string) error {
	_, err := fmt.Fprintf(d.out, "   *%s*\n", motion)
	return err
}

func (d *ConsoleDevice) Ask(ctx context.Context, prompt string) (string, error) {
	if err := d.Say(ctx, prompt); err != nil {
		return "", err
	}
	if _, err := fmt.Fprint(d.out, "👤 "); err != nil {
		return "", err
	}
	if !d.scanner.Scan() {
		if err := d.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(d.scanner.Text()), nil
}
