package speech

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strings"
)

// Speaker voices an answer to the user.
type Speaker interface {
	Say(ctx context.Context, text string) error
}

// Transcriber yields recognized questions, one per call. It returns
// io.EOF when the input source is exhausted.
type Transcriber interface {
	Next(ctx context.Context) (string, error)
}

// CommandSpeaker shells out to an external text-to-speech command,
// passing the text as the final argument.
type CommandSpeaker struct {
	command string
	args    []string
}

// NewCommandSpeaker builds a Speaker from a command line such as
// "espeak -v pt-br" or "say".
func NewCommandSpeaker(commandLine string) *CommandSpeaker {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return &CommandSpeaker{}
	}
	return &CommandSpeaker{command: fields[0], args: fields[1:]}
}

// Say implements Speaker.
func (s *CommandSpeaker) Say(ctx context.Context, text string) error {
	if s.command == "" {
		return fmt.Errorf("no tts command configured")
	}
	args := append(append([]string{}, s.args...), text)
	cmd := exec.CommandContext(ctx, s.command, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("tts command %s: %w (%s)", s.command, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// PrintSpeaker writes answers to a writer instead of voicing them.
// It is the fallback when no TTS command is configured.
type PrintSpeaker struct {
	W io.Writer
}

// Say implements Speaker.
func (p *PrintSpeaker) Say(ctx context.Context, text string) error {
	_, err := fmt.Fprintln(p.W, text)
	return err
}

// LineTranscriber reads questions line by line from a reader. It is
// the portable stand-in for a microphone pipeline: pipe the output of
// any speech-to-text tool into it.
//
// Lines are read on an internal goroutine so Next can observe context
// cancellation while the reader is idle.
type LineTranscriber struct {
	results chan lineResult
}

type lineResult struct {
	text string
	err  error
}

// NewLineTranscriber creates a LineTranscriber over r.
func NewLineTranscriber(r io.Reader) *LineTranscriber {
	t := &LineTranscriber{results: make(chan lineResult)}
	go t.read(r)
	return t
}

func (t *LineTranscriber) read(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		t.results <- lineResult{text: line}
	}
	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	t.results <- lineResult{err: err}
	close(t.results)
}

// Next implements Transcriber. Blank lines are skipped. It returns as
// soon as ctx is cancelled, even with the underlying reader blocked.
func (t *LineTranscriber) Next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-t.results:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			if res.err != io.EOF {
				log.Printf("transcriber read error: %v", res.err)
			}
			return "", res.err
		}
		return res.text, nil
	}
}
