package assistant

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/sona-ai/sona/pkg/models"
	"github.com/sona-ai/sona/pkg/speech"
)

// captureTimeout bounds how long a question waits for screen context
// before proceeding without it.
const captureTimeout = 2 * time.Second

// defaultMaxWorkers bounds concurrent in-flight questions.
const defaultMaxWorkers = 4

// Asker resolves one question into an answer. The query orchestrator
// implements it.
type Asker interface {
	Ask(ctx context.Context, question string, imagePaths []string) models.Result
}

// Capturer provides screen context for a question.
type Capturer interface {
	Capture(ctx context.Context) ([]string, error)
	Cleanup()
}

// Assistant runs the listen loop: questions in, spoken answers out.
// Each detected question is handled on its own worker goroutine.
type Assistant struct {
	transcriber speech.Transcriber
	capturer    Capturer // nil disables screen context
	asker       Asker
	speaker     speech.Speaker
	normalizer  *speech.Normalizer
	maxWorkers  int
}

// New wires an Assistant. capturer may be nil.
func New(tr speech.Transcriber, capturer Capturer, asker Asker, speaker speech.Speaker, normalizer *speech.Normalizer) *Assistant {
	return &Assistant{
		transcriber: tr,
		capturer:    capturer,
		asker:       asker,
		speaker:     speaker,
		normalizer:  normalizer,
		maxWorkers:  defaultMaxWorkers,
	}
}

// Run processes questions until the transcriber is exhausted or ctx is
// cancelled. In-flight questions are drained before returning.
func (a *Assistant) Run(ctx context.Context) error {
	sem := make(chan struct{}, a.maxWorkers)
	var wg sync.WaitGroup

	defer func() {
		wg.Wait()
		if a.capturer != nil {
			a.capturer.Cleanup()
		}
	}()

	for {
		question, err := a.transcriber.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return nil
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			a.handle(ctx, question)
		}()
	}
}

// handle resolves one question end to end.
func (a *Assistant) handle(ctx context.Context, question string) {
	var images []string
	if a.capturer != nil {
		shotCtx, cancel := context.WithTimeout(ctx, captureTimeout)
		paths, err := a.capturer.Capture(shotCtx)
		cancel()
		if err != nil {
			log.Printf("screen capture unavailable: %v", err)
		} else {
			images = paths
		}
	}

	res := a.asker.Ask(ctx, question, images)
	log.Printf("request %s resolved via %s", res.RequestID, res.Source)

	text := res.Text
	if a.normalizer != nil {
		text = a.normalizer.Normalize(text)
	}
	if err := a.speaker.Say(ctx, text); err != nil {
		log.Printf("speaking answer failed: %v", err)
	}
}
