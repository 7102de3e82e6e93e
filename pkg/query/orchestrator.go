package query

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sona-ai/sona/pkg/backend"
	"github.com/sona-ai/sona/pkg/cache"
	"github.com/sona-ai/sona/pkg/config"
	"github.com/sona-ai/sona/pkg/models"
	"github.com/sona-ai/sona/pkg/ratelimit"
	"github.com/sona-ai/sona/pkg/search"
)

// contextExchanges is how many past exchanges are folded into the prompt.
const contextExchanges = 5

// ConversationLog is the conversation-log collaborator consumed by the
// orchestrator. Log failures never affect a query's outcome.
type ConversationLog interface {
	Append(ctx context.Context, conv models.Conversation) error
	Recent(ctx context.Context, n int) ([]models.Conversation, error)
}

// WebSearcher resolves explicit web-search questions. A nil searcher
// disables the search branch.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// Orchestrator governs every outbound backend call: cache lookup,
// admission, dispatch with retries, and cache/history updates.
type Orchestrator struct {
	cache    *cache.Cache
	limiter  *ratelimit.DualTierLimiter
	client   backend.Client
	history  ConversationLog
	searcher WebSearcher
	quotas   map[models.Tier]models.TierQuota

	language    string
	waitTimeout time.Duration
	maxAttempts int
	backoffBase time.Duration

	sleep func(time.Duration)
}

// New wires an Orchestrator from its collaborators and configuration.
func New(cfg *config.Config, c *cache.Cache, l *ratelimit.DualTierLimiter, client backend.Client, hist ConversationLog, searcher WebSearcher) *Orchestrator {
	return &Orchestrator{
		cache:       c,
		limiter:     l,
		client:      client,
		history:     hist,
		searcher:    searcher,
		quotas:      cfg.Tiers.Quotas(),
		language:    cfg.Speech.Language,
		waitTimeout: cfg.Admission.WaitTimeout.Std(),
		maxAttempts: cfg.Retry.MaxAttempts,
		backoffBase: cfg.Retry.Backoff.Std(),
		sleep:       time.Sleep,
	}
}

// Ask resolves one query. Every path returns a textual answer; errors
// along the way surface as user-facing text, never as panics.
func (o *Orchestrator) Ask(ctx context.Context, question string, imagePaths []string) models.Result {
	reqID := uuid.NewString()

	if o.searcher != nil {
		if q, ok := search.ExtractQuery(question); ok {
			return o.webSearch(ctx, reqID, q)
		}
	}

	metas := StatImages(imagePaths)
	key := Fingerprint(question, metas)

	if text, ok := o.cache.Get(key); ok {
		o.record(ctx, question, text, metas)
		return models.Result{RequestID: reqID, Text: text, Source: models.SourceCache}
	}

	tier, ok := o.limiter.WaitForToken(ctx, o.waitTimeout)
	if !ok {
		return models.Result{
			RequestID: reqID,
			Text:      o.unavailableMessage(),
			Source:    models.SourceUnavailable,
		}
	}

	prompt := o.buildPrompt(ctx, question)
	attachments := LoadAttachments(metas)
	model := o.quotas[tier].ModelFor(len(attachments) > 0)

	text, err := o.dispatch(ctx, model, prompt, attachments)
	if err != nil {
		log.Printf("request %s: backend failed: %v", reqID, err)
		msg := "Sorry, something went wrong while processing your question."
		if errors.Is(err, backend.ErrBlocked) {
			msg = "The answer was withheld by the model's safety filters."
		}
		return models.Result{RequestID: reqID, Text: msg, Source: models.SourceFailed, Tier: tier, Model: model}
	}

	text = Sanitize(text)
	o.cache.Set(key, text)
	o.record(ctx, question, text, metas)

	return models.Result{RequestID: reqID, Text: text, Source: models.SourceBackend, Tier: tier, Model: model}
}

// webSearch answers an explicit search question from the web instead of
// the model. It consumes no admission and touches neither the cache nor
// the history.
func (o *Orchestrator) webSearch(ctx context.Context, reqID, query string) models.Result {
	res := models.Result{RequestID: reqID, Source: models.SourceSearch}

	if query == "" {
		res.Text = "Please say what you want searched on the web."
		return res
	}

	snippets, err := o.searcher.Search(ctx, query)
	if err != nil {
		log.Printf("request %s: web search failed: %v", reqID, err)
		res.Text = "The web search is unavailable right now."
		return res
	}
	if len(snippets) == 0 {
		res.Text = "No relevant results found on the web."
		return res
	}

	res.Text = Sanitize("Web search results:\n" + strings.Join(snippets, "\n\n"))
	return res
}

// dispatch calls the backend, retrying transient failures with
// exponential backoff until the attempt cap.
func (o *Orchestrator) dispatch(ctx context.Context, model, prompt string, attachments []models.Attachment) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		text, err := o.client.Generate(ctx, model, prompt, attachments)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !backend.IsTransient(err) {
			return "", err
		}
		if attempt < o.maxAttempts {
			backoff := o.backoffBase * (1 << attempt)
			log.Printf("backend attempt %d/%d failed: %v (retrying in %v)", attempt, o.maxAttempts, err, backoff)
			o.sleep(backoff)
		}
	}
	return "", lastErr
}

// buildPrompt folds recent history into the prompt for conversational
// context. History failures degrade to a context-free prompt.
func (o *Orchestrator) buildPrompt(ctx context.Context, question string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Answer in %s, clearly and objectively, without opening greetings. ", o.language)
	b.WriteString("Consider the conversation context below:\n")

	if o.history != nil {
		recent, err := o.history.Recent(ctx, contextExchanges)
		if err != nil {
			log.Printf("history context unavailable: %v", err)
		}
		// Recent is newest-first; replay oldest-first.
		for i := len(recent) - 1; i >= 0; i-- {
			fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", recent[i].Question, recent[i].Response)
		}
	}

	fmt.Fprintf(&b, "User: %s\nAssistant:", question)
	return b.String()
}

// record appends the exchange to the conversation log. Failures are
// logged and ignored.
func (o *Orchestrator) record(ctx context.Context, question, response string, metas []models.ImageMeta) {
	if o.history == nil {
		return
	}
	paths := make([]string, 0, len(metas))
	for _, m := range metas {
		paths = append(paths, m.Path)
	}
	conv := models.Conversation{
		Question: question,
		Response: response,
		Images:   paths,
		Tags:     ExtractTags(question + " " + response),
	}
	if err := o.history.Append(ctx, conv); err != nil {
		log.Printf("history append failed: %v", err)
	}
}

// unavailableMessage embeds each tier's estimated wait so the user
// knows when to try again.
func (o *Orchestrator) unavailableMessage() string {
	waits := o.limiter.WaitTimes()

	tiers := make([]models.Tier, 0, len(waits))
	for tier := range waits {
		tiers = append(tiers, tier)
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i] < tiers[j] })

	parts := make([]string, 0, len(tiers))
	for _, tier := range tiers {
		parts = append(parts, fmt.Sprintf("%s: %.1fs", tier, waits[tier].Seconds()))
	}
	return "Service temporarily unavailable. Estimated wait per tier: " + strings.Join(parts, ", ")
}
