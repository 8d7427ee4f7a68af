// Package rag contains the retrieval-augmented generation core: the
// per-message pipeline state machine and the context assembler.
package rag

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/aurora-labs/aurora/internal/ai"
	"github.com/aurora-labs/aurora/internal/chunk"
	"github.com/aurora-labs/aurora/internal/memory"
	"github.com/aurora-labs/aurora/internal/observability"
	"github.com/aurora-labs/aurora/internal/protocol"
	"github.com/aurora-labs/aurora/internal/session"
	"github.com/aurora-labs/aurora/internal/transcript"
)

// State names the pipeline steps a message moves through. The trace of
// visited states is part of every Result so tests can assert on
// transitions instead of side-effect ordering alone.
type State string

const (
	StateValidating            State = "validating"
	StateChunking              State = "chunking"
	StateIndexing              State = "indexing"
	StatePersistingUserMessage State = "persisting_user_message"
	StateQueryingMemory        State = "querying_memory"
	StateRefusing              State = "refusing"
	StateAssemblingContext     State = "assembling_context"
	StateGenerating            State = "generating"
	StatePersistingResponse    State = "persisting_response"
	StateDelivered             State = "delivered"
	StateFailed                State = "failed"
)

// Kind is the terminal classification of one message's pipeline run.
type Kind string

const (
	KindAnswered Kind = "answered"
	KindRefused  Kind = "refused"
	KindRejected Kind = "rejected"
	KindFailed   Kind = "failed"
)

// Result is the single terminal value of a pipeline run. Content is what
// was delivered to the session, including refusal and canned error text.
type Result struct {
	Kind    Kind
	Content string
	Trace   []State
}

// Canned user-visible replies. Internal error detail never reaches the
// session; failures all surface as GenericErrorReply.
const (
	EmptyMessageReply = "Cannot process empty message."
	GenericErrorReply = "An error occurred while processing your message."
)

// Orchestrator drives the end-to-end sequence per inbound message: chunk,
// embed, index, persist, query, assemble, generate, deliver, persist the
// response. It holds no per-message state; one Orchestrator serves all
// sessions concurrently.
type Orchestrator struct {
	splitter     *chunk.Splitter
	embedder     ai.Embedder
	generator    ai.Generator
	memories     memory.Store
	transcripts  transcript.Store
	metrics      *observability.Metrics
	queryLimit   int
	historyLimit int
}

func NewOrchestrator(
	splitter *chunk.Splitter,
	embedder ai.Embedder,
	generator ai.Generator,
	memories memory.Store,
	transcripts transcript.Store,
	metrics *observability.Metrics,
	queryLimit int,
	historyLimit int,
) *Orchestrator {
	if queryLimit <= 0 {
		queryLimit = 5
	}
	if historyLimit <= 0 {
		historyLimit = 20
	}
	return &Orchestrator{
		splitter:     splitter,
		embedder:     embedder,
		generator:    generator,
		memories:     memories,
		transcripts:  transcripts,
		metrics:      metrics,
		queryLimit:   queryLimit,
		historyLimit: historyLimit,
	}
}

// RunConnection consumes inbound events for one session until the channel
// closes or the context ends. Messages are processed strictly in order; a
// slow external call stalls only this connection.
func (o *Orchestrator) RunConnection(ctx context.Context, sess *session.Session, inbound <-chan any, outbound chan<- any) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-inbound:
			if !ok {
				return nil
			}
			msg, ok := raw.(protocol.ChatMessage)
			if !ok {
				continue
			}
			deliver := func(text string) {
				o.send(ctx, outbound, protocol.ChatResponse{
					Type:    protocol.TypeChatResponse,
					Content: text,
					Chat:    msg.Chat,
				})
			}
			o.HandleMessage(ctx, sess.UserID, msg.Chat, msg.Content, deliver)
		}
	}
}

// HandleMessage runs the pipeline state machine for one inbound message.
// The authenticated userID is threaded through every store call; it never
// comes from the message payload. deliver is invoked exactly once with the
// user-visible reply as soon as it is produced; response persistence
// happens after delivery and never blocks or repeats it.
func (o *Orchestrator) HandleMessage(ctx context.Context, userID, chatID, content string, deliver func(string)) Result {
	start := time.Now()
	trace := []State{StateValidating}

	fail := func(err error) Result {
		stage := classify(err)
		log.Printf("pipeline failed user=%s chat=%s stage=%s: %v", userID, chatID, stage, err)
		o.metrics.StageErrors.WithLabelValues(stage).Inc()
		deliver(GenericErrorReply)
		trace = append(trace, StateFailed)
		o.metrics.ObservePipeline(string(KindFailed), time.Since(start))
		return Result{Kind: KindFailed, Content: GenericErrorReply, Trace: trace}
	}

	if strings.TrimSpace(content) == "" {
		deliver(EmptyMessageReply)
		trace = append(trace, StateDelivered)
		o.metrics.ObservePipeline(string(KindRejected), time.Since(start))
		return Result{Kind: KindRejected, Content: EmptyMessageReply, Trace: trace}
	}

	trace = append(trace, StateChunking)
	chunks := o.splitter.Split(content)

	// Chunks are embedded and inserted sequentially; a failure partway
	// through aborts the rest of the pipeline. Already-indexed chunks
	// remain, there is no compensating rollback.
	trace = append(trace, StateIndexing)
	for _, c := range chunks {
		vec, err := o.embedder.Embed(ctx, c.Text)
		if err != nil {
			return fail(&EmbeddingError{Err: err})
		}
		pos := c.Position
		if err := o.memories.Insert(ctx, memory.Record{
			UserID:   userID,
			ChatID:   chatID,
			Source:   memory.SourceUserInput,
			Content:  c.Text,
			Position: &pos,
			Vector:   vec,
		}); err != nil {
			return fail(&StoreWriteError{Err: err})
		}
	}

	trace = append(trace, StatePersistingUserMessage)
	if err := o.transcripts.SaveMessage(ctx, transcript.Message{
		ChatID:  chatID,
		UserID:  userID,
		Role:    transcript.RoleUser,
		Content: content,
	}); err != nil {
		return fail(&StoreWriteError{Err: err})
	}

	// Retrieval embeds the full original message, not the chunks.
	trace = append(trace, StateQueryingMemory)
	queryVec, err := o.embedder.Embed(ctx, content)
	if err != nil {
		return fail(&EmbeddingError{Err: err})
	}
	matches, err := o.memories.Query(ctx, queryVec, o.queryLimit, memory.Filter{UserID: userID})
	if err != nil {
		return fail(&StoreQueryError{Err: err})
	}
	o.metrics.RetrievedFragments.Observe(float64(len(matches)))

	// Zero results is a first-class outcome, not an error. The canonical
	// refusal is emitted here without calling the generator; refusal text
	// is never stored as a model turn so boilerplate cannot poison future
	// retrieval.
	if len(matches) == 0 {
		trace = append(trace, StateRefusing)
		deliver(ai.RefusalMessage)
		trace = append(trace, StateDelivered)
		o.metrics.ObservePipeline(string(KindRefused), time.Since(start))
		return Result{Kind: KindRefused, Content: ai.RefusalMessage, Trace: trace}
	}

	trace = append(trace, StateAssemblingContext)
	recent, err := o.transcripts.Recent(ctx, chatID, o.historyLimit)
	if err != nil {
		return fail(&StoreQueryError{Err: err})
	}
	turns := Assemble(matches, recent)

	trace = append(trace, StateGenerating)
	reply, err := o.generator.Generate(ctx, turns)
	if err != nil {
		return fail(&GenerationError{Err: err})
	}

	// Deliver before persisting: the session gets the response as soon as
	// it is produced. Persistence failures after this point are logged and
	// counted but never re-delivered as errors.
	deliver(reply)

	trace = append(trace, StatePersistingResponse)
	o.persistResponse(ctx, userID, chatID, reply)

	trace = append(trace, StateDelivered)
	o.metrics.ObservePipeline(string(KindAnswered), time.Since(start))
	return Result{Kind: KindAnswered, Content: reply, Trace: trace}
}

// persistResponse stores the generated reply as a memory vector and a
// model transcript turn, in that order so transcript replay never reorders
// cause and effect.
func (o *Orchestrator) persistResponse(ctx context.Context, userID, chatID, reply string) {
	vec, err := o.embedder.Embed(ctx, reply)
	if err != nil {
		log.Printf("persist response embedding failed user=%s chat=%s: %v", userID, chatID, err)
		o.metrics.StageErrors.WithLabelValues("persist_response").Inc()
		return
	}
	if err := o.memories.Insert(ctx, memory.Record{
		UserID:  userID,
		ChatID:  chatID,
		Source:  memory.SourceAIResponse,
		Content: reply,
		Vector:  vec,
	}); err != nil {
		log.Printf("persist response memory write failed user=%s chat=%s: %v", userID, chatID, err)
		o.metrics.StageErrors.WithLabelValues("persist_response").Inc()
		return
	}
	if err := o.transcripts.SaveMessage(ctx, transcript.Message{
		ChatID:  chatID,
		UserID:  userID,
		Role:    transcript.RoleModel,
		Content: reply,
	}); err != nil {
		log.Printf("persist response transcript write failed user=%s chat=%s: %v", userID, chatID, err)
		o.metrics.StageErrors.WithLabelValues("persist_response").Inc()
	}
}

func (o *Orchestrator) send(ctx context.Context, outbound chan<- any, msg any) {
	select {
	case <-ctx.Done():
	case outbound <- msg:
	}
}
