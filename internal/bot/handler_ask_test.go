package bot

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestHandleAsk_Success(t *testing.T) {
	llmFake := &fakeLLM{answer: "The answer is 4."}
	b := newTestBot(llmFake)
	t.Cleanup(func() { b.limiter.Stop() })
	s := newFakeSession()

	i := newCommandInteraction(cmdAsk, newMember("user-1", false), askOptions("m1", "2+2?"))
	b.handleAsk(s, i)

	if s.ackCount != 1 {
		t.Errorf("Expected one deferred acknowledgment, got %d", s.ackCount)
	}
	if len(s.edits) != 1 {
		t.Fatalf("Expected one response edit, got %d", len(s.edits))
	}

	reply := s.edits[0]
	if !strings.Contains(reply, "Model: m1") {
		t.Errorf("Reply should contain 'Model: m1', got: %s", reply)
	}
	if !strings.Contains(reply, "2+2?") {
		t.Errorf("Reply should contain the question, got: %s", reply)
	}
	if !strings.Contains(reply, "The answer is 4.") {
		t.Errorf("Reply should contain the answer verbatim, got: %s", reply)
	}
}

func TestHandleAsk_RejectsDM(t *testing.T) {
	llmFake := &fakeLLM{answer: "hi"}
	b := newTestBot(llmFake)
	t.Cleanup(func() { b.limiter.Stop() })
	s := newFakeSession()

	i := newCommandInteraction(cmdAsk, nil, askOptions("m1", "hello"))
	i.GuildID = ""
	i.User = &discordgo.User{ID: "user-1", Username: "alice"}

	b.handleAsk(s, i)

	if llmFake.calls != 0 {
		t.Error("LLM must not be called for a DM invocation")
	}
	if len(s.ephemerals) != 1 || !strings.Contains(s.ephemerals[0], "server") {
		t.Errorf("Expected a server-only rejection, got: %v", s.ephemerals)
	}
}

func TestHandleAsk_MissingOptionsRejected(t *testing.T) {
	llmFake := &fakeLLM{answer: "hi"}
	b := newTestBot(llmFake)
	t.Cleanup(func() { b.limiter.Stop() })
	s := newFakeSession()

	// A stale global schema can deliver the command without its options.
	i := newCommandInteraction(cmdAsk, newMember("user-1", false), nil)
	b.handleAsk(s, i)

	if llmFake.calls != 0 {
		t.Error("LLM must not be called without a model and question")
	}
	if len(s.ephemerals) != 1 || !strings.Contains(s.ephemerals[0], "required") {
		t.Errorf("Expected a validation rejection, got: %v", s.ephemerals)
	}
	if s.ackCount != 0 {
		t.Error("Malformed commands must not be acknowledged as deferred")
	}

	// The rejection must not burn the user's cooldown.
	i = newCommandInteraction(cmdAsk, newMember("user-1", false), askOptions("m1", "2+2?"))
	b.handleAsk(s, i)
	if llmFake.calls != 1 {
		t.Errorf("A valid follow-up request should reach the LLM, got %d calls", llmFake.calls)
	}
}

func TestHandleAsk_RateLimited(t *testing.T) {
	llmFake := &fakeLLM{answer: "hi"}
	b := newTestBot(llmFake)
	t.Cleanup(func() { b.limiter.Stop() })
	s := newFakeSession()

	i := newCommandInteraction(cmdAsk, newMember("user-1", false), askOptions("m1", "q"))
	b.handleAsk(s, i)
	b.handleAsk(s, i)

	if llmFake.calls != 1 {
		t.Errorf("Second request within cooldown must not reach the LLM, got %d calls", llmFake.calls)
	}
	if len(s.ephemerals) != 1 || !strings.Contains(s.ephemerals[0], "wait") {
		t.Errorf("Expected a wait message, got: %v", s.ephemerals)
	}
}

func TestHandleAsk_RestrictionBlocksNonAdmin(t *testing.T) {
	llmFake := &fakeLLM{answer: "hi"}
	b := newTestBot(llmFake)
	t.Cleanup(func() { b.limiter.Stop() })
	b.restricted.Store(true)
	s := newFakeSession()

	i := newCommandInteraction(cmdAsk, newMember("user-1", false), askOptions("gpt-x", "q"))
	b.handleAsk(s, i)

	if llmFake.calls != 0 {
		t.Error("Restricted non-admin request must be rejected before any LLM call")
	}
	if len(s.ephemerals) != 1 || !strings.Contains(s.ephemerals[0], "free-model") {
		t.Errorf("Expected a restriction explanation naming the free model, got: %v", s.ephemerals)
	}
}

func TestHandleAsk_RestrictionAllowsAdmin(t *testing.T) {
	llmFake := &fakeLLM{answer: "hi"}
	b := newTestBot(llmFake)
	t.Cleanup(func() { b.limiter.Stop() })
	b.restricted.Store(true)
	s := newFakeSession()

	i := newCommandInteraction(cmdAsk, newMember("admin-1", true), askOptions("gpt-x", "q"))
	b.handleAsk(s, i)

	if llmFake.calls != 1 {
		t.Errorf("Admin must bypass the restriction, got %d LLM calls", llmFake.calls)
	}
}

func TestHandleAsk_RestrictionAllowsFreeModel(t *testing.T) {
	llmFake := &fakeLLM{answer: "hi"}
	b := newTestBot(llmFake)
	t.Cleanup(func() { b.limiter.Stop() })
	b.restricted.Store(true)
	s := newFakeSession()

	i := newCommandInteraction(cmdAsk, newMember("user-1", false), askOptions("free-model", "q"))
	b.handleAsk(s, i)

	if llmFake.calls != 1 {
		t.Errorf("Free model must stay available under restriction, got %d LLM calls", llmFake.calls)
	}
}

func TestHandleAsk_LLMFailureShowsGenericMessage(t *testing.T) {
	llmFake := &fakeLLM{err: errNetwork}
	b := newTestBot(llmFake)
	t.Cleanup(func() { b.limiter.Stop() })
	s := newFakeSession()

	i := newCommandInteraction(cmdAsk, newMember("user-1", false), askOptions("m1", "q"))
	b.handleAsk(s, i)

	if len(s.edits) != 1 {
		t.Fatalf("Expected the acknowledgment to be edited, got %d edits", len(s.edits))
	}
	if s.edits[0] != genericFailure {
		t.Errorf("User must see the generic failure message, got: %s", s.edits[0])
	}
	if strings.Contains(s.edits[0], "connection reset") {
		t.Error("The underlying error must never reach the user")
	}
}

func TestHandleAsk_DeliveryFallsBackToDM(t *testing.T) {
	llmFake := &fakeLLM{answer: "hello"}
	b := newTestBot(llmFake)
	t.Cleanup(func() { b.limiter.Stop() })
	s := newFakeSession()
	s.editErr = restError(discordgo.ErrCodeMissingPermissions)

	i := newCommandInteraction(cmdAsk, newMember("user-1", false), askOptions("m1", "q"))
	b.handleAsk(s, i)

	if len(s.sent["dm-chan"]) != 1 {
		t.Fatalf("Expected the answer in a DM, got: %v", s.sent)
	}
	if !strings.Contains(s.sent["dm-chan"][0], "hello") {
		t.Errorf("DM should carry the answer, got: %s", s.sent["dm-chan"][0])
	}
}
