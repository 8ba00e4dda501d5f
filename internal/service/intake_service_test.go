package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lukepickard18/botz/internal/auth"
	"github.com/lukepickard18/botz/internal/domain"
	"github.com/lukepickard18/botz/internal/events"
	"github.com/lukepickard18/botz/internal/observability"
	"github.com/lukepickard18/botz/internal/platform"
	"github.com/lukepickard18/botz/pkg/util/errorutil"
)

var alice = platform.User{ID: "user-alice", Username: "Alice Smith", Tag: "alice#0001"}

type intakeFixture struct {
	gw         *fakeGateway
	repo       *memCounterRepo
	counter    *CounterService
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	svc        *IntakeService
}

func newIntakeFixture(t *testing.T, startAt int64) *intakeFixture {
	t.Helper()
	repo := &memCounterRepo{count: startAt}
	metrics := observability.NewMetrics()
	counter, err := NewCounterService(context.Background(), repo, zap.NewNop(), metrics)
	require.NoError(t, err)

	f := &intakeFixture{
		gw:         newFakeGateway(),
		repo:       repo,
		counter:    counter,
		dispatcher: events.NewInMemoryDispatcher(nil),
		metrics:    metrics,
	}
	f.svc = NewIntakeService(IntakeDependencies{
		Gateway:    f.gw,
		Counter:    counter,
		Config:     testTicketConfig(),
		Dispatcher: f.dispatcher,
		Metrics:    metrics,
		Now:        func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
	return f
}

func modalEvent(t *testing.T, customID string, user platform.User, fields map[string]string) events.Event {
	t.Helper()
	in := memberInteraction(platform.InteractionModalSubmit, customID, user)
	in.Fields = fields
	e, ok := events.InteractionEvent(in)
	require.True(t, ok)
	return e
}

func buttonEvent(t *testing.T, customID string, user platform.User, roleIDs ...string) events.Event {
	t.Helper()
	e, ok := events.InteractionEvent(memberInteraction(platform.InteractionButton, customID, user, roleIDs...))
	require.True(t, ok)
	return e
}

func TestIntake_CategoryButtonShowsModal(t *testing.T) {
	f := newIntakeFixture(t, 0)

	require.NoError(t, f.svc.HandleButton(context.Background(), buttonEvent(t, "payment_issues", alice)))

	require.Len(t, f.gw.modals, 1)
	modal := f.gw.modals[0]
	assert.Equal(t, "ticket_modal_payment_issues", modal.CustomID)
	require.Len(t, modal.Inputs, 3)
	assert.Equal(t, FieldTicketCategory, modal.Inputs[0].CustomID)
	assert.Equal(t, "Payment Issues", modal.Inputs[0].Value)
	assert.Equal(t, platform.TextInputParagraph, modal.Inputs[1].Style)
	assert.Equal(t, FieldTicketUsername, modal.Inputs[2].CustomID)
}

func TestIntake_IgnoresForeignButtons(t *testing.T) {
	f := newIntakeFixture(t, 0)

	require.NoError(t, f.svc.HandleButton(context.Background(), buttonEvent(t, CloseTicketButtonID, alice)))
	require.NoError(t, f.svc.HandleButton(context.Background(), buttonEvent(t, "unknown_thing", alice)))

	assert.Empty(t, f.gw.modals)
	assert.Empty(t, f.gw.replies)
	assert.Zero(t, f.counter.Current())
}

func TestIntake_ModalSubmitProvisionsTicket(t *testing.T) {
	f := newIntakeFixture(t, 41)
	var created []domain.Ticket
	f.dispatcher.Subscribe(events.EventTicketCreated, func(_ context.Context, e events.Event) error {
		created = append(created, *e.Ticket)
		return nil
	})

	err := f.svc.HandleModal(context.Background(), modalEvent(t, "ticket_modal_payment_issues", alice, map[string]string{
		FieldTicketCategory: "Payment Issues",
		FieldTicketIssue:    "double charge",
		FieldTicketUsername: "alice99",
	}))
	require.NoError(t, err)

	require.Len(t, f.gw.created, 1)
	req := f.gw.created[0]
	assert.Equal(t, "ticket-alice-smith-42", req.Name)
	assert.Equal(t, "open-cat", req.ParentID)
	assert.Equal(t, "guild-1", req.GuildID)
	assert.Equal(t, "Ticket #42 · Payment Issues · opened by alice#0001 · requester:user-alice", req.Topic)
	assert.Equal(t, auth.OverwritesFor(domain.PhaseOpen, alice.ID, "role-support", "guild-1"), req.Overwrites)

	require.Len(t, f.gw.sent, 1)
	summary := f.gw.sent[0]
	assert.Equal(t, "chan-1", summary.ChannelID)
	assert.Equal(t, "<@&role-support>", summary.Message.Content)
	require.Len(t, summary.Message.Embeds, 1)
	fields := map[string]string{}
	for _, fl := range summary.Message.Embeds[0].Fields {
		fields[fl.Name] = fl.Value
	}
	assert.Equal(t, "Payment Issues", fields["Category"])
	assert.Equal(t, "alice99", fields["Promote.fun Username"])
	assert.Equal(t, "double charge", fields["Issue"])
	assert.Equal(t, "<@user-alice>", fields["Requester"])
	assert.Equal(t, "Submitted by alice#0001", summary.Message.Embeds[0].Footer)
	require.Len(t, summary.Message.Buttons, 1)
	assert.Equal(t, CloseTicketButtonID, summary.Message.Buttons[0].CustomID)
	assert.Equal(t, platform.ButtonDanger, summary.Message.Buttons[0].Style)

	require.Len(t, f.gw.replies, 1)
	assert.Equal(t, replyCall{
		InteractionID: "ix-ticket_modal_payment_issues",
		Kind:          "reply",
		Content:       "✅ Your ticket has been created: <#chan-1>",
		Ephemeral:     true,
	}, f.gw.replies[0])

	assert.Equal(t, int64(42), f.repo.count)
	require.Len(t, created, 1)
	assert.Equal(t, int64(42), created[0].Number)
	assert.Equal(t, "chan-1", created[0].ChannelID)
	assert.Equal(t, int64(1), f.metrics.Snapshot().Counters[observability.MetricTicketsCreated])
}

func TestIntake_CategoryTextFallbackForUnknownModal(t *testing.T) {
	f := newIntakeFixture(t, 0)

	ticket, err := f.svc.CreateTicket(context.Background(), TicketCreateInput{
		CategoryID:   "legacy",
		CategoryText: "  Something Else ",
		Requester:    alice,
		Issue:        "help",
	})
	require.NoError(t, err)

	assert.Equal(t, "Something Else", ticket.Category.Label)
	assert.Equal(t, "-", f.gw.sent[0].Message.Embeds[0].Fields[1].Value)
}

func TestIntake_ChannelCreateFailureKeepsNumber(t *testing.T) {
	f := newIntakeFixture(t, 0)
	f.gw.createErr = errors.New("missing permissions")

	err := f.svc.HandleModal(context.Background(), modalEvent(t, "ticket_modal_general_support", alice, map[string]string{
		FieldTicketIssue: "hi",
	}))
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, errorutil.CodeProvisioningFailed))

	require.Len(t, f.gw.replies, 1)
	assert.Equal(t, "⚠️ Failed to create your ticket. Please try again later.", f.gw.replies[0].Content)
	assert.True(t, f.gw.replies[0].Ephemeral)
	assert.Empty(t, f.gw.sent)
	assert.Equal(t, int64(1), f.counter.Current())

	f.gw.createErr = nil
	ticket, err := f.svc.CreateTicket(context.Background(), TicketCreateInput{CategoryID: "general_support", Requester: alice})
	require.NoError(t, err)
	assert.Equal(t, int64(2), ticket.Number)
	assert.Equal(t, "ticket-alice-smith-2", ticket.ChannelName)
}

func TestIntake_SummaryFailureReportsChannel(t *testing.T) {
	f := newIntakeFixture(t, 0)
	f.gw.sendErr = errors.New("rate limited")

	err := f.svc.HandleModal(context.Background(), modalEvent(t, "ticket_modal_technical_support", alice, nil))
	require.Error(t, err)

	require.Len(t, f.gw.replies, 1)
	assert.Contains(t, f.gw.replies[0].Content, "<#chan-1>")
	assert.Equal(t, int64(1), f.metrics.Snapshot().Counters[observability.MetricProvisioningFailed])
}

func TestIntake_ConcurrentSubmissionsGetDistinctNumbers(t *testing.T) {
	const n = 25
	f := newIntakeFixture(t, 0)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateTicket(context.Background(), TicketCreateInput{CategoryID: "general_support", Requester: alice})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	names := map[string]bool{}
	for _, req := range f.gw.created {
		names[req.Name] = true
	}
	assert.Len(t, names, n)
	assert.Equal(t, int64(n), f.counter.Current())
	assert.Equal(t, int64(n), f.repo.count)
}
