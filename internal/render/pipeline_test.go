package render

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/rendergate/internal/engine"
	gerrors "git.home.luguber.info/inful/rendergate/internal/errors"
	"git.home.luguber.info/inful/rendergate/internal/formatter"
	"git.home.luguber.info/inful/rendergate/internal/mail"
	"git.home.luguber.info/inful/rendergate/internal/storage"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newTestPipeline(t *testing.T, mutate func(*Config)) *Pipeline {
	t.Helper()
	reg := formatter.NewRegistry()
	reg.MarkBaseline()
	cfg := Config{
		Engine:   engine.NewTagEngine(),
		Registry: reg,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg)
}

func baseRequest() Request {
	return Request{
		RequestID: "req-1",
		Template:  []byte("Hello {d.name}, your total is {d.total}!"),
		Filename:  "invoice.txt",
		RawData:   []byte(`{"name":"Ada","total":10}`),
	}
}

func TestInlineDeliveryWhenNoStore(t *testing.T) {
	p := newTestPipeline(t, nil)

	outcome, err := p.Handle(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, DeliveryInline, outcome.Mode)
	assert.Equal(t, "Hello Ada, your total is 10!", string(outcome.Body))
	assert.Equal(t, "invoice.txt", outcome.OutputName)
	assert.Empty(t, outcome.Hash)
}

func TestStoredDeliveryWhenStoreConfigured(t *testing.T) {
	store, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)
	p := newTestPipeline(t, func(cfg *Config) { cfg.Store = store })

	outcome, err := p.Handle(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, DeliveryStored, outcome.Mode)
	assert.True(t, store.IsHash(outcome.Hash))
	assert.Nil(t, outcome.Body, "stored delivery must not also carry inline bytes")

	bytes, err := store.Open(outcome.Hash)
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada, your total is 10!", string(bytes))
}

func TestMissingTemplateIsInvalidRequest(t *testing.T) {
	p := newTestPipeline(t, nil)

	req := baseRequest()
	req.Template = nil
	_, err := p.Handle(context.Background(), req)
	require.Error(t, err)
	assert.True(t, gerrors.IsCategory(err, gerrors.CategoryValidation))
}

func TestMalformedDataRendersWithEmptyMapping(t *testing.T) {
	p := newTestPipeline(t, nil)

	req := baseRequest()
	req.RawData = []byte("{{{{ not json")
	outcome, err := p.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Hello , your total is !", string(outcome.Body))
}

func TestMalformedOptionsUsesInferredDefaults(t *testing.T) {
	p := newTestPipeline(t, nil)

	req := baseRequest()
	req.RawOptions = []byte("not json at all")
	outcome, err := p.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "invoice.txt", outcome.OutputName)
}

func TestCustomFormatterAppliesWithinRequest(t *testing.T) {
	p := newTestPipeline(t, nil)

	req := baseRequest()
	req.Template = []byte("{d.name:shout}")
	req.RawFormatters = []byte(`{"shout":{"ops":[{"name":"upper"},{"name":"suffix","args":["!"]}]}}`)
	outcome, err := p.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "ADA!", string(outcome.Body))
}

func TestCustomFormatterDoesNotLeakToNextRequest(t *testing.T) {
	p := newTestPipeline(t, nil)

	first := baseRequest()
	first.Template = []byte("{d.name:shout}")
	first.RawFormatters = []byte(`{"shout":{"ops":[{"name":"upper"}]}}`)
	_, err := p.Handle(context.Background(), first)
	require.NoError(t, err)

	// The second request supplies no formatters; "shout" must be gone.
	second := baseRequest()
	second.Template = []byte("{d.name:shout}")
	_, err = p.Handle(context.Background(), second)
	require.Error(t, err)
	assert.True(t, gerrors.IsCategory(err, gerrors.CategoryRender))
}

func TestRegistryRestoredAfterRenderFailure(t *testing.T) {
	reg := formatter.NewRegistry()
	reg.MarkBaseline()
	baselineLen := reg.Len()
	p := New(Config{Engine: engine.NewTagEngine(), Registry: reg})

	req := baseRequest()
	req.Template = []byte("{d.x:doesnotexist()}")
	req.RawFormatters = []byte(`{"tmp":{"ops":[{"name":"upper"}]}}`)
	_, err := p.Handle(context.Background(), req)
	require.Error(t, err)

	assert.Equal(t, baselineLen, reg.Len(), "registry must be restored to baseline after failure")
	_, ok := reg.Lookup("tmp")
	assert.False(t, ok)
}

func TestRenderFailureSkipsDelivery(t *testing.T) {
	store, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)
	p := newTestPipeline(t, func(cfg *Config) { cfg.Store = store })

	req := baseRequest()
	req.Template = []byte("broken {d.name")
	_, err = p.Handle(context.Background(), req)
	require.Error(t, err)
	assert.True(t, gerrors.IsCategory(err, gerrors.CategoryRender))
}

func TestEmailSent(t *testing.T) {
	mailer := &fakeMailer{}
	p := newTestPipeline(t, func(cfg *Config) { cfg.Mailer = mailer })

	req := baseRequest()
	req.RawEmail = []byte(`{"to":["ops@example.com"],"subject":"Invoice","text":"Attached."}`)
	outcome, err := p.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, outcome.Emailed)

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, []string{"ops@example.com"}, msg.To)
	assert.Equal(t, "Invoice", msg.Subject)
	assert.Equal(t, "invoice.txt", msg.AttachmentName)
	assert.Equal(t, "Hello Ada, your total is 10!", string(msg.Attachment))
}

func TestInvalidEmailDirectiveDoesNotFailRequest(t *testing.T) {
	mailer := &fakeMailer{}
	p := newTestPipeline(t, func(cfg *Config) { cfg.Mailer = mailer })

	req := baseRequest()
	req.RawEmail = []byte(`{"to":["ok@example.com",42],"subject":"s","text":"b"}`)
	outcome, err := p.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, outcome.Emailed)
	assert.Empty(t, mailer.sent)
	assert.Equal(t, DeliveryInline, outcome.Mode)
	assert.Equal(t, "Hello Ada, your total is 10!", string(outcome.Body))
}

func TestEmailTransportFailureIsSwallowed(t *testing.T) {
	mailer := &fakeMailer{err: fmt.Errorf("connection refused")}
	p := newTestPipeline(t, func(cfg *Config) { cfg.Mailer = mailer })

	req := baseRequest()
	req.RawEmail = []byte(`{"to":["ops@example.com"],"subject":"s","text":"b"}`)
	outcome, err := p.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, outcome.Emailed)
}

func TestEmptyRecipientListSendsNothing(t *testing.T) {
	mailer := &fakeMailer{}
	p := newTestPipeline(t, func(cfg *Config) { cfg.Mailer = mailer })

	req := baseRequest()
	req.RawEmail = []byte(`{"to":[],"subject":"s","text":"b"}`)
	outcome, err := p.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, outcome.Emailed)
	assert.Empty(t, mailer.sent)
}

func TestEmailWithoutMailerIsIgnored(t *testing.T) {
	p := newTestPipeline(t, nil)

	req := baseRequest()
	req.RawEmail = []byte(`{"to":["ops@example.com"],"subject":"s","text":"b"}`)
	outcome, err := p.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, outcome.Emailed)
}

func TestStoredContentDeduplicates(t *testing.T) {
	store, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)
	p := newTestPipeline(t, func(cfg *Config) { cfg.Store = store })

	first, err := p.Handle(context.Background(), baseRequest())
	require.NoError(t, err)
	second, err := p.Handle(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, first.Hash, second.Hash)
}

func TestConcurrentRendersAreIsolated(t *testing.T) {
	p := newTestPipeline(t, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 40)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := baseRequest()
			req.Template = []byte("{d.name:shout}")
			req.RawFormatters = []byte(`{"shout":{"ops":[{"name":"upper"}]}}`)
			outcome, err := p.Handle(context.Background(), req)
			if err != nil {
				errs <- err
				return
			}
			if string(outcome.Body) != "ADA" {
				errs <- fmt.Errorf("custom render got %q", outcome.Body)
			}
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			req := baseRequest()
			req.Template = []byte("{d.name:upper}")
			outcome, err := p.Handle(context.Background(), req)
			if err != nil {
				errs <- err
				return
			}
			if string(outcome.Body) != "ADA" {
				errs <- fmt.Errorf("baseline render got %q", outcome.Body)
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
