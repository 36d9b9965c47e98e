package workerproc

import (
	"context"
	"errors"
	"testing"

	"resume-matcher/internal/queue"
)

type recordingProcessor struct {
	msgs []queue.Message
	err  error
}

func (p *recordingProcessor) Run(ctx context.Context, msg queue.Message) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

func TestParseMessage(t *testing.T) {
	body := `{"logId": "log-1", "requestId": "req-1", "filePaths": ["k1"], "version": 1}`

	msg, meta, err := ParseMessage(body)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if msg.LogID != "log-1" || msg.RequestID != "req-1" || len(msg.FilePaths) != 1 {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if meta.BodyLen != len(body) || meta.BodySHA == "" {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}

func TestParseMessageEmptyBody(t *testing.T) {
	_, _, err := ParseMessage("   ")
	var emptyErr ErrEmptyBody
	if !errors.As(err, &emptyErr) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
}

func TestParseMessageMalformedJSON(t *testing.T) {
	_, meta, err := ParseMessage("{oops")
	var decodeErr ErrDecode
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if meta.BodyLen != 5 {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}

func TestParseMessageMissingLogID(t *testing.T) {
	_, _, err := ParseMessage(`{"requestId": "req-1", "filePaths": ["k1"]}`)
	var missingErr ErrMissingLogID
	if !errors.As(err, &missingErr) {
		t.Fatalf("expected ErrMissingLogID, got %v", err)
	}
	if missingErr.RequestID != "req-1" {
		t.Fatalf("request id not carried: %+v", missingErr)
	}
}

func TestHandleMessageRunsProcessor(t *testing.T) {
	proc := &recordingProcessor{}
	body := `{"logId": "log-1", "requestId": "req-1", "filePaths": ["k1"]}`

	if err := HandleMessage(context.Background(), proc, body); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(proc.msgs) != 1 || proc.msgs[0].LogID != "log-1" {
		t.Fatalf("processor not invoked correctly: %+v", proc.msgs)
	}
}

func TestHandleMessageReusesParsedMessage(t *testing.T) {
	proc := &recordingProcessor{}
	parsed := queue.Message{LogID: "log-1", RequestID: "req-1"}
	ctx := WithParsedMessage(context.Background(), parsed)

	// Body is unparseable; the pre-parsed message must win.
	if err := HandleMessage(ctx, proc, "{broken"); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(proc.msgs) != 1 || proc.msgs[0].LogID != "log-1" {
		t.Fatalf("parsed message not reused: %+v", proc.msgs)
	}
}

func TestHandleMessageWrapsProcessorError(t *testing.T) {
	cause := errors.New("store unreachable")
	proc := &recordingProcessor{err: cause}
	body := `{"logId": "log-1"}`

	err := HandleMessage(context.Background(), proc, body)
	var procErr ErrProcess
	if !errors.As(err, &procErr) {
		t.Fatalf("expected ErrProcess, got %v", err)
	}
	if procErr.LogID != "log-1" || !errors.Is(err, cause) {
		t.Fatalf("error fields lost: %+v", procErr)
	}
}

func TestHandleMessageNilProcessor(t *testing.T) {
	if err := HandleMessage(context.Background(), nil, `{"logId": "log-1"}`); err == nil {
		t.Fatal("expected error for nil processor")
	}
}
