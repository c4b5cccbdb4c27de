package pipeline

import (
	"bytes"
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/Rahulrocknov18/meetingsummarizer/pkg/analysis"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/meetings"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/speech"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateMeeting(ctx context.Context, in meetings.NewMeeting) (*meetings.Meeting, error) {
	args := m.Called(ctx, in)
	if v := args.Get(0); v != nil {
		return v.(*meetings.Meeting), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) GetMeeting(ctx context.Context, id string) (*meetings.Meeting, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*meetings.Meeting), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) TransitionStatus(ctx context.Context, id string, from []meetings.Status, to meetings.Status) error {
	return m.Called(ctx, id, from, to).Error(0)
}

func (m *mockStore) MarkFailed(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) SetTranscribed(ctx context.Context, id string, durationSeconds int) error {
	return m.Called(ctx, id, durationSeconds).Error(0)
}

func (m *mockStore) CreateTranscript(ctx context.Context, in meetings.NewTranscript) (*meetings.Transcript, error) {
	args := m.Called(ctx, in)
	if v := args.Get(0); v != nil {
		return v.(*meetings.Transcript), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) LatestTranscript(ctx context.Context, meetingID string) (*meetings.Transcript, error) {
	args := m.Called(ctx, meetingID)
	if v := args.Get(0); v != nil {
		return v.(*meetings.Transcript), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) CreateSummary(ctx context.Context, in meetings.NewSummary) (*meetings.Summary, error) {
	args := m.Called(ctx, in)
	if v := args.Get(0); v != nil {
		return v.(*meetings.Summary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) LatestSummary(ctx context.Context, meetingID string) (*meetings.Summary, error) {
	args := m.Called(ctx, meetingID)
	if v := args.Get(0); v != nil {
		return v.(*meetings.Summary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) CreateActionItem(ctx context.Context, in meetings.NewActionItem) (*meetings.ActionItem, error) {
	args := m.Called(ctx, in)
	if v := args.Get(0); v != nil {
		return v.(*meetings.ActionItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) ListActionItems(ctx context.Context, meetingID string) ([]meetings.ActionItem, error) {
	args := m.Called(ctx, meetingID)
	if v := args.Get(0); v != nil {
		return v.([]meetings.ActionItem), args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeBlob is an in-memory blob store.
type fakeBlob struct {
	objects map[string][]byte
	deleted []string
	putErr  error
	openErr error
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{objects: make(map[string][]byte)}
}

func (f *fakeBlob) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	url := "http://blobs.test/" + key
	f.objects[url] = data
	return url, nil
}

func (f *fakeBlob) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	data, ok := f.objects[url]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeBlob) Delete(ctx context.Context, url string) error {
	if _, ok := f.objects[url]; !ok {
		return io.ErrUnexpectedEOF
	}
	delete(f.objects, url)
	f.deleted = append(f.deleted, url)
	return nil
}

// fakeTranscriber counts calls so idempotency tests can assert the speech
// capability was never hit.
type fakeTranscriber struct {
	calls  int
	result *speech.Result
	err    error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, req speech.Request) (*speech.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeAnalyzer struct {
	calls  int
	result *analysis.Result
	err    error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, transcript string) (*analysis.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}
