package service

import (
	"context"
	"sync"

	"github.com/gct-et/assistant/internal/llm"
)

// fakeClient is an llm.Client that records every call.
type fakeClient struct {
	mu sync.Mutex

	calls          []string
	completeReqs   []*llm.CompletionRequest
	imageReqs      []*llm.ImageRequest
	speechReqs     []*llm.SpeechRequest
	completeResp   *llm.CompletionResponse
	completeErr    error
	imageResp      *llm.ImageResponse
	imageErr       error
	speechResp     *llm.SpeechResponse
	speechErr      error
	completeSignal chan struct{}
	completeBlock  chan struct{}
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		completeResp: &llm.CompletionResponse{Content: "<p>ok</p>", Model: "fake-text"},
	}
}

func (f *fakeClient) Name() string     { return "fake" }
func (f *fakeClient) Models() []string { return []string{"fake-text", "fake-image", "fake-tts"} }

func (f *fakeClient) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "complete")
	f.completeReqs = append(f.completeReqs, req)
	signal, block := f.completeSignal, f.completeBlock
	resp, err := f.completeResp, f.completeErr
	f.mu.Unlock()

	if signal != nil {
		signal <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (f *fakeClient) GenerateImage(ctx context.Context, req *llm.ImageRequest) (*llm.ImageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "image")
	f.imageReqs = append(f.imageReqs, req)
	if f.imageErr != nil {
		return nil, f.imageErr
	}
	if f.imageResp == nil {
		return &llm.ImageResponse{}, nil
	}
	return f.imageResp, nil
}

func (f *fakeClient) Synthesize(ctx context.Context, req *llm.SpeechRequest) (*llm.SpeechResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "speech")
	f.speechReqs = append(f.speechReqs, req)
	if f.speechErr != nil {
		return nil, f.speechErr
	}
	return f.speechResp, nil
}

func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeClient) LastComplete() *llm.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.completeReqs) == 0 {
		return nil
	}
	return f.completeReqs[len(f.completeReqs)-1]
}
