package usecase

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/kirillkom/hris-onboarding/internal/core/domain"
)

type kvFake struct {
	mu     sync.Mutex
	values map[string][]byte
	puts   int
	getErr error
	putErr error
}

func newKVFake() *kvFake {
	return &kvFake{values: map[string][]byte{}}
}

func (f *kvFake) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	raw, ok := f.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), raw...), true, nil
}

func (f *kvFake) Put(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.values[key] = append([]byte(nil), value...)
	f.puts++
	return nil
}

func (f *kvFake) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts
}

type publisherFake struct {
	mu     sync.Mutex
	events []domain.OnboardingEvent
	err    error
}

func (f *publisherFake) Publish(_ context.Context, event domain.OnboardingEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *publisherFake) types() []domain.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.EventType, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type validatorFake struct {
	err error
}

func (f validatorFake) Struct(any) error { return f.err }

var errValidatorRejected = errors.New("rejected")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return prefix + strconv.Itoa(n)
	}
}
