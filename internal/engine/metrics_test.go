package engine

import (
	"context"
	"errors"
	"testing"
)

func TestTrackOperationPassesResultThrough(t *testing.T) {
	wantErr := errors.New("flow failed")
	err := TrackOperation(context.Background(), "failing", func(context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "v")
	var got any
	if err := TrackOperation(ctx, "ok", func(c context.Context) error {
		got = c.Value(ctxKey{})
		return nil
	}); err != nil {
		t.Errorf("err = %v, want nil", err)
	}
	if got != "v" {
		t.Error("context not passed through to the operation")
	}
}
