package core

import (
	"context"
	"testing"
)

func TestOriginContext(t *testing.T) {
	if got := OriginFromContext(context.Background()); got != (Origin{}) {
		t.Errorf("OriginFromContext(empty) = %+v, want zero", got)
	}

	want := Origin{IP: "10.0.0.1", UserAgent: "curl/8"}
	ctx := ContextWithOrigin(context.Background(), want)
	if got := OriginFromContext(ctx); got != want {
		t.Errorf("OriginFromContext() = %+v, want %+v", got, want)
	}

	if args := (Origin{IP: "1.2.3.4"}).logArgs(); len(args) != 2 || args[0] != "client_ip" {
		t.Errorf("logArgs() = %v", args)
	}
	if args := (Origin{}).logArgs(); len(args) != 0 {
		t.Errorf("logArgs() = %v, want none", args)
	}
}
