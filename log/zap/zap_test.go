package zap

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unkn0wn-root/cachify/log"
)

func TestZapForwardsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := ZapLogger{L: zap.New(core)}

	l.Debug("swept expired entries", log.Fields{"removed": 3})
	l.Error("boom", log.Fields{"err": errors.New("down")})

	all := logs.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}
	if got := all[0].ContextMap()["removed"]; got != int64(3) {
		t.Fatalf("removed field: got %v (%T)", got, got)
	}
	if got := all[1].ContextMap()["err"]; got != "down" {
		t.Fatalf("err field: got %v", got)
	}
	if all[1].Level != zapcore.ErrorLevel {
		t.Fatalf("level: got %v", all[1].Level)
	}
}
