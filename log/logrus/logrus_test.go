package logrus

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/unkn0wn-root/cachify/log"
)

func TestLogrusForwardsLevelAndFields(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := New(base)

	l.Debug("redis get error (silent mode)", log.Fields{"op": "get", "key": "cachify:f:k"})
	l.Warn("storage set failed", nil)

	entries := hook.AllEntries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != logrus.DebugLevel || entries[0].Data["op"] != "get" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Level != logrus.WarnLevel || entries[1].Message != "storage set failed" {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}
