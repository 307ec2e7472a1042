package main

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"testing"
)

func TestLoggerWrite(t *testing.T) {
	log := NewLog()

	fmt.Fprint(log, "one\ntw")
	fmt.Fprint(log, "o\nthree\n")

	if got := log.Window(5); !reflect.DeepEqual(got, []string{"one", "two", "three"}) {
		t.Fatalf("unexpected lines: %q", got)
	}
}

func TestLoggerScroll(t *testing.T) {
	log := NewLog()

	for i := 0; i < 10; i++ {
		log.Log("line", fmt.Sprint(i))
	}

	if got := log.Window(3); !reflect.DeepEqual(got, []string{"line 7", "line 8", "line 9"}) {
		t.Fatalf("expected the end of the log; have %q", got)
	}

	log.ScrollUp(3)
	log.ScrollUp(3)

	if got := log.Window(3); got[0] != "line 5" {
		t.Fatalf("expected to scroll up two lines; have %q", got)
	}

	// new lines don't move a scrolled log
	log.Log("line 10")

	if got := log.Window(3); got[0] != "line 5" {
		t.Fatalf("expected the window to stay put; have %q", got)
	}

	log.Home()

	if got := log.Window(3); got[0] != "line 0" {
		t.Fatalf("expected the start of the log; have %q", got)
	}

	log.ScrollUp(3)

	if got := log.Window(3); got[0] != "line 0" || len(got) != 3 {
		t.Fatalf("expected a full window at the start; have %q", got)
	}

	log.ScrollDown(3)

	if got := log.Window(3); got[0] != "line 1" {
		t.Fatalf("expected to scroll down; have %q", got)
	}

	log.End()

	if got := log.Window(1); got[0] != "line 10" {
		t.Fatalf("expected the end of the log; have %q", got)
	}
}

func TestLoggerLimit(t *testing.T) {
	log := NewLog()

	for i := 0; i < logLimit+10; i++ {
		log.Log(fmt.Sprint(i))
	}

	if log.Len() != logLimit {
		t.Fatalf("expected %d lines; have %d", logLimit, log.Len())
	}

	log.Home()

	if got := log.Window(1); got[0] != "10" {
		t.Fatalf("expected the oldest lines dropped; have %q", got)
	}
}

func TestLoggerSlog(t *testing.T) {
	log := NewLog()

	slog.New(slog.NewTextHandler(log, nil)).Info("boot", "rom", "PONG")

	got := log.Window(1)
	if len(got) != 1 || !strings.Contains(got[0], "msg=boot rom=PONG") {
		t.Fatalf("unexpected log line: %q", got)
	}
}
