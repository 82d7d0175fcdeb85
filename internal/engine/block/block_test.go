package block

import (
	"reflect"
	"testing"

	"github.com/nkoval/docsift/internal/engine/classify"
)

// feed offers lines until one closes the block, returning the closed block
// and the index of the first unconsumed line (-1 if all consumed).
func feed(e *Extractor, lines []string) (*Block, int) {
	for i, ln := range lines {
		blk, consumed := e.Offer(ln)
		if blk != nil {
			if consumed {
				return blk, -1
			}
			return blk, i
		}
		if !consumed {
			return nil, i
		}
	}
	return nil, -1
}

func TestSimpleBlock(t *testing.T) {
	var e Extractor
	e.Open(classify.KindCode)
	blk, unconsumed := feed(&e, []string{
		"    x = 1",
		"    y = 2",
		"",
		"INFO    -  next thing",
	})
	if blk == nil {
		t.Fatal("expected closed block")
	}
	if unconsumed != 3 {
		t.Fatalf("closing line should be pushed back, got index %d", unconsumed)
	}
	want := []string{"x = 1", "y = 2"}
	if !reflect.DeepEqual(blk.Lines, want) {
		t.Fatalf("lines = %q, want %q", blk.Lines, want)
	}
	if e.Active() {
		t.Fatal("extractor should be idle after close")
	}
}

func TestInternalBlankPreserved(t *testing.T) {
	var e Extractor
	e.Open(classify.KindCode)
	blk, _ := feed(&e, []string{
		"    import os",
		"",
		"    print(os.getcwd())",
		"",
		"done",
	})
	if blk == nil {
		t.Fatal("expected closed block")
	}
	want := []string{"import os", "", "print(os.getcwd())"}
	if !reflect.DeepEqual(blk.Lines, want) {
		t.Fatalf("lines = %q, want %q", blk.Lines, want)
	}
}

func TestLeadingBlankTolerated(t *testing.T) {
	var e Extractor
	e.Open(classify.KindOutput)
	blk, _ := feed(&e, []string{
		"",
		"    Traceback (most recent call last):",
		"    ValueError: test error",
		"",
		"WARNING -  next",
	})
	if blk == nil {
		t.Fatal("expected closed block")
	}
	if len(blk.Lines) != 2 {
		t.Fatalf("got %d lines: %q", len(blk.Lines), blk.Lines)
	}
	if blk.Kind != classify.KindOutput {
		t.Fatalf("kind = %v", blk.Kind)
	}
}

func TestDeeperIndentKept(t *testing.T) {
	var e Extractor
	e.Open(classify.KindCode)
	blk, _ := feed(&e, []string{
		"    def f():",
		"        return 1",
		"",
		"end",
	})
	want := []string{"def f():", "    return 1"}
	if blk == nil || !reflect.DeepEqual(blk.Lines, want) {
		t.Fatalf("got %v", blk)
	}
}

func TestLabelWithNoContent(t *testing.T) {
	var e Extractor
	e.Open(classify.KindCode)
	blk, consumed := e.Offer("WARNING -  unrelated")
	if blk == nil || len(blk.Lines) != 0 {
		t.Fatalf("expected empty closed block, got %v", blk)
	}
	if consumed {
		t.Fatal("dedented line must not be consumed")
	}
}

func TestFlushPartial(t *testing.T) {
	var e Extractor
	e.Open(classify.KindCode)
	e.Offer("    x = 1")
	blk := e.Flush()
	if blk == nil || len(blk.Lines) != 1 {
		t.Fatalf("flush: got %v", blk)
	}
	if e.Active() {
		t.Fatal("flush must reset state")
	}
	if e.Flush() != nil {
		t.Fatal("second flush should return nil")
	}
}

func TestIdleOffer(t *testing.T) {
	var e Extractor
	blk, consumed := e.Offer("anything")
	if blk != nil || consumed {
		t.Fatal("idle extractor must not consume lines")
	}
}

func TestOpenDiscardsPrevious(t *testing.T) {
	var e Extractor
	e.Open(classify.KindCode)
	e.Offer("    old content")
	e.Open(classify.KindOutput)
	blk := e.Flush()
	if len(blk.Lines) != 0 || blk.Kind != classify.KindOutput {
		t.Fatalf("got %v", blk)
	}
}
