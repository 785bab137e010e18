package handlers

import (
	"testing"

	"github.com/wonny/aptper/internal/external/asil"
)

func TestPickComplex(t *testing.T) {
	results := []asil.ComplexResult{
		{Seq: "1", Name: "남산타운힐즈"},
		{Seq: "2", Name: "남산타운"},
		{Seq: "3", Name: "남산타운2차"},
	}

	got := pickComplex(results, "남산타운")
	if got == nil || got.Seq != "2" {
		t.Errorf("pickComplex() = %+v, want exact match seq 2", got)
	}

	// 정확히 일치하는 항목이 없으면 첫 결과
	got = pickComplex(results, "없는단지")
	if got == nil || got.Seq != "1" {
		t.Errorf("pickComplex() = %+v, want first result", got)
	}

	if pickComplex(nil, "남산타운") != nil {
		t.Error("pickComplex(nil) should be nil")
	}
}
