package vision

import (
	"errors"
	"testing"
)

func TestParseResult(t *testing.T) {
	reply := `{"documentType":"invoice","vendor":"ACME","total":"129.00","totalError":[]}`
	result, err := ParseResult(reply)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if result.DocumentType != "invoice" {
		t.Errorf("documentType = %q, want invoice", result.DocumentType)
	}
	if result.HasError() {
		t.Errorf("empty totalError must not flag an error")
	}
	if string(result.Raw) != reply {
		t.Errorf("raw payload must be preserved verbatim")
	}
}

func TestParseResultLowConfidenceFields(t *testing.T) {
	reply := `{"documentType":"receipt","totalError":["total","date"]}`
	result, err := ParseResult(reply)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !result.HasError() {
		t.Errorf("non-empty totalError must flag an error")
	}
}

func TestParseResultRejectsNonJSON(t *testing.T) {
	_, err := ParseResult("I could not read this document, sorry.")
	if !errors.Is(err, ErrModelParse) {
		t.Errorf("ParseResult on prose = %v, want ErrModelParse", err)
	}
}
