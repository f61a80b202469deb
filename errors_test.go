package foodstate

import (
	"errors"
	"strings"
	"testing"
)

// TestSentinelErrors verifies that all sentinel errors are defined correctly.
func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "ErrNodeNotFound",
			err:  ErrNodeNotFound,
			want: "taxon not found",
		},
		{
			name: "ErrPartUnknown",
			err:  ErrPartUnknown,
			want: "part unknown",
		},
		{
			name: "ErrTransformNotFound",
			err:  ErrTransformNotFound,
			want: "transform not found",
		},
		{
			name: "ErrInvalidParams",
			err:  ErrInvalidParams,
			want: "invalid parameters",
		},
		{
			name: "ErrStructural",
			err:  ErrStructural,
			want: "structural violation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatalf("sentinel error %s is nil", tt.name)
			}
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("error message = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestErrorFormatting verifies the Error() method formatting.
func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "basic error",
			err: &Error{
				Op:   "Graph.Node",
				Kind: KindNotFound,
				Err:  ErrNodeNotFound,
			},
			want: "foodstate: Graph.Node (not_found): taxon not found",
		},
		{
			name: "error with context",
			err: &Error{
				Op:   "Engine.Compose",
				Kind: KindValidation,
				Err:  ErrInvalidParams,
				Context: map[string]any{
					"transform": "grill",
				},
			},
			want: "foodstate: Engine.Compose (validation): invalid parameters [context:",
		},
		{
			name: "error without underlying error",
			err: &Error{
				Op:   "NewGraph",
				Kind: KindStructural,
			},
			want: "foodstate: NewGraph: structural",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if !strings.HasPrefix(got, tt.want) {
				t.Errorf("Error() = %q, want prefix %q", got, tt.want)
			}
		})
	}
}

// TestErrorUnwrap verifies errors.Is and errors.As work through Error.
func TestErrorUnwrap(t *testing.T) {
	base := NewNotFoundError("Graph.Node", ErrNodeNotFound)

	if !errors.Is(base, ErrNodeNotFound) {
		t.Error("errors.Is should match the wrapped sentinel")
	}

	var structured *Error
	if !errors.As(base, &structured) {
		t.Fatal("errors.As should extract *Error")
	}
	if structured.Kind != KindNotFound {
		t.Errorf("Kind = %q, want %q", structured.Kind, KindNotFound)
	}
}

// TestErrorIsKindMatching verifies Kind-based matching between Errors.
func TestErrorIsKindMatching(t *testing.T) {
	err := NewStructuralError("NewGraph", ErrStructural)

	if !errors.Is(err, &Error{Kind: KindStructural}) {
		t.Error("should match on Kind alone when target Op is empty")
	}
	if errors.Is(err, &Error{Kind: KindStructural, Op: "Graph.Children"}) {
		t.Error("should not match when target Op differs")
	}
	if errors.Is(err, &Error{Kind: KindValidation}) {
		t.Error("should not match a different Kind")
	}
}

// TestWithContext verifies context is copied, not shared.
func TestWithContext(t *testing.T) {
	orig := NewValidationError("Engine.Compose", ErrInvalidParams)
	withCtx := orig.WithContext(map[string]any{"taxon": "litopenaeus"})

	if orig.Context != nil {
		t.Error("WithContext must not mutate the original error")
	}
	if withCtx.Context["taxon"] != "litopenaeus" {
		t.Errorf("context not applied: %+v", withCtx.Context)
	}
}
